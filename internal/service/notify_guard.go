package service

import (
	"fmt"
	"sort"
	"strings"

	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
)

// NotifyGuardError 通报前置检查失败，一次性列出全部问题员工
type NotifyGuardError struct {
	MissingInput []dto.EmployeeRef // 既无工时也无缺勤
	MissingPhase []dto.EmployeeRef // 有生产工时但当日无生效阶段
}

func (e *NotifyGuardError) Error() string {
	var parts []string
	if len(e.MissingInput) > 0 {
		parts = append(parts, "未录入工时或缺勤: "+joinNames(e.MissingInput))
	}
	if len(e.MissingPhase) > 0 {
		parts = append(parts, "当日无生效阶段: "+joinNames(e.MissingPhase))
	}
	return fmt.Sprintf("日报不能通报（%s）", strings.Join(parts, "；"))
}

// checkNotifyGuard 对日报全部人员执行通报守卫
//  1. 每名员工须有 生产+非生产 > 0 或登记了缺勤
//  2. 有生产工时的员工，班组当日须至少有一个生效阶段
//
// 全部通过返回 nil。
func checkNotifyGuard(entries []model.LaborEntry, activePhases []model.CrewPhase, names map[string]string) *NotifyGuardError {
	guard := &NotifyGuardError{}
	for i := range entries {
		e := &entries[i]
		ref := dto.EmployeeRef{EmployeeID: e.EmployeeID, Name: nameOf(names, e.EmployeeID)}
		if !e.HasInput() {
			guard.MissingInput = append(guard.MissingInput, ref)
		}
		if e.ProductiveHours.Total().IsPositive() && len(activePhases) == 0 {
			guard.MissingPhase = append(guard.MissingPhase, ref)
		}
	}
	if len(guard.MissingInput) == 0 && len(guard.MissingPhase) == 0 {
		return nil
	}
	sortRefs(guard.MissingInput)
	sortRefs(guard.MissingPhase)
	return guard
}

func sortRefs(refs []dto.EmployeeRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Name != refs[j].Name {
			return refs[i].Name < refs[j].Name
		}
		return refs[i].EmployeeID < refs[j].EmployeeID
	})
}

func joinNames(refs []dto.EmployeeRef) string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return strings.Join(names, "、")
}

// nameOf 员工姓名，未知时回退为 ID
func nameOf(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}
