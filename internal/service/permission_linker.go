package service

import (
	"time"

	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
)

// linkPermissions 许可 → 缺勤建议：已审批、覆盖 date 且缺勤类型被项目允许的许可，
// 建议该员工当日登记该缺勤类型。同一员工有多条时取开始日期最早的一条。
func linkPermissions(perms []model.Permission, date time.Time, project *model.Project) map[string]dto.AbsenceSuggestion {
	out := make(map[string]dto.AbsenceSuggestion)
	best := make(map[string]time.Time)
	for i := range perms {
		p := &perms[i]
		if !p.IsApproved() || !p.Covers(date) {
			continue
		}
		if project != nil && !project.AllowsAbsence(p.AbsenceTypeID) {
			continue
		}
		if start, ok := best[p.EmployeeID]; ok && !p.StartDate.Before(start) {
			continue
		}
		best[p.EmployeeID] = p.StartDate
		out[p.EmployeeID] = dto.AbsenceSuggestion{PermissionID: p.PermissionID, AbsenceTypeID: p.AbsenceTypeID}
	}
	return out
}
