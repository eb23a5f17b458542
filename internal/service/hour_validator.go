package service

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
)

// ── 工时字段 ──

const (
	FieldProductive   = "productive"
	FieldUnproductive = "unproductive"
	FieldSpecial      = "special"
	FieldAbsence      = "absence"
)

// ── 违规代码 ──

const (
	CodeNegativeHours          = "negative_hours"
	CodeHoursWithAbsence       = "hours_with_absence"
	CodeSpecialExceedsWorked   = "special_exceeds_worked"
	CodeAbsenceNotAllowed      = "absence_type_not_allowed"
	CodeSpecialNotAllowed      = "special_type_not_allowed"
	CodeUnproductiveNotAllowed = "unproductive_type_not_allowed"
	CodeUnknownPhase           = "unknown_phase"
	CodeMissingKey             = "missing_key"
	CodeDuplicateEmployee      = "duplicate_employee"
	CodeUnknownEmployee        = "unknown_employee"
)

// Violation 单条工时校验违规，携带当前合计便于调用方自行修正
type Violation struct {
	EmployeeID   string          `json:"employee_id"`
	Field        string          `json:"field"`
	Key          string          `json:"key,omitempty"`
	Code         string          `json:"code"`
	Message      string          `json:"message"`
	Productive   decimal.Decimal `json:"productive_total"`
	Unproductive decimal.Decimal `json:"unproductive_total"`
	Special      decimal.Decimal `json:"special_total"`
}

// EntryValidationError 工时校验失败（写入前拦截），聚合全部违规
type EntryValidationError struct {
	Violations []Violation
}

func (e *EntryValidationError) Error() string {
	if len(e.Violations) == 1 {
		return e.Violations[0].Message
	}
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return fmt.Sprintf("%d 处工时校验失败: %s", len(e.Violations), strings.Join(msgs, "; "))
}

// EntryRules 校验所需的项目上下文
type EntryRules struct {
	Project  *model.Project
	PhaseIDs map[string]bool // 项目下全部阶段
}

// HourValidator 工时分配校验器
//   - 录入生产工时清除缺勤；登记缺勤清空全部工时
//   - 特殊工时合计 ≤ 生产 + 非生产工时合计
//   - 非生产 / 特殊工时仅在无缺勤时可录入
//   - 工时不得为负；单日合计超过阈值仅警告
type HourValidator struct {
	warnAbove decimal.Decimal
}

// NewHourValidator 创建校验器，warnAbove 为单日工时警告阈值（小时）
func NewHourValidator(warnAbove float64) *HourValidator {
	return &HourValidator{warnAbove: decimal.NewFromFloat(warnAbove)}
}

// EntryEdit 单字段编辑
type EntryEdit struct {
	Field         string
	Key           string // 阶段 ID / 类型 ID
	Hours         decimal.Decimal
	AbsenceTypeID *string
}

// ApplyEdit 将单字段编辑应用到 entry 的副本上，返回新记录或违规
func (v *HourValidator) ApplyEdit(entry model.LaborEntry, edit EntryEdit, rules *EntryRules) (model.LaborEntry, error) {
	next := cloneEntry(entry)

	reject := func(code, msg string) (model.LaborEntry, error) {
		return entry, &EntryValidationError{Violations: []Violation{
			violation(&entry, edit.Field, edit.Key, code, msg),
		}}
	}

	switch edit.Field {
	case FieldProductive, FieldUnproductive, FieldSpecial:
		if edit.Key == "" {
			return reject(CodeMissingKey, "未指定阶段或工时类型")
		}
		if edit.Hours.IsNegative() {
			return reject(CodeNegativeHours, fmt.Sprintf("员工 %s 的工时不能为负数", entry.EmployeeID))
		}
	}

	switch edit.Field {
	case FieldProductive:
		if rules != nil && rules.PhaseIDs != nil && !rules.PhaseIDs[edit.Key] {
			return reject(CodeUnknownPhase, fmt.Sprintf("阶段 %s 不属于该项目", edit.Key))
		}
		setHours(next.ProductiveHours, edit.Key, edit.Hours)
		// 任何生产工时编辑（含 0）都清除缺勤
		next.AbsenceTypeID = nil

	case FieldUnproductive:
		if next.HasAbsence() {
			return reject(CodeHoursWithAbsence, fmt.Sprintf("员工 %s 已登记缺勤，不能录入非生产工时", entry.EmployeeID))
		}
		if rules != nil && rules.Project != nil && !rules.Project.AllowsUnproductive(edit.Key) {
			return reject(CodeUnproductiveNotAllowed, fmt.Sprintf("项目不允许非生产工时类型 %s", edit.Key))
		}
		setHours(next.UnproductiveHours, edit.Key, edit.Hours)

	case FieldSpecial:
		if next.HasAbsence() {
			return reject(CodeHoursWithAbsence, fmt.Sprintf("员工 %s 已登记缺勤，不能录入特殊工时", entry.EmployeeID))
		}
		if rules != nil && rules.Project != nil && !rules.Project.AllowsSpecial(edit.Key) {
			return reject(CodeSpecialNotAllowed, fmt.Sprintf("项目不允许特殊工时类型 %s", edit.Key))
		}
		setHours(next.SpecialHours, edit.Key, edit.Hours)

	case FieldAbsence:
		if edit.AbsenceTypeID == nil || *edit.AbsenceTypeID == "" {
			next.AbsenceTypeID = nil
			break
		}
		if rules != nil && rules.Project != nil && !rules.Project.AllowsAbsence(*edit.AbsenceTypeID) {
			return reject(CodeAbsenceNotAllowed, fmt.Sprintf("项目不允许缺勤类型 %s", *edit.AbsenceTypeID))
		}
		id := *edit.AbsenceTypeID
		next.AbsenceTypeID = &id
		next.ProductiveHours = model.HourMap{}
		next.UnproductiveHours = model.HourMap{}
		next.SpecialHours = model.HourMap{}

	default:
		return reject("unknown_field", fmt.Sprintf("未知字段 %q", edit.Field))
	}

	// 特殊工时上限：任何一次修改都不能让特殊工时超过已工作工时
	if next.SpecialHours.Total().GreaterThan(next.WorkedTotal()) {
		return entry, &EntryValidationError{Violations: []Violation{
			violation(&next, edit.Field, edit.Key, CodeSpecialExceedsWorked, specialCapMessage(&next)),
		}}
	}
	return next, nil
}

// Validate 保存时的全量复核
func (v *HourValidator) Validate(entry *model.LaborEntry, rules *EntryRules) []Violation {
	var out []Violation
	add := func(field, key, code, msg string) {
		out = append(out, violation(entry, field, key, code, msg))
	}

	for _, f := range []struct {
		name string
		m    model.HourMap
	}{
		{FieldProductive, entry.ProductiveHours},
		{FieldUnproductive, entry.UnproductiveHours},
		{FieldSpecial, entry.SpecialHours},
	} {
		for _, k := range f.m.Keys() {
			if f.m[k].IsNegative() {
				add(f.name, k, CodeNegativeHours, fmt.Sprintf("员工 %s 的工时不能为负数", entry.EmployeeID))
			}
		}
	}

	if entry.HasAbsence() {
		if !entry.ProductiveHours.IsEmpty() || !entry.UnproductiveHours.IsEmpty() || !entry.SpecialHours.IsEmpty() {
			add(FieldAbsence, *entry.AbsenceTypeID, CodeHoursWithAbsence,
				fmt.Sprintf("员工 %s 不能同时登记缺勤与工时", entry.EmployeeID))
		}
		if rules != nil && rules.Project != nil && !rules.Project.AllowsAbsence(*entry.AbsenceTypeID) {
			add(FieldAbsence, *entry.AbsenceTypeID, CodeAbsenceNotAllowed,
				fmt.Sprintf("项目不允许缺勤类型 %s", *entry.AbsenceTypeID))
		}
	}

	if entry.SpecialHours.Total().GreaterThan(entry.WorkedTotal()) {
		add(FieldSpecial, "", CodeSpecialExceedsWorked, specialCapMessage(entry))
	}

	if rules != nil {
		for _, k := range entry.ProductiveHours.Keys() {
			if rules.PhaseIDs != nil && !rules.PhaseIDs[k] {
				add(FieldProductive, k, CodeUnknownPhase, fmt.Sprintf("阶段 %s 不属于该项目", k))
			}
		}
		if rules.Project != nil {
			for _, k := range entry.UnproductiveHours.Keys() {
				if !rules.Project.AllowsUnproductive(k) {
					add(FieldUnproductive, k, CodeUnproductiveNotAllowed, fmt.Sprintf("项目不允许非生产工时类型 %s", k))
				}
			}
			for _, k := range entry.SpecialHours.Keys() {
				if !rules.Project.AllowsSpecial(k) {
					add(FieldSpecial, k, CodeSpecialNotAllowed, fmt.Sprintf("项目不允许特殊工时类型 %s", k))
				}
			}
		}
	}
	return out
}

// Warnings 单日合计超过阈值的非阻断警告
func (v *HourValidator) Warnings(entries ...model.LaborEntry) []dto.HourWarning {
	warnings := []dto.HourWarning{}
	for i := range entries {
		total := entries[i].WorkedTotal()
		if total.GreaterThan(v.warnAbove) {
			warnings = append(warnings, dto.HourWarning{
				EmployeeID: entries[i].EmployeeID,
				Total:      total,
				Message:    fmt.Sprintf("员工 %s 当日工时合计 %s 小时，超过 %s 小时", entries[i].EmployeeID, total.String(), v.warnAbove.String()),
			})
		}
	}
	return warnings
}

// ── 辅助函数 ──

func setHours(m model.HourMap, key string, hours decimal.Decimal) {
	if hours.IsZero() {
		delete(m, key)
		return
	}
	m[key] = hours
}

func cloneEntry(e model.LaborEntry) model.LaborEntry {
	next := e
	next.ProductiveHours = e.ProductiveHours.Clone()
	next.UnproductiveHours = e.UnproductiveHours.Clone()
	next.SpecialHours = e.SpecialHours.Clone()
	if e.AbsenceTypeID != nil {
		id := *e.AbsenceTypeID
		next.AbsenceTypeID = &id
	}
	return next
}

func violation(e *model.LaborEntry, field, key, code, msg string) Violation {
	return Violation{
		EmployeeID:   e.EmployeeID,
		Field:        field,
		Key:          key,
		Code:         code,
		Message:      msg,
		Productive:   e.ProductiveHours.Total(),
		Unproductive: e.UnproductiveHours.Total(),
		Special:      e.SpecialHours.Total(),
	}
}

func specialCapMessage(e *model.LaborEntry) string {
	return fmt.Sprintf("员工 %s 的特殊工时合计 %s 超过已工作工时 %s（生产 %s + 非生产 %s）",
		e.EmployeeID,
		e.SpecialHours.Total().String(),
		e.WorkedTotal().String(),
		e.ProductiveHours.Total().String(),
		e.UnproductiveHours.Total().String(),
	)
}
