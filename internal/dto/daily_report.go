package dto

import "github.com/shopspring/decimal"

// ── 日报模块 DTO ──

// WorkingSetQuery 工作集查询参数；crew_id 为 "all" 时只返回各班组状态汇总
type WorkingSetQuery struct {
	Date      string   `form:"date"       binding:"required"`
	ProjectID string   `form:"project_id" binding:"required"`
	CrewID    string   `form:"crew_id"    binding:"required"`
	Add       []string `form:"add"`
	Remove    []string `form:"remove"`
}

// LaborEntryInput 单个员工的工时 / 缺勤输入
type LaborEntryInput struct {
	EmployeeID        string                     `json:"employee_id"        binding:"required"`
	ProductiveHours   map[string]decimal.Decimal `json:"productive_hours"`
	UnproductiveHours map[string]decimal.Decimal `json:"unproductive_hours"`
	SpecialHours      map[string]decimal.Decimal `json:"special_hours"`
	AbsenceTypeID     *string                    `json:"absence_type_id"`
	Manual            bool                       `json:"manual"`
}

// SaveDailyReportRequest 保存日报请求：以当前全部明细替换已有明细
type SaveDailyReportRequest struct {
	Date    string            `json:"date"    binding:"required"`
	CrewID  string            `json:"crew_id" binding:"required"`
	Entries []LaborEntryInput `json:"entries" binding:"dive"`
}

// ApplyEditRequest 单字段编辑请求
// field: productive | unproductive | special | absence
type ApplyEditRequest struct {
	ProjectID     string          `json:"project_id" binding:"required"`
	Entry         LaborEntryInput `json:"entry"      binding:"required"`
	Field         string          `json:"field"      binding:"required,oneof=productive unproductive special absence"`
	Key           string          `json:"key"`
	Hours         decimal.Decimal `json:"hours"`
	AbsenceTypeID *string         `json:"absence_type_id"`
}

// MoveEmployeeRequest 员工跨班组调动请求
type MoveEmployeeRequest struct {
	Date         string `json:"date"           binding:"required"`
	EmployeeID   string `json:"employee_id"    binding:"required"`
	SourceCrewID string `json:"source_crew_id" binding:"required"`
	TargetCrewID string `json:"target_crew_id" binding:"required"`
}

// MoveTargetQuery 调动目标查询参数
type MoveTargetQuery struct {
	Date   string `form:"date"    binding:"required"`
	CrewID string `form:"crew_id" binding:"required"`
}

// ExportDailyReportQuery 日报导出参数
type ExportDailyReportQuery struct {
	Date   string `form:"date"    binding:"required"`
	CrewID string `form:"crew_id" binding:"required"`
}

// ── 响应 ──

// LaborEntryResponse 工时明细
type LaborEntryResponse struct {
	ID                string                     `json:"id,omitempty"`
	EmployeeID        string                     `json:"employee_id"`
	EmployeeName      string                     `json:"employee_name,omitempty"`
	ProductiveHours   map[string]decimal.Decimal `json:"productive_hours"`
	UnproductiveHours map[string]decimal.Decimal `json:"unproductive_hours"`
	SpecialHours      map[string]decimal.Decimal `json:"special_hours"`
	AbsenceTypeID     *string                    `json:"absence_type_id,omitempty"`
	Manual            bool                       `json:"manual"`
	WorkedTotal       decimal.Decimal            `json:"worked_total"`
	SpecialTotal      decimal.Decimal            `json:"special_total"`
}

// DailyReportResponse 日报详情
type DailyReportResponse struct {
	ID         string               `json:"id"`
	Date       string               `json:"date"`
	CrewID     string               `json:"crew_id"`
	ProjectID  string               `json:"project_id"`
	Status     string               `json:"status"`
	NotifiedAt *string              `json:"notified_at,omitempty"`
	NotifiedBy *string              `json:"notified_by,omitempty"`
	Approvals  []ApprovalState      `json:"approvals"`
	Entries    []LaborEntryResponse `json:"entries"`
	CreatedAt  string               `json:"created_at"`
	UpdatedAt  string               `json:"updated_at"`
}

// HourWarning 非阻断警告（单日总工时超过阈值）
type HourWarning struct {
	EmployeeID string          `json:"employee_id"`
	Total      decimal.Decimal `json:"total"`
	Message    string          `json:"message"`
}

// SaveDailyReportResponse 保存结果
type SaveDailyReportResponse struct {
	Report   DailyReportResponse `json:"report"`
	Created  bool                `json:"created"`
	Warnings []HourWarning       `json:"warnings"`
}

// ApplyEditResponse 单字段编辑结果
type ApplyEditResponse struct {
	Entry    LaborEntryResponse `json:"entry"`
	Warnings []HourWarning      `json:"warnings"`
}

// NotifyCheckResponse 通报前检查结果
type NotifyCheckResponse struct {
	CanNotify    bool          `json:"can_notify"`
	MissingInput []EmployeeRef `json:"missing_input"`
	MissingPhase []EmployeeRef `json:"missing_phase"`
}

// CrewStatusSummary "all" 视图下单个班组的日报状态：none | pending | notified
type CrewStatusSummary struct {
	CrewID        string `json:"crew_id"`
	CrewName      string `json:"crew_name"`
	Status        string `json:"status"`
	DailyReportID string `json:"daily_report_id,omitempty"`
}

// PhaseBrief 阶段简要信息
type PhaseBrief struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// TypeBrief 缺勤 / 特殊 / 非生产工时类型简要信息
type TypeBrief struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// AbsenceSuggestion 由请假许可推导出的缺勤建议
type AbsenceSuggestion struct {
	PermissionID  string `json:"permission_id"`
	AbsenceTypeID string `json:"absence_type_id"`
}

// PersonnelRow 工作集中的一名员工
type PersonnelRow struct {
	EmployeeID string             `json:"employee_id"`
	Name       string             `json:"name"`
	Manual     bool               `json:"manual"`
	Entry      LaborEntryResponse `json:"entry"`
	Suggestion *AbsenceSuggestion `json:"suggestion,omitempty"`
}

// WorkingSetResponse 工作集
type WorkingSetResponse struct {
	Date                  string               `json:"date"`
	ProjectID             string               `json:"project_id"`
	CrewID                string               `json:"crew_id"`
	Crews                 []CrewStatusSummary  `json:"crews,omitempty"`
	Report                *DailyReportResponse `json:"report,omitempty"`
	Personnel             []PersonnelRow       `json:"personnel,omitempty"`
	ActivePhases          []PhaseBrief         `json:"active_phases,omitempty"`
	AbsenceTypes          []TypeBrief          `json:"absence_types,omitempty"`
	SpecialHourTypes      []TypeBrief          `json:"special_hour_types,omitempty"`
	UnproductiveHourTypes []TypeBrief          `json:"unproductive_hour_types,omitempty"`
}

// MoveTargetResponse 可选调动目标班组（已通报的不出现）
type MoveTargetResponse struct {
	CrewID        string `json:"crew_id"`
	CrewName      string `json:"crew_name"`
	Status        string `json:"status"`
	DailyReportID string `json:"daily_report_id,omitempty"`
}

// MoveEmployeeResponse 调动结果
type MoveEmployeeResponse struct {
	SourceReportID string             `json:"source_report_id"`
	TargetReportID string             `json:"target_report_id"`
	TargetCreated  bool               `json:"target_created"`
	Entry          LaborEntryResponse `json:"entry"`
}
