package model

import (
	"time"

	"gorm.io/gorm"
)

// Permission 员工请假 / 缺勤许可 — 对应 permissions
// 同一员工的 [StartDate, EndDate] 闭区间互不相交（写入时校验）。
type Permission struct {
	PermissionID  string    `gorm:"type:uuid;primaryKey"       json:"permission_id"`
	EmployeeID    string    `gorm:"type:uuid;not null"         json:"employee_id"`
	AbsenceTypeID string    `gorm:"type:uuid;not null"         json:"absence_type_id"`
	StartDate     time.Time `gorm:"type:date;not null"         json:"start_date"`
	EndDate       time.Time `gorm:"type:date;not null"         json:"end_date"`
	Observation   string    `gorm:"type:varchar(500);not null" json:"observation"`

	// 指定审批人（可选）
	SupervisorApproverID *string `gorm:"type:varchar(64)" json:"supervisor_approver_id,omitempty"`
	HRApproverID         *string `gorm:"column:hr_approver_id;type:varchar(64)" json:"hr_approver_id,omitempty"`

	// 审批记录
	SupervisorApprovedBy *string    `gorm:"type:varchar(64)"                       json:"supervisor_approved_by,omitempty"`
	SupervisorApprovedAt *time.Time `json:"supervisor_approved_at,omitempty"`
	HRApprovedBy         *string    `gorm:"column:hr_approved_by;type:varchar(64)" json:"hr_approved_by,omitempty"`
	HRApprovedAt         *time.Time `gorm:"column:hr_approved_at"                  json:"hr_approved_at,omitempty"`
	BaseModel
}

func (Permission) TableName() string { return "permissions" }

func (p *Permission) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.PermissionID)
	return nil
}

// Covers 闭区间是否包含 date
func (p *Permission) Covers(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(p.StartDate)) && !d.After(DateOf(p.EndDate))
}

// IsApproved 主管与人事均已审批
func (p *Permission) IsApproved() bool {
	return p.SupervisorApprovedBy != nil && p.HRApprovedBy != nil
}

// Overlaps 与 [start, end] 闭区间是否相交；首尾同一天也算相交
func (p *Permission) Overlaps(start, end time.Time) bool {
	return !DateOf(p.StartDate).After(DateOf(end)) && !DateOf(start).After(DateOf(p.EndDate))
}
