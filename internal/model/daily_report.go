package model

import (
	"time"

	"gorm.io/gorm"
)

// 日报状态：pending → notified（终态，不可回退）
const (
	ReportStatusPending  = "pending"
	ReportStatusNotified = "notified"
)

// DailyReport 班组日报 — 对应 daily_reports
// (ReportDate, CrewID) 唯一性由应用层保证；角色字段为创建时的快照。
type DailyReport struct {
	DailyReportID string    `gorm:"type:uuid;primaryKey"                         json:"daily_report_id"`
	ReportDate    time.Time `gorm:"type:date;not null"                           json:"report_date"`
	CrewID        string    `gorm:"type:uuid;not null"                           json:"crew_id"`
	ProjectID     string    `gorm:"type:uuid;not null"                           json:"project_id"`
	RoleSlots     `gorm:"embedded"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	NotifiedAt    *time.Time `json:"notified_at,omitempty"`
	NotifiedBy    *string    `gorm:"type:varchar(64)"                            json:"notified_by,omitempty"`

	// 审批（notified 之后唯一允许变更的字段）
	ControlApprovedBy *string    `gorm:"type:varchar(64)" json:"control_approved_by,omitempty"`
	ControlApprovedAt *time.Time `json:"control_approved_at,omitempty"`
	ManagerApprovedBy *string    `gorm:"type:varchar(64)" json:"manager_approved_by,omitempty"`
	ManagerApprovedAt *time.Time `json:"manager_approved_at,omitempty"`
	BaseModel
}

func (DailyReport) TableName() string { return "daily_reports" }

func (r *DailyReport) BeforeCreate(_ *gorm.DB) error {
	ensureID(&r.DailyReportID)
	return nil
}

// IsNotified 是否已通报（锁定）
func (r *DailyReport) IsNotified() bool { return r.Status == ReportStatusNotified }
