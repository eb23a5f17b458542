package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LaborEntry 员工当日工时 / 缺勤记录 — 对应 labor_entries
// 工时与缺勤互斥：有任一工时则 AbsenceTypeID 为空，有缺勤则三类工时均为空。
type LaborEntry struct {
	LaborEntryID      string  `gorm:"type:uuid;primaryKey"            json:"labor_entry_id"`
	DailyReportID     string  `gorm:"type:uuid;not null"              json:"daily_report_id"`
	EmployeeID        string  `gorm:"type:uuid;not null"              json:"employee_id"`
	ProductiveHours   HourMap `gorm:"type:jsonb;not null"             json:"productive_hours"`   // phase_id → hours
	UnproductiveHours HourMap `gorm:"type:jsonb;not null"             json:"unproductive_hours"` // unproductive_hour_type_id → hours
	SpecialHours      HourMap `gorm:"type:jsonb;not null"             json:"special_hours"`      // special_hour_type_id → hours
	AbsenceTypeID     *string `gorm:"type:uuid"                       json:"absence_type_id,omitempty"`
	Manual            bool    `gorm:"not null;default:false"          json:"manual"` // 非班组名单内、手动加入本日报
	BaseModel
}

func (LaborEntry) TableName() string { return "labor_entries" }

func (e *LaborEntry) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.LaborEntryID)
	return nil
}

// WorkedTotal 生产 + 非生产工时
func (e *LaborEntry) WorkedTotal() decimal.Decimal {
	return e.ProductiveHours.Total().Add(e.UnproductiveHours.Total())
}

// HasAbsence 是否登记了缺勤
func (e *LaborEntry) HasAbsence() bool {
	return e.AbsenceTypeID != nil && *e.AbsenceTypeID != ""
}

// HasInput 有工时或有缺勤
func (e *LaborEntry) HasInput() bool {
	return e.WorkedTotal().IsPositive() || e.HasAbsence()
}

// IsBlank 既无工时也无缺勤（待录入）
func (e *LaborEntry) IsBlank() bool {
	return !e.HasAbsence() && e.ProductiveHours.IsEmpty() &&
		e.UnproductiveHours.IsEmpty() && e.SpecialHours.IsEmpty()
}
