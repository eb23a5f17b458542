package model

import "gorm.io/gorm"

// Phase 项目工作分解阶段 — 对应 phases
type Phase struct {
	PhaseID   string `gorm:"type:uuid;primaryKey"       json:"phase_id"`
	ProjectID string `gorm:"type:uuid;not null"         json:"project_id"`
	Code      string `gorm:"type:varchar(30);not null"  json:"code"`
	Name      string `gorm:"type:varchar(150);not null" json:"name"`
	CatalogModel
}

func (Phase) TableName() string { return "phases" }

func (p *Phase) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.PhaseID)
	return nil
}

// AbsenceType 缺勤类型 — 对应 absence_types（如 VAC 休假）
type AbsenceType struct {
	AbsenceTypeID string `gorm:"type:uuid;primaryKey"       json:"absence_type_id"`
	Code          string `gorm:"type:varchar(20);not null"  json:"code"`
	Name          string `gorm:"type:varchar(100);not null" json:"name"`
	CatalogModel
}

func (AbsenceType) TableName() string { return "absence_types" }

func (a *AbsenceType) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.AbsenceTypeID)
	return nil
}

// SpecialHourType 特殊工时类型 — 对应 special_hour_types
type SpecialHourType struct {
	SpecialHourTypeID string `gorm:"type:uuid;primaryKey"       json:"special_hour_type_id"`
	Code              string `gorm:"type:varchar(20);not null"  json:"code"`
	Name              string `gorm:"type:varchar(100);not null" json:"name"`
	CatalogModel
}

func (SpecialHourType) TableName() string { return "special_hour_types" }

func (s *SpecialHourType) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.SpecialHourTypeID)
	return nil
}

// UnproductiveHourType 非生产工时类型 — 对应 unproductive_hour_types
type UnproductiveHourType struct {
	UnproductiveHourTypeID string `gorm:"type:uuid;primaryKey"       json:"unproductive_hour_type_id"`
	Code                   string `gorm:"type:varchar(20);not null"  json:"code"`
	Name                   string `gorm:"type:varchar(100);not null" json:"name"`
	CatalogModel
}

func (UnproductiveHourType) TableName() string { return "unproductive_hour_types" }

func (u *UnproductiveHourType) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.UnproductiveHourTypeID)
	return nil
}
