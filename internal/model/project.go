package model

import "gorm.io/gorm"

// Project 项目 — 对应 projects
// 允许使用的缺勤 / 特殊工时 / 非生产工时类型由项目配置，而不是全局目录
type Project struct {
	ProjectID               string      `gorm:"type:uuid;primaryKey"                json:"project_id"`
	Name                    string      `gorm:"type:varchar(150);not null"          json:"name"`
	Code                    string      `gorm:"type:varchar(30);not null"           json:"code"`
	AbsenceTypeIDs          StringArray `gorm:"type:text[];not null;default:'{}'"   json:"absence_type_ids"`
	SpecialHourTypeIDs      StringArray `gorm:"type:text[];not null;default:'{}'"   json:"special_hour_type_ids"`
	UnproductiveHourTypeIDs StringArray `gorm:"type:text[];not null;default:'{}'"   json:"unproductive_hour_type_ids"`
	RequiresControlApproval bool        `gorm:"not null;default:false"              json:"requires_control_approval"`
	RequiresManagerApproval bool        `gorm:"not null;default:false"              json:"requires_manager_approval"`
	CatalogModel
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ProjectID)
	return nil
}

func (p *Project) AllowsAbsence(id string) bool      { return p.AbsenceTypeIDs.Contains(id) }
func (p *Project) AllowsSpecial(id string) bool      { return p.SpecialHourTypeIDs.Contains(id) }
func (p *Project) AllowsUnproductive(id string) bool { return p.UnproductiveHourTypeIDs.Contains(id) }
