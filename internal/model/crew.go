package model

import (
	"time"

	"gorm.io/gorm"
)

// RoleSlots 班组四个责任角色：每个角色一名正职 + 若干替补。
// Crew 上是当前配置；DailyReport 上是创建时的快照，之后不随班组变化。
type RoleSlots struct {
	ForemanID                   *string     `gorm:"type:uuid"                          json:"foreman_id,omitempty"`
	ForemanSubstituteIDs        StringArray `gorm:"type:text[];not null;default:'{}'"  json:"foreman_substitute_ids"`
	TallymanID                  *string     `gorm:"type:uuid"                          json:"tallyman_id,omitempty"`
	TallymanSubstituteIDs       StringArray `gorm:"type:text[];not null;default:'{}'"  json:"tallyman_substitute_ids"`
	ProjectManagerID            *string     `gorm:"type:uuid"                          json:"project_manager_id,omitempty"`
	ProjectManagerSubstituteIDs StringArray `gorm:"type:text[];not null;default:'{}'"  json:"project_manager_substitute_ids"`
	ControlManagerID            *string     `gorm:"type:uuid"                          json:"control_manager_id,omitempty"`
	ControlManagerSubstituteIDs StringArray `gorm:"type:text[];not null;default:'{}'"  json:"control_manager_substitute_ids"`
}

// Snapshot 复制一份（切片不共享底层数组）
func (r RoleSlots) Snapshot() RoleSlots {
	cp := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	cs := func(a StringArray) StringArray { return append(StringArray{}, a...) }
	return RoleSlots{
		ForemanID:                   cp(r.ForemanID),
		ForemanSubstituteIDs:        cs(r.ForemanSubstituteIDs),
		TallymanID:                  cp(r.TallymanID),
		TallymanSubstituteIDs:       cs(r.TallymanSubstituteIDs),
		ProjectManagerID:            cp(r.ProjectManagerID),
		ProjectManagerSubstituteIDs: cs(r.ProjectManagerSubstituteIDs),
		ControlManagerID:            cp(r.ControlManagerID),
		ControlManagerSubstituteIDs: cs(r.ControlManagerSubstituteIDs),
	}
}

// ControlManagers 控制与管理角色的正职 + 替补
func (r RoleSlots) ControlManagers() []string {
	return titularAndSubstitutes(r.ControlManagerID, r.ControlManagerSubstituteIDs)
}

// ProjectManagers 项目经理角色的正职 + 替补
func (r RoleSlots) ProjectManagers() []string {
	return titularAndSubstitutes(r.ProjectManagerID, r.ProjectManagerSubstituteIDs)
}

func titularAndSubstitutes(titular *string, subs StringArray) []string {
	out := make([]string, 0, len(subs)+1)
	if titular != nil && *titular != "" {
		out = append(out, *titular)
	}
	for _, s := range subs {
		if s != "" && (titular == nil || s != *titular) {
			out = append(out, s)
		}
	}
	return out
}

// Crew 班组 — 对应 crews
type Crew struct {
	CrewID    string      `gorm:"type:uuid;primaryKey"              json:"crew_id"`
	Name      string      `gorm:"type:varchar(150);not null"        json:"name"`
	ProjectID string      `gorm:"type:uuid;not null"                json:"project_id"`
	RoleSlots `gorm:"embedded"`
	MemberIDs StringArray `gorm:"type:text[];not null;default:'{}'" json:"member_ids"`
	CatalogModel

	// 关联
	Phases []CrewPhase `gorm:"foreignKey:CrewID" json:"phases,omitempty"`
}

func (Crew) TableName() string { return "crews" }

func (c *Crew) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.CrewID)
	return nil
}

// ActivePhases 当天生效的阶段分配（窗口包含该日期）
func (c *Crew) ActivePhases(date time.Time) []CrewPhase {
	var out []CrewPhase
	for _, p := range c.Phases {
		if p.Covers(date) {
			out = append(out, p)
		}
	}
	return out
}

// CrewPhase 班组阶段分配 — 对应 crew_phases（窗口是否重叠不做校验）
type CrewPhase struct {
	CrewPhaseID string    `gorm:"type:uuid;primaryKey" json:"crew_phase_id"`
	CrewID      string    `gorm:"type:uuid;not null"   json:"crew_id"`
	PhaseID     string    `gorm:"type:uuid;not null"   json:"phase_id"`
	StartDate   time.Time `gorm:"type:date;not null"   json:"start_date"`
	EndDate     time.Time `gorm:"type:date;not null"   json:"end_date"`
	CatalogModel

	// 关联
	Phase *Phase `gorm:"foreignKey:PhaseID;references:PhaseID" json:"phase,omitempty"`
}

func (CrewPhase) TableName() string { return "crew_phases" }

func (p *CrewPhase) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.CrewPhaseID)
	return nil
}

// Covers 闭区间 [StartDate, EndDate] 是否包含 date
func (p CrewPhase) Covers(date time.Time) bool {
	d := DateOf(date)
	return !d.Before(DateOf(p.StartDate)) && !d.After(DateOf(p.EndDate))
}
