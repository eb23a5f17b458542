package service

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sacde-pdd/backend/config"
	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
)

// ── 测试数据 ──
//
// 项目 proj-1：允许缺勤 VAC、特殊工时 NOC、非生产工时 LLU；两类审批均需要
//   - crew-1：成员 emp-1(Ana) / emp-2(Bruno)，阶段 phase-1 于 2026-03-01 ~ 2026-03-31 生效
//     控制与管理 emp-cm1（替补 emp-cm2），项目经理 emp-pm1
//   - crew-2：成员 emp-3(Carla)，同一阶段
// 项目 proj-2：crew-3，成员 emp-4

const (
	testDate      = "2026-03-10"
	testDateNoPhs = "2026-04-10" // crew-1 无生效阶段
)

func ptr(s string) *string { return &s }

// approvedPermission 补齐主管与人事审批记录
func approvedPermission(p model.Permission) model.Permission {
	at := mustDate("2026-03-01")
	p.SupervisorApprovedBy, p.SupervisorApprovedAt = ptr("emp-cm1"), &at
	p.HRApprovedBy, p.HRApprovedAt = ptr("emp-pm1"), &at
	return p
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func hours(kv ...interface{}) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = dec(kv[i+1].(float64))
	}
	return m
}

func mustDate(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedStore() *mockStore {
	s := newMockStore()

	s.projects["proj-1"] = &model.Project{
		ProjectID:               "proj-1",
		Name:                    "Gasoducto Norte",
		Code:                    "GN",
		AbsenceTypeIDs:          model.StringArray{"abs-vac"},
		SpecialHourTypeIDs:      model.StringArray{"sp-noc"},
		UnproductiveHourTypeIDs: model.StringArray{"up-llu"},
		RequiresControlApproval: true,
		RequiresManagerApproval: true,
	}
	s.projects["proj-2"] = &model.Project{ProjectID: "proj-2", Name: "Planta Sur", Code: "PS"}

	s.phases = []model.Phase{
		{PhaseID: "phase-1", ProjectID: "proj-1", Code: "EXC", Name: "Excavación"},
		{PhaseID: "phase-2", ProjectID: "proj-1", Code: "SOL", Name: "Soldadura"},
	}
	s.absences = []model.AbsenceType{
		{AbsenceTypeID: "abs-vac", Code: "VAC", Name: "Vacaciones"},
		{AbsenceTypeID: "abs-enf", Code: "ENF", Name: "Enfermedad"},
	}
	s.specials = []model.SpecialHourType{
		{SpecialHourTypeID: "sp-noc", Code: "NOC", Name: "Nocturna"},
		{SpecialHourTypeID: "sp-alt", Code: "ALT", Name: "Altura"},
	}
	s.unproductive = []model.UnproductiveHourType{
		{UnproductiveHourTypeID: "up-llu", Code: "LLU", Name: "Lluvia"},
	}

	for id, name := range map[string]string{
		"emp-1": "Ana", "emp-2": "Bruno", "emp-3": "Carla", "emp-4": "Diego",
		"emp-cm1": "Control Uno", "emp-cm2": "Control Dos", "emp-pm1": "Gerente Uno",
	} {
		s.employees[id] = &model.Employee{EmployeeID: id, Name: name, DocumentNumber: "DNI-" + id, IsActive: true}
	}

	window := []model.CrewPhase{{
		CrewPhaseID: "cp-1",
		PhaseID:     "phase-1",
		StartDate:   mustDate("2026-03-01"),
		EndDate:     mustDate("2026-03-31"),
		Phase:       &s.phases[0],
	}}
	s.crews["crew-1"] = &model.Crew{
		CrewID:    "crew-1",
		Name:      "Cuadrilla A",
		ProjectID: "proj-1",
		RoleSlots: model.RoleSlots{
			ForemanID:                   ptr("emp-1"),
			ControlManagerID:            ptr("emp-cm1"),
			ControlManagerSubstituteIDs: model.StringArray{"emp-cm2"},
			ProjectManagerID:            ptr("emp-pm1"),
		},
		MemberIDs: model.StringArray{"emp-1", "emp-2"},
		Phases:    window,
	}
	s.crews["crew-2"] = &model.Crew{
		CrewID:    "crew-2",
		Name:      "Cuadrilla B",
		ProjectID: "proj-1",
		RoleSlots: model.RoleSlots{ControlManagerID: ptr("emp-cm1")},
		MemberIDs: model.StringArray{"emp-3"},
		Phases:    window,
	}
	s.crews["crew-3"] = &model.Crew{
		CrewID:    "crew-3",
		Name:      "Cuadrilla C",
		ProjectID: "proj-2",
		MemberIDs: model.StringArray{"emp-4"},
	}
	return s
}

// ── 会话 ──

func sessionAs(employeeID string, caps ...authz.Capability) *authz.Session {
	return authz.NewSession("user-"+employeeID, employeeID, employeeID+"@sacde.test", authz.NewSet(caps...))
}

func adminSession() *authz.Session {
	return sessionAs("emp-admin", authz.All...)
}

// ── 服务 ──

func testLaborConfig() *config.LaborConfig {
	return &config.LaborConfig{DailyHoursWarning: 12, CatalogCacheTTL: time.Minute}
}

func setupTestDailyReportService() (DailyReportService, *mockStore) {
	store := seedStore()
	svc := NewDailyReportService(testLaborConfig(), store.repository(), authz.NewAuthorizer(), zap.NewNop())
	return svc, store
}

func setupTestPermissionService() (PermissionService, *mockStore) {
	store := seedStore()
	svc := NewPermissionService(store.repository(), authz.NewAuthorizer(), zap.NewNop())
	return svc, store
}

// ── 请求构造 ──

func saveReq(date, crewID string, entries ...dto.LaborEntryInput) *dto.SaveDailyReportRequest {
	return &dto.SaveDailyReportRequest{Date: date, CrewID: crewID, Entries: entries}
}

func worked(employeeID, phaseID string, h float64) dto.LaborEntryInput {
	return dto.LaborEntryInput{EmployeeID: employeeID, ProductiveHours: hours(phaseID, h)}
}

func absent(employeeID, absenceTypeID string) dto.LaborEntryInput {
	return dto.LaborEntryInput{EmployeeID: employeeID, AbsenceTypeID: ptr(absenceTypeID)}
}

func blank(employeeID string) dto.LaborEntryInput {
	return dto.LaborEntryInput{EmployeeID: employeeID}
}
