package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"sacde-pdd/backend/internal/model"
	"sacde-pdd/backend/internal/repository"
	pkgerrors "sacde-pdd/backend/pkg/errors"
	pkgredis "sacde-pdd/backend/pkg/redis"
)

// ── 内存数据集 ──
// 只读目录直接放 map；日报 / 明细 / 许可只能经 mockUnitOfWork 写入。

type mockStore struct {
	projects     map[string]*model.Project
	crews        map[string]*model.Crew
	employees    map[string]*model.Employee
	phases       []model.Phase
	absences     []model.AbsenceType
	specials     []model.SpecialHourType
	unproductive []model.UnproductiveHourType

	reports     map[string]model.DailyReport
	entries     map[string]model.LaborEntry
	permissions map[string]model.Permission

	failAt  int // 批次中第几个操作失败（从 0 开始），-1 表示不注入
	commits int
}

func newMockStore() *mockStore {
	return &mockStore{
		projects:    make(map[string]*model.Project),
		crews:       make(map[string]*model.Crew),
		employees:   make(map[string]*model.Employee),
		reports:     make(map[string]model.DailyReport),
		entries:     make(map[string]model.LaborEntry),
		permissions: make(map[string]model.Permission),
		failAt:      -1,
	}
}

func (s *mockStore) repository() *repository.Repository {
	return &repository.Repository{
		Project:     &mockProjectRepo{s},
		Crew:        &mockCrewRepo{s},
		Employee:    &mockEmployeeRepo{s},
		Phase:       &mockPhaseRepo{s},
		Catalog:     &mockCatalogRepo{s},
		DailyReport: &mockDailyReportRepo{s},
		LaborEntry:  &mockLaborEntryRepo{s},
		Permission:  &mockPermissionRepo{s},
		UnitOfWork:  &mockUnitOfWork{s},
	}
}

// entriesOf 某日报下的全部明细（按员工排序）
func (s *mockStore) entriesOf(reportID string) []model.LaborEntry {
	var out []model.LaborEntry
	for _, e := range s.entries {
		if e.DailyReportID == reportID {
			out = append(out, cloneEntry(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}

// reportFor (date, crew) 的日报，不存在返回 nil
func (s *mockStore) reportFor(date time.Time, crewID string) *model.DailyReport {
	var found *model.DailyReport
	for _, r := range s.reports {
		if r.CrewID != crewID || !model.DateOf(r.ReportDate).Equal(model.DateOf(date)) {
			continue
		}
		if found == nil || r.CreatedAt.Before(found.CreatedAt) {
			r := r
			found = &r
		}
	}
	return found
}

// ── Mock UnitOfWork ──

type mockUnitOfWork struct{ s *mockStore }

func (u *mockUnitOfWork) Commit(_ context.Context, batch *repository.Batch) error {
	reports := make(map[string]model.DailyReport, len(u.s.reports))
	for k, v := range u.s.reports {
		reports[k] = v
	}
	entries := make(map[string]model.LaborEntry, len(u.s.entries))
	for k, v := range u.s.entries {
		entries[k] = v
	}
	permissions := make(map[string]model.Permission, len(u.s.permissions))
	for k, v := range u.s.permissions {
		permissions[k] = v
	}

	for i, op := range batch.Ops() {
		if err := repository.CheckEntity(op.Entity); err != nil {
			return err
		}
		if i == u.s.failAt {
			return fmt.Errorf("%w: 注入失败 op #%d", pkgerrors.ErrCommitFailed, i)
		}
		switch e := op.Entity.(type) {
		case *model.DailyReport:
			if err := applyOp(reports, op.Kind, e.DailyReportID, *e); err != nil {
				return err
			}
		case *model.LaborEntry:
			if err := applyOp(entries, op.Kind, e.LaborEntryID, cloneEntry(*e)); err != nil {
				return err
			}
		case *model.Permission:
			if err := applyOp(permissions, op.Kind, e.PermissionID, *e); err != nil {
				return err
			}
		}
	}

	u.s.reports, u.s.entries, u.s.permissions = reports, entries, permissions
	u.s.commits++
	return nil
}

func applyOp[T any](m map[string]T, kind repository.OpKind, id string, v T) error {
	switch kind {
	case repository.OpCreate:
		if _, ok := m[id]; ok {
			return fmt.Errorf("%w: 主键冲突 %s", pkgerrors.ErrCommitFailed, id)
		}
		m[id] = v
	case repository.OpUpdate:
		m[id] = v
	case repository.OpDelete:
		delete(m, id)
	}
	return nil
}

// ── Mock 只读仓储 ──

type mockProjectRepo struct{ s *mockStore }

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if p, ok := m.s.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) List(_ context.Context) ([]model.Project, error) {
	var out []model.Project
	for _, p := range m.s.projects {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type mockCrewRepo struct{ s *mockStore }

func (m *mockCrewRepo) GetByID(_ context.Context, id string) (*model.Crew, error) {
	if c, ok := m.s.crews[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCrewRepo) ListByProject(_ context.Context, projectID string) ([]model.Crew, error) {
	var out []model.Crew
	for _, c := range m.s.crews {
		if c.ProjectID == projectID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type mockEmployeeRepo struct{ s *mockStore }

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.s.employees[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) List(_ context.Context) ([]model.Employee, error) {
	var out []model.Employee
	for _, e := range m.s.employees {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockEmployeeRepo) ListByIDs(_ context.Context, ids []string) ([]model.Employee, error) {
	var out []model.Employee
	for _, id := range ids {
		if e, ok := m.s.employees[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

type mockPhaseRepo struct{ s *mockStore }

func (m *mockPhaseRepo) ListByProject(_ context.Context, projectID string) ([]model.Phase, error) {
	var out []model.Phase
	for _, p := range m.s.phases {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockCatalogRepo struct{ s *mockStore }

func (m *mockCatalogRepo) ListAbsenceTypes(_ context.Context) ([]model.AbsenceType, error) {
	return m.s.absences, nil
}

func (m *mockCatalogRepo) ListSpecialHourTypes(_ context.Context) ([]model.SpecialHourType, error) {
	return m.s.specials, nil
}

func (m *mockCatalogRepo) ListUnproductiveHourTypes(_ context.Context) ([]model.UnproductiveHourType, error) {
	return m.s.unproductive, nil
}

type mockDailyReportRepo struct{ s *mockStore }

func (m *mockDailyReportRepo) GetByID(_ context.Context, id string) (*model.DailyReport, error) {
	if r, ok := m.s.reports[id]; ok {
		return &r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDailyReportRepo) GetByDateAndCrew(_ context.Context, date time.Time, crewID string) (*model.DailyReport, error) {
	if r := m.s.reportFor(date, crewID); r != nil {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDailyReportRepo) ListByDateAndProject(_ context.Context, date time.Time, projectID string) ([]model.DailyReport, error) {
	var out []model.DailyReport
	for _, r := range m.s.reports {
		if r.ProjectID == projectID && model.DateOf(r.ReportDate).Equal(model.DateOf(date)) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type mockLaborEntryRepo struct{ s *mockStore }

func (m *mockLaborEntryRepo) ListByReport(_ context.Context, reportID string) ([]model.LaborEntry, error) {
	return m.s.entriesOf(reportID), nil
}

type mockPermissionRepo struct{ s *mockStore }

func (m *mockPermissionRepo) GetByID(_ context.Context, id string) (*model.Permission, error) {
	if p, ok := m.s.permissions[id]; ok {
		return &p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPermissionRepo) List(_ context.Context, f repository.PermissionFilter) ([]model.Permission, error) {
	var out []model.Permission
	for _, p := range m.s.permissions {
		if f.EmployeeID != "" && p.EmployeeID != f.EmployeeID {
			continue
		}
		if f.From != nil && p.EndDate.Before(*f.From) {
			continue
		}
		if f.To != nil && p.StartDate.After(*f.To) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (m *mockPermissionRepo) ListByEmployee(ctx context.Context, employeeID string) ([]model.Permission, error) {
	return m.List(ctx, repository.PermissionFilter{EmployeeID: employeeID})
}

func (m *mockPermissionRepo) ListCovering(_ context.Context, employeeIDs []string, date time.Time) ([]model.Permission, error) {
	want := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		want[id] = true
	}
	var out []model.Permission
	for _, p := range m.s.permissions {
		if want[p.EmployeeID] && p.Covers(date) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ── Mock Cache ──

type mockCache struct {
	data map[string][]byte
	gets int
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return pkgredis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mockCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}
