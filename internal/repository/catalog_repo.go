package repository

import (
	"context"

	"gorm.io/gorm"

	"sacde-pdd/backend/internal/model"
)

// ProjectRepository 项目数据访问接口
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
}

// EmployeeRepository 员工数据访问接口
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Employee, error)
}

// PhaseRepository 阶段数据访问接口
type PhaseRepository interface {
	ListByProject(ctx context.Context, projectID string) ([]model.Phase, error)
}

// CatalogRepository 缺勤 / 特殊工时 / 非生产工时类型目录
type CatalogRepository interface {
	ListAbsenceTypes(ctx context.Context) ([]model.AbsenceType, error)
	ListSpecialHourTypes(ctx context.Context) ([]model.SpecialHourType, error)
	ListUnproductiveHourTypes(ctx context.Context) ([]model.UnproductiveHourType, error)
}

// ── Project Repository 实现 ──

type projectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("project_id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Order("name ASC").Find(&projects).Error
	return projects, err
}

// ── Employee Repository 实现 ──

type employeeRepo struct {
	db *gorm.DB
}

func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var employee model.Employee
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", id).
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	err := r.db.WithContext(ctx).Order("name ASC").Find(&employees).Error
	return employees, err
}

func (r *employeeRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var employees []model.Employee
	err := r.db.WithContext(ctx).
		Where("employee_id IN ?", ids).
		Order("name ASC").
		Find(&employees).Error
	return employees, err
}

// ── Phase Repository 实现 ──

type phaseRepo struct {
	db *gorm.DB
}

func NewPhaseRepo(db *gorm.DB) PhaseRepository {
	return &phaseRepo{db: db}
}

func (r *phaseRepo) ListByProject(ctx context.Context, projectID string) ([]model.Phase, error) {
	var phases []model.Phase
	db := r.db.WithContext(ctx)
	if projectID != "" {
		db = db.Where("project_id = ?", projectID)
	}
	err := db.Order("code ASC").Find(&phases).Error
	return phases, err
}

// ── Catalog Repository 实现 ──

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) ListAbsenceTypes(ctx context.Context) ([]model.AbsenceType, error) {
	var items []model.AbsenceType
	err := r.db.WithContext(ctx).Order("code ASC").Find(&items).Error
	return items, err
}

func (r *catalogRepo) ListSpecialHourTypes(ctx context.Context) ([]model.SpecialHourType, error) {
	var items []model.SpecialHourType
	err := r.db.WithContext(ctx).Order("code ASC").Find(&items).Error
	return items, err
}

func (r *catalogRepo) ListUnproductiveHourTypes(ctx context.Context) ([]model.UnproductiveHourType, error) {
	var items []model.UnproductiveHourType
	err := r.db.WithContext(ctx).Order("code ASC").Find(&items).Error
	return items, err
}
