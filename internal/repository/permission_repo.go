package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sacde-pdd/backend/internal/model"
)

// PermissionFilter 请假许可查询条件，零值字段不参与过滤
type PermissionFilter struct {
	EmployeeID string
	From       *time.Time // 区间与 [From, To] 相交
	To         *time.Time
}

// PermissionRepository 请假许可数据访问接口（只读；写入统一走 UnitOfWork）
type PermissionRepository interface {
	GetByID(ctx context.Context, id string) (*model.Permission, error)
	List(ctx context.Context, filter PermissionFilter) ([]model.Permission, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]model.Permission, error)
	// 覆盖 date 的许可
	ListCovering(ctx context.Context, employeeIDs []string, date time.Time) ([]model.Permission, error)
}

type permissionRepo struct {
	db *gorm.DB
}

func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db: db}
}

func (r *permissionRepo) GetByID(ctx context.Context, id string) (*model.Permission, error) {
	var p model.Permission
	err := r.db.WithContext(ctx).
		Where("permission_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *permissionRepo) List(ctx context.Context, filter PermissionFilter) ([]model.Permission, error) {
	var list []model.Permission
	db := r.db.WithContext(ctx)
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.From != nil {
		db = db.Where("end_date >= ?", model.DateOf(*filter.From))
	}
	if filter.To != nil {
		db = db.Where("start_date <= ?", model.DateOf(*filter.To))
	}
	err := db.Order("start_date ASC").Find(&list).Error
	return list, err
}

func (r *permissionRepo) ListByEmployee(ctx context.Context, employeeID string) ([]model.Permission, error) {
	return r.List(ctx, PermissionFilter{EmployeeID: employeeID})
}

func (r *permissionRepo) ListCovering(ctx context.Context, employeeIDs []string, date time.Time) ([]model.Permission, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	d := model.DateOf(date)
	var list []model.Permission
	err := r.db.WithContext(ctx).
		Where("employee_id IN ?", employeeIDs).
		Where("start_date <= ? AND end_date >= ?", d, d).
		Order("start_date ASC").
		Find(&list).Error
	return list, err
}
