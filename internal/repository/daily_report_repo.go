package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sacde-pdd/backend/internal/model"
)

// DailyReportRepository 日报数据访问接口（只读；写入统一走 UnitOfWork）
type DailyReportRepository interface {
	GetByID(ctx context.Context, id string) (*model.DailyReport, error)
	// (date, crew) 由应用层保证唯一；历史脏数据存在多条时取最早创建的一条
	GetByDateAndCrew(ctx context.Context, date time.Time, crewID string) (*model.DailyReport, error)
	ListByDateAndProject(ctx context.Context, date time.Time, projectID string) ([]model.DailyReport, error)
}

// LaborEntryRepository 工时明细数据访问接口（只读）
type LaborEntryRepository interface {
	ListByReport(ctx context.Context, reportID string) ([]model.LaborEntry, error)
}

// ── DailyReport Repository 实现 ──

type dailyReportRepo struct {
	db *gorm.DB
}

func NewDailyReportRepo(db *gorm.DB) DailyReportRepository {
	return &dailyReportRepo{db: db}
}

func (r *dailyReportRepo) GetByID(ctx context.Context, id string) (*model.DailyReport, error) {
	var report model.DailyReport
	err := r.db.WithContext(ctx).
		Where("daily_report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *dailyReportRepo) GetByDateAndCrew(ctx context.Context, date time.Time, crewID string) (*model.DailyReport, error) {
	var report model.DailyReport
	err := r.db.WithContext(ctx).
		Where("report_date = ? AND crew_id = ?", model.DateOf(date), crewID).
		Order("created_at ASC").
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *dailyReportRepo) ListByDateAndProject(ctx context.Context, date time.Time, projectID string) ([]model.DailyReport, error) {
	var reports []model.DailyReport
	err := r.db.WithContext(ctx).
		Where("report_date = ? AND project_id = ?", model.DateOf(date), projectID).
		Order("created_at ASC").
		Find(&reports).Error
	return reports, err
}

// ── LaborEntry Repository 实现 ──

type laborEntryRepo struct {
	db *gorm.DB
}

func NewLaborEntryRepo(db *gorm.DB) LaborEntryRepository {
	return &laborEntryRepo{db: db}
}

func (r *laborEntryRepo) ListByReport(ctx context.Context, reportID string) ([]model.LaborEntry, error) {
	var entries []model.LaborEntry
	err := r.db.WithContext(ctx).
		Where("daily_report_id = ?", reportID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
