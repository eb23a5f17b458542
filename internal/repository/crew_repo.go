package repository

import (
	"context"

	"gorm.io/gorm"

	"sacde-pdd/backend/internal/model"
)

// CrewRepository 班组数据访问接口（含阶段分配）
type CrewRepository interface {
	GetByID(ctx context.Context, id string) (*model.Crew, error)
	ListByProject(ctx context.Context, projectID string) ([]model.Crew, error)
}

type crewRepo struct {
	db *gorm.DB
}

func NewCrewRepo(db *gorm.DB) CrewRepository {
	return &crewRepo{db: db}
}

func (r *crewRepo) GetByID(ctx context.Context, id string) (*model.Crew, error) {
	var crew model.Crew
	err := r.db.WithContext(ctx).
		Preload("Phases", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC") }).
		Preload("Phases.Phase").
		Where("crew_id = ?", id).
		First(&crew).Error
	if err != nil {
		return nil, err
	}
	return &crew, nil
}

func (r *crewRepo) ListByProject(ctx context.Context, projectID string) ([]model.Crew, error) {
	var crews []model.Crew
	db := r.db.WithContext(ctx).
		Preload("Phases", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC") }).
		Preload("Phases.Phase")
	if projectID != "" {
		db = db.Where("project_id = ?", projectID)
	}
	err := db.Order("name ASC").Find(&crews).Error
	return crews, err
}
