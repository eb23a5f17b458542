package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Project     ProjectRepository
	Crew        CrewRepository
	Employee    EmployeeRepository
	Phase       PhaseRepository
	Catalog     CatalogRepository
	DailyReport DailyReportRepository
	LaborEntry  LaborEntryRepository
	Permission  PermissionRepository
	UnitOfWork  UnitOfWork
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Project:     NewProjectRepo(db),
		Crew:        NewCrewRepo(db),
		Employee:    NewEmployeeRepo(db),
		Phase:       NewPhaseRepo(db),
		Catalog:     NewCatalogRepo(db),
		DailyReport: NewDailyReportRepo(db),
		LaborEntry:  NewLaborEntryRepo(db),
		Permission:  NewPermissionRepo(db),
		UnitOfWork:  NewUnitOfWork(db),
	}
}
