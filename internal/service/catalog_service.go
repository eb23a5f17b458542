package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/model"
	"sacde-pdd/backend/internal/repository"
	pkgredis "sacde-pdd/backend/pkg/redis"
)

// Cache 目录读缓存（pkg/redis.Client 实现）；为 nil 时直接读库
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CatalogService 目录只读接口（录入界面的下拉数据）
type CatalogService interface {
	ListProjects(ctx context.Context, sess *authz.Session) ([]model.Project, error)
	ListCrews(ctx context.Context, sess *authz.Session, projectID string) ([]model.Crew, error)
	ListEmployees(ctx context.Context, sess *authz.Session) ([]model.Employee, error)
	ListPhases(ctx context.Context, sess *authz.Session, projectID string) ([]model.Phase, error)
	ListAbsenceTypes(ctx context.Context, sess *authz.Session) ([]model.AbsenceType, error)
	ListSpecialHourTypes(ctx context.Context, sess *authz.Session) ([]model.SpecialHourType, error)
	ListUnproductiveHourTypes(ctx context.Context, sess *authz.Session) ([]model.UnproductiveHourType, error)
}

type catalogService struct {
	repo   *repository.Repository
	authz  authz.Authorizer
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, authorizer authz.Authorizer, cache Cache, ttl time.Duration, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, authz: authorizer, cache: cache, ttl: ttl, logger: logger}
}

func (s *catalogService) ListProjects(ctx context.Context, sess *authz.Session) ([]model.Project, error) {
	if err := s.authz.Require(sess, authz.CatalogView); err != nil {
		return nil, err
	}
	return cached(ctx, s, "projects", s.repo.Project.List)
}

func (s *catalogService) ListCrews(ctx context.Context, sess *authz.Session, projectID string) ([]model.Crew, error) {
	if err := s.authz.Require(sess, authz.CatalogView); err != nil {
		return nil, err
	}
	return cached(ctx, s, "crews:"+projectID, func(ctx context.Context) ([]model.Crew, error) {
		return s.repo.Crew.ListByProject(ctx, projectID)
	})
}

func (s *catalogService) ListEmployees(ctx context.Context, sess *authz.Session) ([]model.Employee, error) {
	if err := s.authz.Require(sess, authz.CatalogView); err != nil {
		return nil, err
	}
	return cached(ctx, s, "employees", s.repo.Employee.List)
}

func (s *catalogService) ListPhases(ctx context.Context, sess *authz.Session, projectID string) ([]model.Phase, error) {
	if err := s.authz.Require(sess, authz.CatalogView); err != nil {
		return nil, err
	}
	return cached(ctx, s, "phases:"+projectID, func(ctx context.Context) ([]model.Phase, error) {
		return s.repo.Phase.ListByProject(ctx, projectID)
	})
}

func (s *catalogService) ListAbsenceTypes(ctx context.Context, sess *authz.Session) ([]model.AbsenceType, error) {
	if err := s.authz.Require(sess, authz.CatalogView); err != nil {
		return nil, err
	}
	return cached(ctx, s, "absence_types", s.repo.Catalog.ListAbsenceTypes)
}

func (s *catalogService) ListSpecialHourTypes(ctx context.Context, sess *authz.Session) ([]model.SpecialHourType, error) {
	if err := s.authz.Require(sess, authz.CatalogView); err != nil {
		return nil, err
	}
	return cached(ctx, s, "special_hour_types", s.repo.Catalog.ListSpecialHourTypes)
}

func (s *catalogService) ListUnproductiveHourTypes(ctx context.Context, sess *authz.Session) ([]model.UnproductiveHourType, error) {
	if err := s.authz.Require(sess, authz.CatalogView); err != nil {
		return nil, err
	}
	return cached(ctx, s, "unproductive_hour_types", s.repo.Catalog.ListUnproductiveHourTypes)
}

// cached 先读缓存，未命中时读库并回写；缓存故障只记日志
func cached[T any](ctx context.Context, s *catalogService, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if s.cache != nil {
		var hit []T
		err := s.cache.GetJSON(ctx, key, &hit)
		if err == nil {
			return hit, nil
		}
		if !errors.Is(err, pkgredis.ErrCacheMiss) {
			s.logger.Warn("读取目录缓存失败", zap.String("key", key), zap.Error(err))
		}
	}

	list, err := load(ctx)
	if err != nil {
		s.logger.Error("查询目录失败", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, list, s.ttl); err != nil {
			s.logger.Warn("写入目录缓存失败", zap.String("key", key), zap.Error(err))
		}
	}
	return list, nil
}
