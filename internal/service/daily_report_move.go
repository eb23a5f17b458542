package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
	"sacde-pdd/backend/internal/repository"
)

// ── 调动模块业务错误 ──

var (
	ErrMoveSameCrew            = errors.New("源班组与目标班组相同")
	ErrMoveCrossProject        = errors.New("只能在同一项目的班组之间调动")
	ErrMoveSourceNoReport      = errors.New("源班组当日无日报")
	ErrMoveSourceNotified      = errors.New("源班组日报已通报，不能调出")
	ErrMoveEmployeeNotOnSource = errors.New("员工不在源班组日报中")
	ErrMoveTargetNotified      = errors.New("目标班组日报已通报，不能调入")
	ErrMoveEmployeeOnTarget    = errors.New("员工已在目标班组日报中")
)

// ════════════════════════════════════════════════════════════
// ListMoveTargets — 同项目、当日日报未通报的其他班组
// ════════════════════════════════════════════════════════════

func (s *dailyReportService) ListMoveTargets(ctx context.Context, sess *authz.Session, q *dto.MoveTargetQuery) ([]dto.MoveTargetResponse, error) {
	if err := s.authz.Require(sess, authz.DailyReportMove); err != nil {
		return nil, err
	}
	date, err := model.ParseDate(q.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	source, err := s.loadCrew(ctx, q.CrewID)
	if err != nil {
		return nil, err
	}

	summary, err := s.crewStatusSummary(ctx, date, source.ProjectID)
	if err != nil {
		return nil, err
	}
	targets := make([]dto.MoveTargetResponse, 0, len(summary))
	for _, c := range summary {
		if c.CrewID == source.CrewID || c.Status == model.ReportStatusNotified {
			continue
		}
		targets = append(targets, dto.MoveTargetResponse{
			CrewID:        c.CrewID,
			CrewName:      c.CrewName,
			Status:        c.Status,
			DailyReportID: c.DailyReportID,
		})
	}
	return targets, nil
}

// ════════════════════════════════════════════════════════════
// MoveEmployee — 跨班组调动（单批次原子提交）
// ════════════════════════════════════════════════════════════
//
//  1. 删除员工在源日报中的明细
//  2. 目标班组当日无日报时，按目标班组当前角色创建 pending 日报
//  3. 在目标日报中插入空白明细（manual = true）
//
// 任何前置条件不满足都在写入前中止。

func (s *dailyReportService) MoveEmployee(ctx context.Context, sess *authz.Session, req *dto.MoveEmployeeRequest) (*dto.MoveEmployeeResponse, error) {
	if err := s.authz.Require(sess, authz.DailyReportMove); err != nil {
		return nil, err
	}
	if req.SourceCrewID == req.TargetCrewID {
		return nil, ErrMoveSameCrew
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	// ── 前置条件 ──

	sourceCrew, err := s.loadCrew(ctx, req.SourceCrewID)
	if err != nil {
		return nil, err
	}
	targetCrew, err := s.loadCrew(ctx, req.TargetCrewID)
	if err != nil {
		return nil, err
	}
	if sourceCrew.ProjectID != targetCrew.ProjectID {
		return nil, ErrMoveCrossProject
	}

	source, err := s.findReport(ctx, date, sourceCrew.CrewID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrMoveSourceNoReport
	}
	if source.IsNotified() {
		return nil, ErrMoveSourceNotified
	}
	sourceEntries, err := s.repo.LaborEntry.ListByReport(ctx, source.DailyReportID)
	if err != nil {
		s.logger.Error("查询源日报明细失败", zap.String("report_id", source.DailyReportID), zap.Error(err))
		return nil, err
	}
	var moving *model.LaborEntry
	for i := range sourceEntries {
		if sourceEntries[i].EmployeeID == req.EmployeeID {
			moving = &sourceEntries[i]
			break
		}
	}
	if moving == nil {
		return nil, ErrMoveEmployeeNotOnSource
	}

	target, err := s.findReport(ctx, date, targetCrew.CrewID)
	if err != nil {
		return nil, err
	}
	if target != nil {
		if target.IsNotified() {
			return nil, ErrMoveTargetNotified
		}
		targetEntries, err := s.repo.LaborEntry.ListByReport(ctx, target.DailyReportID)
		if err != nil {
			s.logger.Error("查询目标日报明细失败", zap.String("report_id", target.DailyReportID), zap.Error(err))
			return nil, err
		}
		for _, e := range targetEntries {
			if e.EmployeeID == req.EmployeeID {
				return nil, ErrMoveEmployeeOnTarget
			}
		}
	}

	// ── 组装批次 ──

	actor := sess.ActorID()
	now := s.now()
	batch := repository.NewBatch().Delete(moving)

	created := false
	if target == nil {
		target = newDailyReport(date, targetCrew, actor, now)
		batch.Create(target)
		created = true
	}

	entry := &model.LaborEntry{
		LaborEntryID:      uuid.NewString(),
		DailyReportID:     target.DailyReportID,
		EmployeeID:        req.EmployeeID,
		ProductiveHours:   model.HourMap{},
		UnproductiveHours: model.HourMap{},
		SpecialHours:      model.HourMap{},
		Manual:            true,
		BaseModel: model.BaseModel{
			CreatedAt: now,
			CreatedBy: &actor,
			UpdatedAt: now,
			UpdatedBy: &actor,
		},
	}
	batch.Create(entry)

	if err := s.repo.UnitOfWork.Commit(ctx, batch); err != nil {
		s.logger.Error("员工调动失败",
			zap.String("employee_id", req.EmployeeID),
			zap.String("from", sourceCrew.CrewID),
			zap.String("to", targetCrew.CrewID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("员工已调动",
		zap.String("employee_id", req.EmployeeID),
		zap.String("from_report", source.DailyReportID),
		zap.String("to_report", target.DailyReportID),
	)

	names, err := s.employeeNames(ctx, []string{req.EmployeeID})
	if err != nil {
		return nil, err
	}
	return &dto.MoveEmployeeResponse{
		SourceReportID: source.DailyReportID,
		TargetReportID: target.DailyReportID,
		TargetCreated:  created,
		Entry:          toLaborEntryResponse(entry, names),
	}, nil
}
