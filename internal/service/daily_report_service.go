package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sacde-pdd/backend/config"
	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
	"sacde-pdd/backend/internal/repository"
)

// ── 日报模块业务错误 ──

var (
	ErrInvalidDate         = errors.New("日期格式错误，应为 YYYY-MM-DD")
	ErrReportNotFound      = errors.New("日报不存在")
	ErrReportNotified      = errors.New("日报已通报，不可修改或删除")
	ErrReportNotNotified   = errors.New("日报尚未通报，不能审批")
	ErrReportEmpty         = errors.New("日报无人员，不能通报")
	ErrCrewNotFound        = errors.New("班组不存在")
	ErrProjectNotFound     = errors.New("项目不存在")
	ErrCrewProjectMismatch = errors.New("班组不属于该项目")
)

// DailyReportService 日报业务接口
type DailyReportService interface {
	// 工作集（人员 + 当日生效阶段 + 可选类型）
	GetWorkingSet(ctx context.Context, sess *authz.Session, q *dto.WorkingSetQuery) (*dto.WorkingSetResponse, error)
	// 单字段编辑校验
	ApplyEdit(ctx context.Context, sess *authz.Session, req *dto.ApplyEditRequest) (*dto.ApplyEditResponse, error)
	// 保存（首次保存创建日报）
	Save(ctx context.Context, sess *authz.Session, req *dto.SaveDailyReportRequest) (*dto.SaveDailyReportResponse, error)
	// 日报详情
	Get(ctx context.Context, sess *authz.Session, id string) (*dto.DailyReportResponse, error)
	// 通报前检查（不改变状态）
	CheckNotify(ctx context.Context, sess *authz.Session, id string) (*dto.NotifyCheckResponse, error)
	// 通报（pending → notified，不可逆）
	Notify(ctx context.Context, sess *authz.Session, id string) (*dto.DailyReportResponse, error)
	// 删除日报及全部明细
	Delete(ctx context.Context, sess *authz.Session, id string) error
	// 可选调动目标
	ListMoveTargets(ctx context.Context, sess *authz.Session, q *dto.MoveTargetQuery) ([]dto.MoveTargetResponse, error)
	// 员工跨班组调动
	MoveEmployee(ctx context.Context, sess *authz.Session, req *dto.MoveEmployeeRequest) (*dto.MoveEmployeeResponse, error)
	// 审批（control | manager）
	Approve(ctx context.Context, sess *authz.Session, id, role string) (*dto.DailyReportResponse, error)
}

type dailyReportService struct {
	repo      *repository.Repository
	authz     authz.Authorizer
	gate      *ApprovalGate
	validator *HourValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewDailyReportService 创建 DailyReportService 实例
func NewDailyReportService(cfg *config.LaborConfig, repo *repository.Repository, authorizer authz.Authorizer, logger *zap.Logger) DailyReportService {
	return &dailyReportService{
		repo:      repo,
		authz:     authorizer,
		gate:      NewApprovalGate(authorizer),
		validator: NewHourValidator(cfg.DailyHoursWarning),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ════════════════════════════════════════════════════════════
// ApplyEdit — 单字段编辑
// ════════════════════════════════════════════════════════════

func (s *dailyReportService) ApplyEdit(ctx context.Context, sess *authz.Session, req *dto.ApplyEditRequest) (*dto.ApplyEditResponse, error) {
	if err := s.authz.Require(sess, authz.DailyReportEdit); err != nil {
		return nil, err
	}

	project, err := s.loadProject(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	rules, err := s.entryRules(ctx, project)
	if err != nil {
		return nil, err
	}

	entry := entryFromInput(&req.Entry)
	next, err := s.validator.ApplyEdit(entry, EntryEdit{
		Field:         req.Field,
		Key:           req.Key,
		Hours:         req.Hours,
		AbsenceTypeID: req.AbsenceTypeID,
	}, rules)
	if err != nil {
		return nil, err
	}

	return &dto.ApplyEditResponse{
		Entry:    toLaborEntryResponse(&next, nil),
		Warnings: s.validator.Warnings(next),
	}, nil
}

// ════════════════════════════════════════════════════════════
// Save — 整体替换明细（原子）
// ════════════════════════════════════════════════════════════

func (s *dailyReportService) Save(ctx context.Context, sess *authz.Session, req *dto.SaveDailyReportRequest) (*dto.SaveDailyReportResponse, error) {
	if err := s.authz.Require(sess, authz.DailyReportEdit); err != nil {
		return nil, err
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	crew, err := s.loadCrew(ctx, req.CrewID)
	if err != nil {
		return nil, err
	}
	project, err := s.loadProject(ctx, crew.ProjectID)
	if err != nil {
		return nil, err
	}

	report, err := s.findReport(ctx, date, crew.CrewID)
	if err != nil {
		return nil, err
	}
	if report != nil && report.IsNotified() {
		return nil, ErrReportNotified
	}

	// 1. 写入前全量校验
	rules, err := s.entryRules(ctx, project)
	if err != nil {
		return nil, err
	}
	entries := make([]model.LaborEntry, 0, len(req.Entries))
	var violations []Violation
	seen := make(map[string]bool, len(req.Entries))
	for i := range req.Entries {
		e := entryFromInput(&req.Entries[i])
		if seen[e.EmployeeID] {
			violations = append(violations, violation(&e, "", "", CodeDuplicateEmployee,
				fmt.Sprintf("员工 %s 在日报中重复出现", e.EmployeeID)))
			continue
		}
		seen[e.EmployeeID] = true
		violations = append(violations, s.validator.Validate(&e, rules)...)
		entries = append(entries, e)
	}
	ids := make([]string, 0, len(entries))
	for i := range entries {
		ids = append(ids, entries[i].EmployeeID)
	}
	known, err := s.employeeNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if _, ok := known[entries[i].EmployeeID]; !ok {
			violations = append(violations, violation(&entries[i], "", "", CodeUnknownEmployee,
				fmt.Sprintf("员工 %s 不存在", entries[i].EmployeeID)))
		}
	}
	if len(violations) > 0 {
		return nil, &EntryValidationError{Violations: violations}
	}

	// 2. 组装批次：首次保存创建日报；否则删除全部旧明细
	actor := sess.ActorID()
	now := s.now()
	batch := repository.NewBatch()
	created := false
	wasManual := make(map[string]bool)

	if report == nil {
		report = newDailyReport(date, crew, actor, now)
		batch.Create(report)
		created = true
	} else {
		old, err := s.repo.LaborEntry.ListByReport(ctx, report.DailyReportID)
		if err != nil {
			s.logger.Error("查询日报明细失败", zap.String("report_id", report.DailyReportID), zap.Error(err))
			return nil, err
		}
		for i := range old {
			if old[i].Manual {
				wasManual[old[i].EmployeeID] = true
			}
			batch.Delete(&old[i])
		}
	}

	for i := range entries {
		e := &entries[i]
		e.LaborEntryID = uuid.NewString()
		e.DailyReportID = report.DailyReportID
		e.Manual = e.Manual || wasManual[e.EmployeeID]
		e.CreatedAt, e.UpdatedAt = now, now
		e.CreatedBy, e.UpdatedBy = &actor, &actor
		batch.Create(e)
	}

	// 3. 原子提交
	if err := s.repo.UnitOfWork.Commit(ctx, batch); err != nil {
		s.logger.Error("保存日报失败",
			zap.String("crew_id", crew.CrewID),
			zap.String("date", req.Date),
			zap.Error(err),
		)
		return nil, err
	}

	resp, err := s.buildReportResponse(ctx, sess, report, project, entries)
	if err != nil {
		return nil, err
	}
	return &dto.SaveDailyReportResponse{
		Report:   *resp,
		Created:  created,
		Warnings: s.validator.Warnings(entries...),
	}, nil
}

// ════════════════════════════════════════════════════════════
// Get
// ════════════════════════════════════════════════════════════

func (s *dailyReportService) Get(ctx context.Context, sess *authz.Session, id string) (*dto.DailyReportResponse, error) {
	if err := s.authz.Require(sess, authz.DailyReportView); err != nil {
		return nil, err
	}
	report, err := s.loadReport(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.loadProject(ctx, report.ProjectID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.LaborEntry.ListByReport(ctx, report.DailyReportID)
	if err != nil {
		s.logger.Error("查询日报明细失败", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}
	return s.buildReportResponse(ctx, sess, report, project, entries)
}

// ════════════════════════════════════════════════════════════
// Notify — 通报守卫 + 状态迁移
// ════════════════════════════════════════════════════════════

func (s *dailyReportService) CheckNotify(ctx context.Context, sess *authz.Session, id string) (*dto.NotifyCheckResponse, error) {
	if err := s.authz.Require(sess, authz.DailyReportView); err != nil {
		return nil, err
	}
	report, err := s.loadReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.IsNotified() {
		return nil, ErrReportNotified
	}

	guard, err := s.evaluateGuard(ctx, report)
	if err != nil {
		return nil, err
	}
	resp := &dto.NotifyCheckResponse{
		CanNotify:    guard == nil,
		MissingInput: []dto.EmployeeRef{},
		MissingPhase: []dto.EmployeeRef{},
	}
	if guard != nil {
		resp.MissingInput = append(resp.MissingInput, guard.MissingInput...)
		resp.MissingPhase = append(resp.MissingPhase, guard.MissingPhase...)
	}
	return resp, nil
}

func (s *dailyReportService) Notify(ctx context.Context, sess *authz.Session, id string) (*dto.DailyReportResponse, error) {
	if err := s.authz.Require(sess, authz.DailyReportNotify); err != nil {
		return nil, err
	}
	report, err := s.loadReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.IsNotified() {
		return nil, ErrReportNotified
	}

	guard, err := s.evaluateGuard(ctx, report)
	if err != nil {
		return nil, err
	}
	if guard != nil {
		return nil, guard
	}

	actor := sess.ActorID()
	now := s.now()
	notified := *report
	notified.Status = model.ReportStatusNotified
	notified.NotifiedAt = &now
	notified.NotifiedBy = &actor
	notified.UpdatedAt = now
	notified.UpdatedBy = &actor

	if err := s.repo.UnitOfWork.Commit(ctx, repository.NewBatch().Update(&notified)); err != nil {
		s.logger.Error("通报日报失败", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("日报已通报",
		zap.String("report_id", id),
		zap.String("crew_id", report.CrewID),
		zap.String("by", actor),
	)
	return s.Get(ctx, sess, id)
}

// evaluateGuard 基于已持久化的全部明细执行通报守卫
func (s *dailyReportService) evaluateGuard(ctx context.Context, report *model.DailyReport) (*NotifyGuardError, error) {
	entries, err := s.repo.LaborEntry.ListByReport(ctx, report.DailyReportID)
	if err != nil {
		s.logger.Error("查询日报明细失败", zap.String("report_id", report.DailyReportID), zap.Error(err))
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrReportEmpty
	}
	crew, err := s.loadCrew(ctx, report.CrewID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.EmployeeID)
	}
	names, err := s.employeeNames(ctx, ids)
	if err != nil {
		return nil, err
	}
	return checkNotifyGuard(entries, crew.ActivePhases(report.ReportDate), names), nil
}

// ════════════════════════════════════════════════════════════
// Delete
// ════════════════════════════════════════════════════════════

func (s *dailyReportService) Delete(ctx context.Context, sess *authz.Session, id string) error {
	if err := s.authz.Require(sess, authz.DailyReportDelete); err != nil {
		return err
	}
	report, err := s.loadReport(ctx, id)
	if err != nil {
		return err
	}
	// 已通报日报仅允许持有高权限者删除
	if report.IsNotified() && !sess.Can(authz.DailyReportDeleteNotified) {
		return ErrReportNotified
	}

	entries, err := s.repo.LaborEntry.ListByReport(ctx, id)
	if err != nil {
		s.logger.Error("查询日报明细失败", zap.String("report_id", id), zap.Error(err))
		return err
	}
	batch := repository.NewBatch()
	for i := range entries {
		batch.Delete(&entries[i])
	}
	batch.Delete(report)

	if err := s.repo.UnitOfWork.Commit(ctx, batch); err != nil {
		s.logger.Error("删除日报失败", zap.String("report_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("日报已删除",
		zap.String("report_id", id),
		zap.String("status", report.Status),
		zap.String("by", sess.ActorID()),
	)
	return nil
}

// ════════════════════════════════════════════════════════════
// Approve — 控制与管理 / 项目经理审批
// ════════════════════════════════════════════════════════════

func (s *dailyReportService) Approve(ctx context.Context, sess *authz.Session, id, role string) (*dto.DailyReportResponse, error) {
	report, err := s.loadReport(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.loadProject(ctx, report.ProjectID)
	if err != nil {
		return nil, err
	}
	slot, ok := findSlot(reportSlots(report, project), ApprovalRole(role))
	if !ok {
		return nil, ErrInvalidApprovalRole
	}
	if !report.IsNotified() {
		return nil, ErrReportNotNotified
	}

	by, at, err := s.gate.Approve(sess, slot, s.now())
	if err != nil {
		return nil, err
	}
	approved := *report
	switch slot.Role {
	case RoleControl:
		approved.ControlApprovedBy, approved.ControlApprovedAt = &by, &at
	case RoleManager:
		approved.ManagerApprovedBy, approved.ManagerApprovedAt = &by, &at
	}
	approved.UpdatedAt = at
	approved.UpdatedBy = &by

	if err := s.repo.UnitOfWork.Commit(ctx, repository.NewBatch().Update(&approved)); err != nil {
		s.logger.Error("日报审批失败", zap.String("report_id", id), zap.String("role", role), zap.Error(err))
		return nil, err
	}
	return s.Get(ctx, sess, id)
}

// reportSlots 日报的两个审批角色；指定审批人为创建时快照的正职 + 替补
func reportSlots(report *model.DailyReport, project *model.Project) []ApprovalSlot {
	return []ApprovalSlot{
		{
			Role:       RoleControl,
			Capability: authz.DailyReportApproveControl,
			Required:   project.RequiresControlApproval,
			Designated: report.ControlManagers(),
			ApprovedBy: report.ControlApprovedBy,
			ApprovedAt: report.ControlApprovedAt,
		},
		{
			Role:       RoleManager,
			Capability: authz.DailyReportApproveManager,
			Required:   project.RequiresManagerApproval,
			Designated: report.ProjectManagers(),
			ApprovedBy: report.ManagerApprovedBy,
			ApprovedAt: report.ManagerApprovedAt,
		},
	}
}

// ── 辅助函数 ──

func newDailyReport(date time.Time, crew *model.Crew, actor string, now time.Time) *model.DailyReport {
	return &model.DailyReport{
		DailyReportID: uuid.NewString(),
		ReportDate:    model.DateOf(date),
		CrewID:        crew.CrewID,
		ProjectID:     crew.ProjectID,
		RoleSlots:     crew.RoleSlots.Snapshot(),
		Status:        model.ReportStatusPending,
		BaseModel: model.BaseModel{
			CreatedAt: now,
			CreatedBy: &actor,
			UpdatedAt: now,
			UpdatedBy: &actor,
		},
	}
}

func (s *dailyReportService) buildReportResponse(
	ctx context.Context,
	sess *authz.Session,
	report *model.DailyReport,
	project *model.Project,
	entries []model.LaborEntry,
) (*dto.DailyReportResponse, error) {
	slots := reportSlots(report, project)
	ids := slotIDs(slots)
	for _, e := range entries {
		ids = append(ids, e.EmployeeID)
	}
	names, err := s.employeeNames(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 未通报的日报不提供审批操作
	approver := sess
	if !report.IsNotified() {
		approver = nil
	}

	resp := &dto.DailyReportResponse{
		ID:         report.DailyReportID,
		Date:       formatDate(report.ReportDate),
		CrewID:     report.CrewID,
		ProjectID:  report.ProjectID,
		Status:     report.Status,
		NotifiedAt: formatTimePtr(report.NotifiedAt),
		NotifiedBy: report.NotifiedBy,
		Approvals:  s.gate.RenderAll(approver, slots, names),
		Entries:    make([]dto.LaborEntryResponse, 0, len(entries)),
		CreatedAt:  formatTime(report.CreatedAt),
		UpdatedAt:  formatTime(report.UpdatedAt),
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, toLaborEntryResponse(&entries[i], names))
	}
	return resp, nil
}

func (s *dailyReportService) loadReport(ctx context.Context, id string) (*model.DailyReport, error) {
	report, err := s.repo.DailyReport.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询日报失败", zap.String("report_id", id), zap.Error(err))
		return nil, err
	}
	return report, nil
}

// findReport (date, crew) 对应的日报，不存在返回 nil
func (s *dailyReportService) findReport(ctx context.Context, date time.Time, crewID string) (*model.DailyReport, error) {
	report, err := s.repo.DailyReport.GetByDateAndCrew(ctx, date, crewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询日报失败", zap.String("crew_id", crewID), zap.Error(err))
		return nil, err
	}
	return report, nil
}

func (s *dailyReportService) loadCrew(ctx context.Context, id string) (*model.Crew, error) {
	crew, err := s.repo.Crew.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCrewNotFound
		}
		s.logger.Error("查询班组失败", zap.String("crew_id", id), zap.Error(err))
		return nil, err
	}
	return crew, nil
}

func (s *dailyReportService) loadProject(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.String("project_id", id), zap.Error(err))
		return nil, err
	}
	return project, nil
}

func (s *dailyReportService) entryRules(ctx context.Context, project *model.Project) (*EntryRules, error) {
	phases, err := s.repo.Phase.ListByProject(ctx, project.ProjectID)
	if err != nil {
		s.logger.Error("查询项目阶段失败", zap.String("project_id", project.ProjectID), zap.Error(err))
		return nil, err
	}
	ids := make(map[string]bool, len(phases))
	for _, p := range phases {
		ids[p.PhaseID] = true
	}
	return &EntryRules{Project: project, PhaseIDs: ids}, nil
}

func (s *dailyReportService) employeeNames(ctx context.Context, ids []string) (map[string]string, error) {
	return lookupEmployeeNames(ctx, s.repo.Employee, s.logger, ids)
}

// lookupEmployeeNames 批量解析员工姓名（去重）
func lookupEmployeeNames(ctx context.Context, repo repository.EmployeeRepository, logger *zap.Logger, ids []string) (map[string]string, error) {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	names := make(map[string]string, len(uniq))
	if len(uniq) == 0 {
		return names, nil
	}
	employees, err := repo.ListByIDs(ctx, uniq)
	if err != nil {
		logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	for _, e := range employees {
		names[e.EmployeeID] = e.Name
	}
	return names, nil
}
