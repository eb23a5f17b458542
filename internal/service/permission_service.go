package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
	"sacde-pdd/backend/internal/repository"
)

// ── 请假许可模块业务错误 ──

var (
	ErrPermissionNotFound  = errors.New("请假许可不存在")
	ErrPermissionDateRange = errors.New("结束日期不能早于开始日期")
	ErrPermissionOverlap   = errors.New("与该员工已有的请假许可日期重叠")
	ErrPermissionApproved  = errors.New("请假许可已有审批记录，不可修改")
	ErrEmployeeNotFound    = errors.New("员工不存在")
	ErrAbsenceTypeNotFound = errors.New("缺勤类型不存在")
)

// PermissionOverlapError 日期重叠，携带冲突记录
type PermissionOverlapError struct {
	Conflict dto.PermissionOverlapDetail
}

func (e *PermissionOverlapError) Error() string {
	return fmt.Sprintf("%s（%s ~ %s）", ErrPermissionOverlap.Error(), e.Conflict.StartDate, e.Conflict.EndDate)
}

func (e *PermissionOverlapError) Unwrap() error { return ErrPermissionOverlap }

// PermissionService 请假许可业务接口
type PermissionService interface {
	List(ctx context.Context, sess *authz.Session, q *dto.PermissionListQuery) ([]dto.PermissionResponse, error)
	Get(ctx context.Context, sess *authz.Session, id string) (*dto.PermissionResponse, error)
	Create(ctx context.Context, sess *authz.Session, req *dto.CreatePermissionRequest) (*dto.PermissionResponse, error)
	Update(ctx context.Context, sess *authz.Session, id string, req *dto.UpdatePermissionRequest) (*dto.PermissionResponse, error)
	Delete(ctx context.Context, sess *authz.Session, id string) error
	// 审批（supervisor | hr）
	Approve(ctx context.Context, sess *authz.Session, id, role string) (*dto.PermissionResponse, error)
	// iCalendar 日历订阅
	Calendar(ctx context.Context, sess *authz.Session, q *dto.PermissionListQuery) ([]byte, error)
}

type permissionService struct {
	repo   *repository.Repository
	authz  authz.Authorizer
	gate   *ApprovalGate
	logger *zap.Logger
	now    func() time.Time
}

// NewPermissionService 创建 PermissionService 实例
func NewPermissionService(repo *repository.Repository, authorizer authz.Authorizer, logger *zap.Logger) PermissionService {
	return &permissionService{
		repo:   repo,
		authz:  authorizer,
		gate:   NewApprovalGate(authorizer),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ── 查询 ──

func (s *permissionService) List(ctx context.Context, sess *authz.Session, q *dto.PermissionListQuery) ([]dto.PermissionResponse, error) {
	if err := s.authz.Require(sess, authz.PermissionView); err != nil {
		return nil, err
	}
	list, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, sess, list)
}

func (s *permissionService) Get(ctx context.Context, sess *authz.Session, id string) (*dto.PermissionResponse, error) {
	if err := s.authz.Require(sess, authz.PermissionView); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.toResponses(ctx, sess, []model.Permission{*p})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ── 写入 ──

func (s *permissionService) Create(ctx context.Context, sess *authz.Session, req *dto.CreatePermissionRequest) (*dto.PermissionResponse, error) {
	if err := s.authz.Require(sess, authz.PermissionEdit); err != nil {
		return nil, err
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Employee.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	if err := s.checkAbsenceType(ctx, req.AbsenceTypeID); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, req.EmployeeID, "", start, end); err != nil {
		return nil, err
	}

	actor := sess.ActorID()
	now := s.now()
	p := &model.Permission{
		PermissionID:         uuid.NewString(),
		EmployeeID:           req.EmployeeID,
		AbsenceTypeID:        req.AbsenceTypeID,
		StartDate:            start,
		EndDate:              end,
		Observation:          req.Observation,
		SupervisorApproverID: emptyToNil(req.SupervisorApproverID),
		HRApproverID:         emptyToNil(req.HRApproverID),
		BaseModel: model.BaseModel{
			CreatedAt: now,
			CreatedBy: &actor,
			UpdatedAt: now,
			UpdatedBy: &actor,
		},
	}
	if err := s.repo.UnitOfWork.Commit(ctx, repository.NewBatch().Create(p)); err != nil {
		s.logger.Error("创建请假许可失败", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		return nil, err
	}
	return s.single(ctx, sess, p)
}

func (s *permissionService) Update(ctx context.Context, sess *authz.Session, id string, req *dto.UpdatePermissionRequest) (*dto.PermissionResponse, error) {
	if err := s.authz.Require(sess, authz.PermissionEdit); err != nil {
		return nil, err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SupervisorApprovedBy != nil || p.HRApprovedBy != nil {
		return nil, ErrPermissionApproved
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := s.checkAbsenceType(ctx, req.AbsenceTypeID); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(ctx, p.EmployeeID, p.PermissionID, start, end); err != nil {
		return nil, err
	}

	actor := sess.ActorID()
	updated := *p
	updated.AbsenceTypeID = req.AbsenceTypeID
	updated.StartDate = start
	updated.EndDate = end
	updated.Observation = req.Observation
	updated.SupervisorApproverID = emptyToNil(req.SupervisorApproverID)
	updated.HRApproverID = emptyToNil(req.HRApproverID)
	updated.UpdatedAt = s.now()
	updated.UpdatedBy = &actor

	if err := s.repo.UnitOfWork.Commit(ctx, repository.NewBatch().Update(&updated)); err != nil {
		s.logger.Error("更新请假许可失败", zap.String("permission_id", id), zap.Error(err))
		return nil, err
	}
	return s.single(ctx, sess, &updated)
}

func (s *permissionService) Delete(ctx context.Context, sess *authz.Session, id string) error {
	if err := s.authz.Require(sess, authz.PermissionEdit); err != nil {
		return err
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.UnitOfWork.Commit(ctx, repository.NewBatch().Delete(p)); err != nil {
		s.logger.Error("删除请假许可失败", zap.String("permission_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 审批 ──

func (s *permissionService) Approve(ctx context.Context, sess *authz.Session, id, role string) (*dto.PermissionResponse, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	slot, ok := findSlot(permissionSlots(p), ApprovalRole(role))
	if !ok {
		return nil, ErrInvalidApprovalRole
	}
	by, at, err := s.gate.Approve(sess, slot, s.now())
	if err != nil {
		return nil, err
	}

	approved := *p
	switch slot.Role {
	case RoleSupervisor:
		approved.SupervisorApprovedBy, approved.SupervisorApprovedAt = &by, &at
	case RoleHR:
		approved.HRApprovedBy, approved.HRApprovedAt = &by, &at
	}
	approved.UpdatedAt = at
	approved.UpdatedBy = &by

	if err := s.repo.UnitOfWork.Commit(ctx, repository.NewBatch().Update(&approved)); err != nil {
		s.logger.Error("请假许可审批失败", zap.String("permission_id", id), zap.String("role", role), zap.Error(err))
		return nil, err
	}
	return s.single(ctx, sess, &approved)
}

// permissionSlots 许可的两个审批角色始终需要；指定审批人可选
func permissionSlots(p *model.Permission) []ApprovalSlot {
	designated := func(id *string) []string {
		if id == nil || *id == "" {
			return nil
		}
		return []string{*id}
	}
	return []ApprovalSlot{
		{
			Role:       RoleSupervisor,
			Capability: authz.PermissionApproveSupervisor,
			Required:   true,
			Designated: designated(p.SupervisorApproverID),
			ApprovedBy: p.SupervisorApprovedBy,
			ApprovedAt: p.SupervisorApprovedAt,
		},
		{
			Role:       RoleHR,
			Capability: authz.PermissionApproveHR,
			Required:   true,
			Designated: designated(p.HRApproverID),
			ApprovedBy: p.HRApprovedBy,
			ApprovedAt: p.HRApprovedAt,
		},
	}
}

// ════════════════════════════════════════════════════════════
// Calendar — 每条许可一个全天事件
// ════════════════════════════════════════════════════════════

func (s *permissionService) Calendar(ctx context.Context, sess *authz.Session, q *dto.PermissionListQuery) ([]byte, error) {
	if err := s.authz.Require(sess, authz.PermissionView); err != nil {
		return nil, err
	}
	list, err := s.query(ctx, q)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.EmployeeID)
	}
	names, err := lookupEmployeeNames(ctx, s.repo.Employee, s.logger, ids)
	if err != nil {
		return nil, err
	}
	absences, err := s.repo.Catalog.ListAbsenceTypes(ctx)
	if err != nil {
		s.logger.Error("查询缺勤类型失败", zap.Error(err))
		return nil, err
	}
	absenceNames := make(map[string]string, len(absences))
	for _, a := range absences {
		absenceNames[a.AbsenceTypeID] = a.Name
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SACDE//Parte Diario//ES")
	cal.SetXWRCalName("Permisos")

	stamp := s.now()
	for i := range list {
		p := &list[i]
		ev := cal.AddEvent(p.PermissionID + "@sacde-pdd")
		ev.SetDtStampTime(stamp)
		ev.SetSummary(fmt.Sprintf("%s - %s", nameOf(names, p.EmployeeID), nameOf(absenceNames, p.AbsenceTypeID)))
		ev.SetAllDayStartAt(p.StartDate)
		ev.SetAllDayEndAt(p.EndDate.AddDate(0, 0, 1)) // DTEND 为开区间
		ev.SetDescription(approvalSummary(p, names))
	}
	return []byte(cal.Serialize()), nil
}

func approvalSummary(p *model.Permission, names map[string]string) string {
	line := func(label string, by *string) string {
		if by == nil {
			return label + ": pendiente"
		}
		return label + ": " + nameOf(names, *by)
	}
	desc := line("Supervisor", p.SupervisorApprovedBy) + "\n" + line("RRHH", p.HRApprovedBy)
	if p.Observation != "" {
		desc += "\n" + p.Observation
	}
	return desc
}

// ── 辅助函数 ──

func (s *permissionService) query(ctx context.Context, q *dto.PermissionListQuery) ([]model.Permission, error) {
	filter := repository.PermissionFilter{EmployeeID: q.EmployeeID}
	if q.From != "" {
		from, err := model.ParseDate(q.From)
		if err != nil {
			return nil, ErrInvalidDate
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := model.ParseDate(q.To)
		if err != nil {
			return nil, ErrInvalidDate
		}
		filter.To = &to
	}
	list, err := s.repo.Permission.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询请假许可失败", zap.Error(err))
		return nil, err
	}
	return list, nil
}

func (s *permissionService) load(ctx context.Context, id string) (*model.Permission, error) {
	p, err := s.repo.Permission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		s.logger.Error("查询请假许可失败", zap.String("permission_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// checkOverlap 同一员工的许可闭区间不得相交；exceptID 为更新时的自身
func (s *permissionService) checkOverlap(ctx context.Context, employeeID, exceptID string, start, end time.Time) error {
	existing, err := s.repo.Permission.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询员工请假许可失败", zap.String("employee_id", employeeID), zap.Error(err))
		return err
	}
	for i := range existing {
		p := &existing[i]
		if p.PermissionID == exceptID {
			continue
		}
		if p.Overlaps(start, end) {
			return &PermissionOverlapError{Conflict: dto.PermissionOverlapDetail{
				ConflictID: p.PermissionID,
				StartDate:  formatDate(p.StartDate),
				EndDate:    formatDate(p.EndDate),
			}}
		}
	}
	return nil
}

func (s *permissionService) checkAbsenceType(ctx context.Context, id string) error {
	types, err := s.repo.Catalog.ListAbsenceTypes(ctx)
	if err != nil {
		s.logger.Error("查询缺勤类型失败", zap.Error(err))
		return err
	}
	for _, t := range types {
		if t.AbsenceTypeID == id {
			return nil
		}
	}
	return ErrAbsenceTypeNotFound
}

func (s *permissionService) single(ctx context.Context, sess *authz.Session, p *model.Permission) (*dto.PermissionResponse, error) {
	out, err := s.toResponses(ctx, sess, []model.Permission{*p})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *permissionService) toResponses(ctx context.Context, sess *authz.Session, list []model.Permission) ([]dto.PermissionResponse, error) {
	var ids []string
	for i := range list {
		ids = append(ids, list[i].EmployeeID)
		ids = append(ids, slotIDs(permissionSlots(&list[i]))...)
	}
	names, err := lookupEmployeeNames(ctx, s.repo.Employee, s.logger, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PermissionResponse, 0, len(list))
	for i := range list {
		approvals := s.gate.RenderAll(sess, permissionSlots(&list[i]), names)
		out = append(out, toPermissionResponse(&list[i], approvals, names))
	}
	return out, nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := model.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	end, err := model.ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrPermissionDateRange
	}
	return start, end, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
