package service

import (
	"errors"
	"time"

	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/dto"
)

// ── 审批模块业务错误 ──

var (
	ErrInvalidApprovalRole   = errors.New("无效的审批角色")
	ErrApprovalNotRequired   = errors.New("该角色无需审批")
	ErrAlreadyApproved       = errors.New("该角色已审批，不可重复审批")
	ErrNotDesignatedApprover = errors.New("当前用户不是指定审批人")
)

// ApprovalRole 审批角色
type ApprovalRole string

const (
	RoleControl    ApprovalRole = "control"    // 日报：控制与管理
	RoleManager    ApprovalRole = "manager"    // 日报：项目经理
	RoleSupervisor ApprovalRole = "supervisor" // 许可：主管
	RoleHR         ApprovalRole = "hr"         // 许可：人力资源
)

// 审批状态
const (
	ApprovalApproved    = "approved"
	ApprovalPending     = "pending"
	ApprovalNotRequired = "not_required"
)

// ApprovalSlot 单个审批角色在某条记录上的状态
type ApprovalSlot struct {
	Role       ApprovalRole
	Capability authz.Capability
	Required   bool
	Designated []string // 为空表示任何持有权限者均可审批
	ApprovedBy *string
	ApprovedAt *time.Time
}

// Approved 是否已审批
func (s ApprovalSlot) Approved() bool {
	return s.ApprovedBy != nil && *s.ApprovedBy != ""
}

// ApprovalGate 两方独立审批的通用判定
type ApprovalGate struct {
	authz authz.Authorizer
}

// NewApprovalGate 创建审批判定
func NewApprovalGate(a authz.Authorizer) *ApprovalGate {
	return &ApprovalGate{authz: a}
}

// Check 判定调用方能否审批该角色：
// 需要审批 且 未审批 且 持有角色权限 且（未指定审批人 或 调用方即指定审批人）
func (g *ApprovalGate) Check(sess *authz.Session, slot ApprovalSlot) error {
	if !slot.Required {
		return ErrApprovalNotRequired
	}
	if slot.Approved() {
		return ErrAlreadyApproved
	}
	if err := g.authz.Require(sess, slot.Capability); err != nil {
		return err
	}
	if len(slot.Designated) > 0 && !sess.IsAny(slot.Designated) {
		return ErrNotDesignatedApprover
	}
	return nil
}

// CanApprove 是否向调用方提供审批操作
func (g *ApprovalGate) CanApprove(sess *authz.Session, slot ApprovalSlot) bool {
	return g.Check(sess, slot) == nil
}

// Approve 校验后返回应写入的审批人与时间（单向，不可撤销）
func (g *ApprovalGate) Approve(sess *authz.Session, slot ApprovalSlot, now time.Time) (string, time.Time, error) {
	if err := g.Check(sess, slot); err != nil {
		return "", time.Time{}, err
	}
	return sess.ActorID(), now, nil
}

// Render 生成展示状态；names 为员工 ID → 姓名
func (g *ApprovalGate) Render(sess *authz.Session, slot ApprovalSlot, names map[string]string) dto.ApprovalState {
	state := dto.ApprovalState{Role: string(slot.Role)}
	switch {
	case !slot.Required && !slot.Approved():
		state.Status = ApprovalNotRequired
	case slot.Approved():
		state.Status = ApprovalApproved
		state.ApproverID = *slot.ApprovedBy
		state.ApproverName = nameOf(names, *slot.ApprovedBy)
		if slot.ApprovedAt != nil {
			state.ApprovedAt = slot.ApprovedAt.Format(time.RFC3339)
		}
	default:
		state.Status = ApprovalPending
		state.CanApprove = g.CanApprove(sess, slot)
		if !state.CanApprove {
			for _, id := range slot.Designated {
				state.Responsible = append(state.Responsible, nameOf(names, id))
			}
		}
	}
	return state
}

// RenderAll 按顺序生成全部角色的展示状态
func (g *ApprovalGate) RenderAll(sess *authz.Session, slots []ApprovalSlot, names map[string]string) []dto.ApprovalState {
	out := make([]dto.ApprovalState, 0, len(slots))
	for _, s := range slots {
		out = append(out, g.Render(sess, s, names))
	}
	return out
}

// findSlot 按角色查找
func findSlot(slots []ApprovalSlot, role ApprovalRole) (ApprovalSlot, bool) {
	for _, s := range slots {
		if s.Role == role {
			return s, true
		}
	}
	return ApprovalSlot{}, false
}

// slotIDs 收集审批相关的全部员工 ID（用于批量解析姓名）
func slotIDs(slots []ApprovalSlot) []string {
	var ids []string
	for _, s := range slots {
		ids = append(ids, s.Designated...)
		if s.ApprovedBy != nil {
			ids = append(ids, *s.ApprovedBy)
		}
	}
	return ids
}
