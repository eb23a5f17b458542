package authz

import "errors"

// ErrForbidden 缺少操作权限
var ErrForbidden = errors.New("权限不足")

// Session 当前调用方身份，由认证中间件构造并显式传入各业务操作
type Session struct {
	UserID     string
	EmployeeID string // 对应员工档案，可为空
	Email      string
	caps       Set
}

// NewSession 创建会话
func NewSession(userID, employeeID, email string, caps Set) *Session {
	if caps == nil {
		caps = Set{}
	}
	return &Session{UserID: userID, EmployeeID: employeeID, Email: email, caps: caps}
}

// Can 是否持有权限
func (s *Session) Can(c Capability) bool {
	return s != nil && s.caps.Has(c)
}

// Capabilities 权限集合副本
func (s *Session) Capabilities() Set {
	out := make(Set, len(s.caps))
	for c := range s.caps {
		out[c] = struct{}{}
	}
	return out
}

// ActorID 写入审计 / 审批字段的身份：优先员工 ID
func (s *Session) ActorID() string {
	if s.EmployeeID != "" {
		return s.EmployeeID
	}
	return s.UserID
}

// Is 指定的 id 是否就是当前调用方（用户 ID 或员工 ID）
func (s *Session) Is(id string) bool {
	if s == nil || id == "" {
		return false
	}
	return id == s.UserID || id == s.EmployeeID
}

// IsAny 是否为列表中任一身份
func (s *Session) IsAny(ids []string) bool {
	for _, id := range ids {
		if s.Is(id) {
			return true
		}
	}
	return false
}

// Authorizer 统一的权限校验入口
type Authorizer interface {
	Require(s *Session, c Capability) error
	RequireAny(s *Session, caps ...Capability) error
}

type capabilityAuthorizer struct{}

// NewAuthorizer 基于会话权限集合的校验器
func NewAuthorizer() Authorizer {
	return capabilityAuthorizer{}
}

func (capabilityAuthorizer) Require(s *Session, c Capability) error {
	if !s.Can(c) {
		return ErrForbidden
	}
	return nil
}

func (capabilityAuthorizer) RequireAny(s *Session, caps ...Capability) error {
	for _, c := range caps {
		if s.Can(c) {
			return nil
		}
	}
	return ErrForbidden
}
