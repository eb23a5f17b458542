package authz

import (
	"sort"
	"strings"
)

// Capability 单个操作权限
type Capability string

// ── 日报 ──
const (
	DailyReportView           Capability = "daily_report:view"
	DailyReportEdit           Capability = "daily_report:edit"
	DailyReportNotify         Capability = "daily_report:notify"
	DailyReportDelete         Capability = "daily_report:delete"
	DailyReportDeleteNotified Capability = "daily_report:delete_notified" // 删除已通报日报（高权限）
	DailyReportMove           Capability = "daily_report:move"
	DailyReportApproveControl Capability = "daily_report:approve_control"
	DailyReportApproveManager Capability = "daily_report:approve_manager"
	DailyReportExport         Capability = "daily_report:export"
)

// ── 请假许可 ──
const (
	PermissionView              Capability = "permission:view"
	PermissionEdit              Capability = "permission:edit"
	PermissionApproveSupervisor Capability = "permission:approve_supervisor"
	PermissionApproveHR         Capability = "permission:approve_hr"
)

// ── 目录 ──
const (
	CatalogView Capability = "catalog:view"
)

// All 所有已知权限
var All = []Capability{
	DailyReportView, DailyReportEdit, DailyReportNotify, DailyReportDelete,
	DailyReportDeleteNotified, DailyReportMove, DailyReportApproveControl,
	DailyReportApproveManager, DailyReportExport,
	PermissionView, PermissionEdit, PermissionApproveSupervisor, PermissionApproveHR,
	CatalogView,
}

var known = func() map[Capability]struct{} {
	m := make(map[Capability]struct{}, len(All))
	for _, c := range All {
		m[c] = struct{}{}
	}
	return m
}()

// Set 权限集合
type Set map[Capability]struct{}

// NewSet 由权限常量构造集合
func NewSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		s[c] = struct{}{}
	}
	return s
}

// Has 是否包含
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Strings 有序字符串列表（用于签发令牌与日志）
func (s Set) Strings() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

// Parse 将身份服务下发的扁平权限字符串转换为权限集合。
// 支持 "*"（全部）与 "daily_report:*" 形式的前缀通配；未识别的字符串原样返回给调用方记录。
func Parse(perms []string) (Set, []string) {
	set := make(Set)
	var unknown []string
	for _, raw := range perms {
		p := strings.TrimSpace(raw)
		switch {
		case p == "":
			continue
		case p == "*":
			for _, c := range All {
				set[c] = struct{}{}
			}
		case strings.HasSuffix(p, ":*"):
			prefix := strings.TrimSuffix(p, "*")
			matched := false
			for _, c := range All {
				if strings.HasPrefix(string(c), prefix) {
					set[c] = struct{}{}
					matched = true
				}
			}
			if !matched {
				unknown = append(unknown, p)
			}
		default:
			if _, ok := known[Capability(p)]; ok {
				set[Capability(p)] = struct{}{}
			} else {
				unknown = append(unknown, p)
			}
		}
	}
	return set, unknown
}
