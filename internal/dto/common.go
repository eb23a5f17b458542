package dto

// ── 通用 ──

// EmployeeRef 员工引用（校验 / 守卫错误中点名）
type EmployeeRef struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
}

// ApprovalState 单个审批角色的展示状态
//   - approved：已审批，附审批人与时间
//   - pending + can_approve=true：当前调用方可审批
//   - pending + responsible：仅提示负责人
//   - not_required：项目未要求该角色审批
type ApprovalState struct {
	Role         string   `json:"role"`
	Status       string   `json:"status"`
	CanApprove   bool     `json:"can_approve"`
	ApproverID   string   `json:"approver_id,omitempty"`
	ApproverName string   `json:"approver_name,omitempty"`
	ApprovedAt   string   `json:"approved_at,omitempty"`
	Responsible  []string `json:"responsible,omitempty"`
}

// ApproveRequest 审批请求
type ApproveRequest struct {
	Role string `json:"role" binding:"required"`
}
