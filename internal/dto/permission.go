package dto

// ── 请假许可模块 DTO ──

// PermissionListQuery 许可列表查询参数
type PermissionListQuery struct {
	EmployeeID string `form:"employee_id"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// CreatePermissionRequest 创建许可请求
type CreatePermissionRequest struct {
	EmployeeID           string  `json:"employee_id"            binding:"required"`
	AbsenceTypeID        string  `json:"absence_type_id"        binding:"required"`
	StartDate            string  `json:"start_date"             binding:"required"`
	EndDate              string  `json:"end_date"               binding:"required"`
	Observation          string  `json:"observation"            binding:"max=500"`
	SupervisorApproverID *string `json:"supervisor_approver_id"`
	HRApproverID         *string `json:"hr_approver_id"`
}

// UpdatePermissionRequest 更新许可请求（员工不可变更）
type UpdatePermissionRequest struct {
	AbsenceTypeID        string  `json:"absence_type_id"        binding:"required"`
	StartDate            string  `json:"start_date"             binding:"required"`
	EndDate              string  `json:"end_date"               binding:"required"`
	Observation          string  `json:"observation"            binding:"max=500"`
	SupervisorApproverID *string `json:"supervisor_approver_id"`
	HRApproverID         *string `json:"hr_approver_id"`
}

// PermissionResponse 许可详情
type PermissionResponse struct {
	ID            string          `json:"id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	AbsenceTypeID string          `json:"absence_type_id"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	Observation   string          `json:"observation"`
	Approvals     []ApprovalState `json:"approvals"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// PermissionOverlapDetail 日期重叠冲突详情
type PermissionOverlapDetail struct {
	ConflictID string `json:"conflict_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}
