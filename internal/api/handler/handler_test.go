package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sacde-pdd/backend/internal/api/middleware"
	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
	"sacde-pdd/backend/internal/service"
	pkgerrors "sacde-pdd/backend/pkg/errors"
	"sacde-pdd/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock DailyReportService ──

type mockDailyReportService struct {
	workingSet    *dto.WorkingSetResponse
	applyResult   *dto.ApplyEditResponse
	saveResult    *dto.SaveDailyReportResponse
	report        *dto.DailyReportResponse
	checkResult   *dto.NotifyCheckResponse
	targets       []dto.MoveTargetResponse
	moveResult    *dto.MoveEmployeeResponse
	err           error
	lastApproveAs string
}

func (m *mockDailyReportService) GetWorkingSet(_ context.Context, _ *authz.Session, _ *dto.WorkingSetQuery) (*dto.WorkingSetResponse, error) {
	return m.workingSet, m.err
}
func (m *mockDailyReportService) ApplyEdit(_ context.Context, _ *authz.Session, _ *dto.ApplyEditRequest) (*dto.ApplyEditResponse, error) {
	return m.applyResult, m.err
}
func (m *mockDailyReportService) Save(_ context.Context, _ *authz.Session, _ *dto.SaveDailyReportRequest) (*dto.SaveDailyReportResponse, error) {
	return m.saveResult, m.err
}
func (m *mockDailyReportService) Get(_ context.Context, _ *authz.Session, _ string) (*dto.DailyReportResponse, error) {
	return m.report, m.err
}
func (m *mockDailyReportService) CheckNotify(_ context.Context, _ *authz.Session, _ string) (*dto.NotifyCheckResponse, error) {
	return m.checkResult, m.err
}
func (m *mockDailyReportService) Notify(_ context.Context, _ *authz.Session, _ string) (*dto.DailyReportResponse, error) {
	return m.report, m.err
}
func (m *mockDailyReportService) Delete(_ context.Context, _ *authz.Session, _ string) error {
	return m.err
}
func (m *mockDailyReportService) ListMoveTargets(_ context.Context, _ *authz.Session, _ *dto.MoveTargetQuery) ([]dto.MoveTargetResponse, error) {
	return m.targets, m.err
}
func (m *mockDailyReportService) MoveEmployee(_ context.Context, _ *authz.Session, _ *dto.MoveEmployeeRequest) (*dto.MoveEmployeeResponse, error) {
	return m.moveResult, m.err
}
func (m *mockDailyReportService) Approve(_ context.Context, _ *authz.Session, _ string, role string) (*dto.DailyReportResponse, error) {
	m.lastApproveAs = role
	return m.report, m.err
}

// ── Mock PermissionService ──

type mockPermissionService struct {
	list     []dto.PermissionResponse
	result   *dto.PermissionResponse
	calendar []byte
	err      error
}

func (m *mockPermissionService) List(_ context.Context, _ *authz.Session, _ *dto.PermissionListQuery) ([]dto.PermissionResponse, error) {
	return m.list, m.err
}
func (m *mockPermissionService) Get(_ context.Context, _ *authz.Session, _ string) (*dto.PermissionResponse, error) {
	return m.result, m.err
}
func (m *mockPermissionService) Create(_ context.Context, _ *authz.Session, _ *dto.CreatePermissionRequest) (*dto.PermissionResponse, error) {
	return m.result, m.err
}
func (m *mockPermissionService) Update(_ context.Context, _ *authz.Session, _ string, _ *dto.UpdatePermissionRequest) (*dto.PermissionResponse, error) {
	return m.result, m.err
}
func (m *mockPermissionService) Delete(_ context.Context, _ *authz.Session, _ string) error {
	return m.err
}
func (m *mockPermissionService) Approve(_ context.Context, _ *authz.Session, _ string, _ string) (*dto.PermissionResponse, error) {
	return m.result, m.err
}
func (m *mockPermissionService) Calendar(_ context.Context, _ *authz.Session, _ *dto.PermissionListQuery) ([]byte, error) {
	return m.calendar, m.err
}

// ── Mock CatalogService ──

type mockCatalogService struct {
	projects []model.Project
	err      error
}

func (m *mockCatalogService) ListProjects(_ context.Context, _ *authz.Session) ([]model.Project, error) {
	return m.projects, m.err
}
func (m *mockCatalogService) ListCrews(_ context.Context, _ *authz.Session, _ string) ([]model.Crew, error) {
	return nil, m.err
}
func (m *mockCatalogService) ListEmployees(_ context.Context, _ *authz.Session) ([]model.Employee, error) {
	return nil, m.err
}
func (m *mockCatalogService) ListPhases(_ context.Context, _ *authz.Session, _ string) ([]model.Phase, error) {
	return nil, m.err
}
func (m *mockCatalogService) ListAbsenceTypes(_ context.Context, _ *authz.Session) ([]model.AbsenceType, error) {
	return nil, m.err
}
func (m *mockCatalogService) ListSpecialHourTypes(_ context.Context, _ *authz.Session) ([]model.SpecialHourType, error) {
	return nil, m.err
}
func (m *mockCatalogService) ListUnproductiveHourTypes(_ context.Context, _ *authz.Session) ([]model.UnproductiveHourType, error) {
	return nil, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportDailyReport(_ context.Context, _ *authz.Session, _ *dto.ExportDailyReportQuery) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set(middleware.SessionKey, authz.NewSession("user-1", "emp-1", "ana@sacde.test", authz.NewSet(authz.All...)))
}

// serve 注册单条路由并执行请求；auth=false 时不注入会话
func serve(method, route, target string, body io.Reader, auth bool, h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		if auth {
			setAuth(c)
		}
		h(c)
	})
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func validSaveRequest() dto.SaveDailyReportRequest {
	return dto.SaveDailyReportRequest{
		Date:   "2026-03-10",
		CrewID: "crew-1",
		Entries: []dto.LaborEntryInput{{
			EmployeeID:      "emp-1",
			ProductiveHours: map[string]decimal.Decimal{"phase-1": decimal.NewFromInt(8)},
		}},
	}
}

// ═══════════════════════════════════════════════════════════
// 认证
// ═══════════════════════════════════════════════════════════

func TestMustGetSession_Missing(t *testing.T) {
	h := NewDailyReportHandler(&mockDailyReportService{})
	w := serve("GET", "/daily-reports/:id", "/daily-reports/r1", nil, false, h.GetDailyReport)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际: %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10002 {
		t.Errorf("期望错误码 10002，实际: %d", resp.Code)
	}
}

func TestForbidden_MapsTo403(t *testing.T) {
	h := NewDailyReportHandler(&mockDailyReportService{err: authz.ErrForbidden})
	w := serve("GET", "/daily-reports/:id", "/daily-reports/r1", nil, true, h.GetDailyReport)

	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际: %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DailyReportHandler
// ═══════════════════════════════════════════════════════════

func TestDailyReportHandler_Save_Created(t *testing.T) {
	mock := &mockDailyReportService{saveResult: &dto.SaveDailyReportResponse{
		Report:  dto.DailyReportResponse{ID: "r1", Status: string(model.ReportStatusPending)},
		Created: true,
	}}
	h := NewDailyReportHandler(mock)
	w := serve("PUT", "/daily-reports", "/daily-reports", jsonBody(validSaveRequest()), true, h.Save)

	if w.Code != http.StatusCreated {
		t.Errorf("首次保存期望 201，实际: %d", w.Code)
	}
}

func TestDailyReportHandler_Save_Updated(t *testing.T) {
	mock := &mockDailyReportService{saveResult: &dto.SaveDailyReportResponse{
		Report: dto.DailyReportResponse{ID: "r1"},
	}}
	h := NewDailyReportHandler(mock)
	w := serve("PUT", "/daily-reports", "/daily-reports", jsonBody(validSaveRequest()), true, h.Save)

	if w.Code != http.StatusOK {
		t.Errorf("再次保存期望 200，实际: %d", w.Code)
	}
}

func TestDailyReportHandler_Save_BadJSON(t *testing.T) {
	h := NewDailyReportHandler(&mockDailyReportService{})
	w := serve("PUT", "/daily-reports", "/daily-reports", strings.NewReader("invalid json"), true, h.Save)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际: %d", w.Code)
	}
}

func TestDailyReportHandler_Save_ValidationError(t *testing.T) {
	mock := &mockDailyReportService{err: &service.EntryValidationError{Violations: []service.Violation{{
		EmployeeID: "emp-1",
		Field:      service.FieldSpecial,
		Code:       service.CodeSpecialExceedsWorked,
		Message:    "特殊工时合计超过工时合计",
	}}}}
	h := NewDailyReportHandler(mock)
	w := serve("PUT", "/daily-reports", "/daily-reports", jsonBody(validSaveRequest()), true, h.Save)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("期望 422，实际: %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 20010 {
		t.Errorf("期望错误码 20010，实际: %d", resp.Code)
	}
	data, _ := resp.Data.(map[string]interface{})
	violations, _ := data["violations"].([]interface{})
	if len(violations) != 1 {
		t.Fatalf("期望 1 条违规明细，实际: %v", resp.Data)
	}
	if v := violations[0].(map[string]interface{}); v["code"] != service.CodeSpecialExceedsWorked {
		t.Errorf("违规代码错误: %v", v["code"])
	}
}

func TestDailyReportHandler_Notify_GuardError(t *testing.T) {
	mock := &mockDailyReportService{err: &service.NotifyGuardError{
		MissingInput: []dto.EmployeeRef{{EmployeeID: "emp-2", Name: "Bruno"}},
	}}
	h := NewDailyReportHandler(mock)
	w := serve("POST", "/daily-reports/:id/notify", "/daily-reports/r1/notify", nil, true, h.Notify)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("期望 422，实际: %d", w.Code)
	}
	resp := parseResponse(w)
	data, _ := resp.Data.(map[string]interface{})
	missing, _ := data["missing_input"].([]interface{})
	if len(missing) != 1 {
		t.Errorf("期望 missing_input 含 1 名员工，实际: %v", resp.Data)
	}
	if !strings.Contains(resp.Message, "Bruno") {
		t.Errorf("错误信息应点名员工，实际: %s", resp.Message)
	}
}

func TestDailyReportHandler_Notify_CommitFailed(t *testing.T) {
	mock := &mockDailyReportService{err: fmt.Errorf("%w: 连接中断", pkgerrors.ErrCommitFailed)}
	h := NewDailyReportHandler(mock)
	w := serve("POST", "/daily-reports/:id/notify", "/daily-reports/r1/notify", nil, true, h.Notify)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("期望 503，实际: %d", w.Code)
	}
}

func TestDailyReportHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"日报不存在", service.ErrReportNotFound, http.StatusNotFound, 20001},
		{"已通报", service.ErrReportNotified, http.StatusConflict, 20013},
		{"空日报", service.ErrReportEmpty, http.StatusUnprocessableEntity, 20012},
		{"日期格式", service.ErrInvalidDate, http.StatusBadRequest, 10001},
		{"未知错误", fmt.Errorf("boom"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewDailyReportHandler(&mockDailyReportService{err: tt.err})
			w := serve("DELETE", "/daily-reports/:id", "/daily-reports/r1", nil, true, h.DeleteDailyReport)

			if w.Code != tt.wantHTTP {
				t.Errorf("期望 HTTP %d，实际: %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望错误码 %d，实际: %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestDailyReportHandler_Move_Preconditions(t *testing.T) {
	tests := []struct {
		err      error
		wantHTTP int
	}{
		{service.ErrMoveSameCrew, http.StatusBadRequest},
		{service.ErrMoveCrossProject, http.StatusBadRequest},
		{service.ErrMoveSourceNoReport, http.StatusNotFound},
		{service.ErrMoveEmployeeNotOnSource, http.StatusNotFound},
		{service.ErrMoveSourceNotified, http.StatusConflict},
		{service.ErrMoveTargetNotified, http.StatusConflict},
		{service.ErrMoveEmployeeOnTarget, http.StatusConflict},
	}
	req := dto.MoveEmployeeRequest{Date: "2026-03-10", EmployeeID: "emp-1", SourceCrewID: "crew-1", TargetCrewID: "crew-2"}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewDailyReportHandler(&mockDailyReportService{err: tt.err})
			w := serve("POST", "/daily-reports/move", "/daily-reports/move", jsonBody(req), true, h.MoveEmployee)

			if w.Code != tt.wantHTTP {
				t.Errorf("期望 HTTP %d，实际: %d", tt.wantHTTP, w.Code)
			}
		})
	}
}

func TestDailyReportHandler_Move_Success(t *testing.T) {
	mock := &mockDailyReportService{moveResult: &dto.MoveEmployeeResponse{
		SourceReportID: "r1", TargetReportID: "r2", TargetCreated: true,
	}}
	h := NewDailyReportHandler(mock)
	req := dto.MoveEmployeeRequest{Date: "2026-03-10", EmployeeID: "emp-1", SourceCrewID: "crew-1", TargetCrewID: "crew-2"}
	w := serve("POST", "/daily-reports/move", "/daily-reports/move", jsonBody(req), true, h.MoveEmployee)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际: %d", w.Code)
	}
}

func TestDailyReportHandler_Approve(t *testing.T) {
	mock := &mockDailyReportService{report: &dto.DailyReportResponse{ID: "r1"}}
	h := NewDailyReportHandler(mock)
	w := serve("POST", "/daily-reports/:id/approve", "/daily-reports/r1/approve",
		jsonBody(dto.ApproveRequest{Role: "control"}), true, h.Approve)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际: %d", w.Code)
	}
	if mock.lastApproveAs != "control" {
		t.Errorf("角色未传递到 Service，实际: %q", mock.lastApproveAs)
	}
}

func TestDailyReportHandler_Approve_MissingRole(t *testing.T) {
	h := NewDailyReportHandler(&mockDailyReportService{})
	w := serve("POST", "/daily-reports/:id/approve", "/daily-reports/r1/approve",
		jsonBody(map[string]string{}), true, h.Approve)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际: %d", w.Code)
	}
}

func TestDailyReportHandler_Approve_Errors(t *testing.T) {
	tests := []struct {
		err      error
		wantHTTP int
	}{
		{service.ErrNotDesignatedApprover, http.StatusForbidden},
		{service.ErrAlreadyApproved, http.StatusConflict},
		{service.ErrApprovalNotRequired, http.StatusConflict},
		{service.ErrReportNotNotified, http.StatusConflict},
		{service.ErrInvalidApprovalRole, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewDailyReportHandler(&mockDailyReportService{err: tt.err})
			w := serve("POST", "/daily-reports/:id/approve", "/daily-reports/r1/approve",
				jsonBody(dto.ApproveRequest{Role: "manager"}), true, h.Approve)

			if w.Code != tt.wantHTTP {
				t.Errorf("期望 HTTP %d，实际: %d", tt.wantHTTP, w.Code)
			}
		})
	}
}

func TestDailyReportHandler_GetWorkingSet_MissingParams(t *testing.T) {
	h := NewDailyReportHandler(&mockDailyReportService{})
	w := serve("GET", "/daily-reports/working-set", "/daily-reports/working-set?date=2026-03-10", nil, true, h.GetWorkingSet)

	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少 project_id / crew_id 期望 400，实际: %d", w.Code)
	}
}

func TestDailyReportHandler_GetWorkingSet(t *testing.T) {
	mock := &mockDailyReportService{workingSet: &dto.WorkingSetResponse{Date: "2026-03-10", CrewID: "crew-1"}}
	h := NewDailyReportHandler(mock)
	w := serve("GET", "/daily-reports/working-set",
		"/daily-reports/working-set?date=2026-03-10&project_id=proj-1&crew_id=crew-1&add=emp-3&add=emp-4", nil, true, h.GetWorkingSet)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际: %d", w.Code)
	}
}

func TestDailyReportHandler_ListMoveTargets(t *testing.T) {
	mock := &mockDailyReportService{targets: []dto.MoveTargetResponse{{CrewID: "crew-2"}}}
	h := NewDailyReportHandler(mock)
	w := serve("GET", "/daily-reports/move-targets", "/daily-reports/move-targets?date=2026-03-10&crew_id=crew-1", nil, true, h.ListMoveTargets)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if list, _ := data["list"].([]interface{}); len(list) != 1 {
		t.Errorf("期望 1 个目标班组，实际: %v", data)
	}
}

// ═══════════════════════════════════════════════════════════
// PermissionHandler
// ═══════════════════════════════════════════════════════════

func TestPermissionHandler_Create(t *testing.T) {
	mock := &mockPermissionService{result: &dto.PermissionResponse{ID: "perm-1"}}
	h := NewPermissionHandler(mock)
	req := dto.CreatePermissionRequest{EmployeeID: "emp-1", AbsenceTypeID: "abs-vac", StartDate: "2026-03-10", EndDate: "2026-03-13"}
	w := serve("POST", "/permissions", "/permissions", jsonBody(req), true, h.CreatePermission)

	if w.Code != http.StatusCreated {
		t.Errorf("期望 201，实际: %d", w.Code)
	}
}

func TestPermissionHandler_Create_Overlap(t *testing.T) {
	mock := &mockPermissionService{err: &service.PermissionOverlapError{Conflict: dto.PermissionOverlapDetail{
		ConflictID: "perm-9", StartDate: "2026-03-01", EndDate: "2026-03-10",
	}}}
	h := NewPermissionHandler(mock)
	req := dto.CreatePermissionRequest{EmployeeID: "emp-1", AbsenceTypeID: "abs-vac", StartDate: "2026-03-10", EndDate: "2026-03-13"}
	w := serve("POST", "/permissions", "/permissions", jsonBody(req), true, h.CreatePermission)

	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际: %d", w.Code)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["conflict_id"] != "perm-9" {
		t.Errorf("应返回冲突记录，实际: %v", data)
	}
}

func TestPermissionHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"不存在", service.ErrPermissionNotFound, http.StatusNotFound, 21001},
		{"日期范围", service.ErrPermissionDateRange, http.StatusBadRequest, 21002},
		{"已审批", service.ErrPermissionApproved, http.StatusConflict, 21004},
		{"员工不存在", service.ErrEmployeeNotFound, http.StatusNotFound, 21005},
		{"缺勤类型不存在", service.ErrAbsenceTypeNotFound, http.StatusNotFound, 21006},
		{"提交失败", pkgerrors.ErrCommitFailed, http.StatusServiceUnavailable, 10006},
	}
	req := dto.UpdatePermissionRequest{AbsenceTypeID: "abs-vac", StartDate: "2026-03-10", EndDate: "2026-03-13"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPermissionHandler(&mockPermissionService{err: tt.err})
			w := serve("PUT", "/permissions/:id", "/permissions/perm-1", jsonBody(req), true, h.UpdatePermission)

			if w.Code != tt.wantHTTP {
				t.Errorf("期望 HTTP %d，实际: %d", tt.wantHTTP, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("期望错误码 %d，实际: %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestPermissionHandler_Calendar(t *testing.T) {
	mock := &mockPermissionService{calendar: []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")}
	h := NewPermissionHandler(mock)
	w := serve("GET", "/permissions/calendar.ics", "/permissions/calendar.ics?from=2026-03-01&to=2026-03-31", nil, true, h.Calendar)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type 错误: %s", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "BEGIN:VCALENDAR") {
		t.Errorf("响应体应为 iCalendar 内容")
	}
}

func TestPermissionHandler_Delete(t *testing.T) {
	h := NewPermissionHandler(&mockPermissionService{})
	w := serve("DELETE", "/permissions/:id", "/permissions/perm-1", nil, true, h.DeletePermission)

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际: %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CatalogHandler / ExportHandler
// ═══════════════════════════════════════════════════════════

func TestCatalogHandler_ListProjects(t *testing.T) {
	mock := &mockCatalogService{projects: []model.Project{{ProjectID: "proj-1", Name: "Gasoducto"}}}
	h := NewCatalogHandler(mock)
	w := serve("GET", "/catalog/projects", "/catalog/projects", nil, true, h.ListProjects)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if list, _ := data["list"].([]interface{}); len(list) != 1 {
		t.Errorf("期望 1 个项目，实际: %v", data)
	}
}

func TestCatalogHandler_ListCrews_MissingProject(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogService{})
	w := serve("GET", "/catalog/crews", "/catalog/crews", nil, true, h.ListCrews)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际: %d", w.Code)
	}
}

func TestExportHandler_ExportDailyReport(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "parte_diario_C1_2026-03-10.xlsx"}
	h := NewExportHandler(mock)
	w := serve("GET", "/export/daily-report", "/export/daily-report?date=2026-03-10&crew_id=crew-1", nil, true, h.ExportDailyReport)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际: %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 错误: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "parte_diario_C1_2026-03-10.xlsx") {
		t.Errorf("Content-Disposition 应包含文件名，实际: %s", cd)
	}
}

func TestExportHandler_ReportNotFound(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrReportNotFound})
	w := serve("GET", "/export/daily-report", "/export/daily-report?date=2026-03-10&crew_id=crew-1", nil, true, h.ExportDailyReport)

	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际: %d", w.Code)
	}
}
