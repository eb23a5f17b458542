package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
)

// CrewAll "全部班组" 汇总视图
const CrewAll = "all"

// 班组当日日报状态（汇总视图）
const (
	CrewReportNone     = "none"
	CrewReportPending  = model.ReportStatusPending
	CrewReportNotified = model.ReportStatusNotified
)

// ════════════════════════════════════════════════════════════
// GetWorkingSet — 人员解析
// ════════════════════════════════════════════════════════════
//
//   - crew_id = all：仅返回各班组状态汇总
//   - 日报已存在：人员 = 该日报下明细的员工（历史快照）
//   - 日报不存在：人员 = 班组当前成员
//   - 再叠加手动加入 / 手动移除的员工

func (s *dailyReportService) GetWorkingSet(ctx context.Context, sess *authz.Session, q *dto.WorkingSetQuery) (*dto.WorkingSetResponse, error) {
	if err := s.authz.Require(sess, authz.DailyReportView); err != nil {
		return nil, err
	}
	date, err := model.ParseDate(q.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	project, err := s.loadProject(ctx, q.ProjectID)
	if err != nil {
		return nil, err
	}

	resp := &dto.WorkingSetResponse{
		Date:      formatDate(date),
		ProjectID: project.ProjectID,
		CrewID:    q.CrewID,
	}

	if q.CrewID == CrewAll {
		crews, err := s.crewStatusSummary(ctx, date, project.ProjectID)
		if err != nil {
			return nil, err
		}
		resp.Crews = crews
		return resp, nil
	}

	crew, err := s.loadCrew(ctx, q.CrewID)
	if err != nil {
		return nil, err
	}
	if crew.ProjectID != project.ProjectID {
		return nil, ErrCrewProjectMismatch
	}

	// 1. 人员
	report, err := s.findReport(ctx, date, crew.CrewID)
	if err != nil {
		return nil, err
	}
	var entries []model.LaborEntry
	if report != nil {
		entries, err = s.repo.LaborEntry.ListByReport(ctx, report.DailyReportID)
		if err != nil {
			s.logger.Error("查询日报明细失败", zap.String("report_id", report.DailyReportID), zap.Error(err))
			return nil, err
		}
	}
	personnel, manual := resolvePersonnel(crew, report, entries, q.Add, q.Remove)

	// 2. 当日生效阶段与项目允许的类型
	resp.ActivePhases = activePhaseBriefs(crew, date)
	if err := s.fillAllowedTypes(ctx, project, resp); err != nil {
		return nil, err
	}

	// 3. 姓名、已有明细与请假建议
	names, err := s.employeeNames(ctx, personnel)
	if err != nil {
		return nil, err
	}
	perms, err := s.repo.Permission.ListCovering(ctx, personnel, date)
	if err != nil {
		s.logger.Error("查询请假许可失败", zap.Error(err))
		return nil, err
	}
	suggestions := linkPermissions(perms, date, project)

	byEmployee := make(map[string]*model.LaborEntry, len(entries))
	for i := range entries {
		byEmployee[entries[i].EmployeeID] = &entries[i]
	}

	resp.Personnel = make([]dto.PersonnelRow, 0, len(personnel))
	for _, id := range personnel {
		entry, ok := byEmployee[id]
		if !ok {
			entry = &model.LaborEntry{EmployeeID: id, Manual: manual[id]}
		}
		row := dto.PersonnelRow{
			EmployeeID: id,
			Name:       nameOf(names, id),
			Manual:     entry.Manual || manual[id],
			Entry:      toLaborEntryResponse(entry, names),
		}
		if sug, ok := suggestions[id]; ok && entry.IsBlank() {
			sug := sug
			row.Suggestion = &sug
		}
		resp.Personnel = append(resp.Personnel, row)
	}

	if report != nil {
		r, err := s.buildReportResponse(ctx, sess, report, project, entries)
		if err != nil {
			return nil, err
		}
		resp.Report = r
	}
	return resp, nil
}

// resolvePersonnel 返回有序人员 ID 列表，以及手动加入的员工集合
func resolvePersonnel(crew *model.Crew, report *model.DailyReport, entries []model.LaborEntry, add, remove []string) ([]string, map[string]bool) {
	var base []string
	if report != nil {
		for _, e := range entries {
			base = append(base, e.EmployeeID)
		}
	} else {
		base = append(base, crew.MemberIDs...)
	}

	removed := make(map[string]bool, len(remove))
	for _, id := range remove {
		removed[id] = true
	}

	seen := make(map[string]bool, len(base)+len(add))
	manual := make(map[string]bool)
	out := make([]string, 0, len(base)+len(add))
	for _, id := range base {
		if id == "" || seen[id] || removed[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range add {
		if id == "" || seen[id] || removed[id] {
			continue
		}
		seen[id] = true
		manual[id] = true
		out = append(out, id)
	}
	return out, manual
}

// activePhaseBriefs 当日生效阶段：去重并按名称排序
func activePhaseBriefs(crew *model.Crew, date time.Time) []dto.PhaseBrief {
	seen := make(map[string]bool)
	out := []dto.PhaseBrief{}
	for _, cp := range crew.ActivePhases(date) {
		if seen[cp.PhaseID] {
			continue
		}
		seen[cp.PhaseID] = true
		brief := dto.PhaseBrief{ID: cp.PhaseID, Name: cp.PhaseID}
		if cp.Phase != nil {
			brief.Code = cp.Phase.Code
			brief.Name = cp.Phase.Name
		}
		out = append(out, brief)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// fillAllowedTypes 可选类型取项目允许列表，而不是全局目录
func (s *dailyReportService) fillAllowedTypes(ctx context.Context, project *model.Project, resp *dto.WorkingSetResponse) error {
	absences, err := s.repo.Catalog.ListAbsenceTypes(ctx)
	if err != nil {
		s.logger.Error("查询缺勤类型失败", zap.Error(err))
		return err
	}
	specials, err := s.repo.Catalog.ListSpecialHourTypes(ctx)
	if err != nil {
		s.logger.Error("查询特殊工时类型失败", zap.Error(err))
		return err
	}
	unproductives, err := s.repo.Catalog.ListUnproductiveHourTypes(ctx)
	if err != nil {
		s.logger.Error("查询非生产工时类型失败", zap.Error(err))
		return err
	}

	resp.AbsenceTypes = []dto.TypeBrief{}
	for _, a := range absences {
		if project.AllowsAbsence(a.AbsenceTypeID) {
			resp.AbsenceTypes = append(resp.AbsenceTypes, dto.TypeBrief{ID: a.AbsenceTypeID, Code: a.Code, Name: a.Name})
		}
	}
	resp.SpecialHourTypes = []dto.TypeBrief{}
	for _, sp := range specials {
		if project.AllowsSpecial(sp.SpecialHourTypeID) {
			resp.SpecialHourTypes = append(resp.SpecialHourTypes, dto.TypeBrief{ID: sp.SpecialHourTypeID, Code: sp.Code, Name: sp.Name})
		}
	}
	resp.UnproductiveHourTypes = []dto.TypeBrief{}
	for _, u := range unproductives {
		if project.AllowsUnproductive(u.UnproductiveHourTypeID) {
			resp.UnproductiveHourTypes = append(resp.UnproductiveHourTypes, dto.TypeBrief{ID: u.UnproductiveHourTypeID, Code: u.Code, Name: u.Name})
		}
	}
	return nil
}

// crewStatusSummary 项目下各班组当日日报状态
func (s *dailyReportService) crewStatusSummary(ctx context.Context, date time.Time, projectID string) ([]dto.CrewStatusSummary, error) {
	crews, err := s.repo.Crew.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("查询班组失败", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	reports, err := s.repo.DailyReport.ListByDateAndProject(ctx, date, projectID)
	if err != nil {
		s.logger.Error("查询日报失败", zap.String("project_id", projectID), zap.Error(err))
		return nil, err
	}
	byCrew := make(map[string]*model.DailyReport, len(reports))
	for i := range reports {
		if _, ok := byCrew[reports[i].CrewID]; !ok {
			byCrew[reports[i].CrewID] = &reports[i]
		}
	}

	out := make([]dto.CrewStatusSummary, 0, len(crews))
	for _, c := range crews {
		item := dto.CrewStatusSummary{CrewID: c.CrewID, CrewName: c.Name, Status: CrewReportNone}
		if r, ok := byCrew[c.CrewID]; ok {
			item.Status = r.Status
			item.DailyReportID = r.DailyReportID
		}
		out = append(out, item)
	}
	return out, nil
}
