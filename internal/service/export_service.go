package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sacde-pdd/backend/internal/authz"
	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
	"sacde-pdd/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 每名员工一行；生产工时按阶段分列，非生产 / 特殊工时按类型分列
type ExportService interface {
	// ExportDailyReport 导出 (日期, 班组) 的日报为 Excel
	ExportDailyReport(ctx context.Context, sess *authz.Session, q *dto.ExportDailyReportQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	authz  authz.Authorizer
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, authorizer authz.Authorizer, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, authz: authorizer, logger: logger}
}

// exportColumn 一个工时列
type exportColumn struct {
	id    string
	label string
}

// ═══════════════════════════════════════════════════════════
// ExportDailyReport — 导出日报为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：班组 + 日期
//   - 第 2 行：状态 + 通报时间
//   - 第 4 行表头：员工 | 证件号 | 各阶段 | 各非生产类型 | 各特殊类型 | 缺勤 | 工时合计 | 特殊合计
//   - 数据行：按员工姓名排序
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportDailyReport(ctx context.Context, sess *authz.Session, q *dto.ExportDailyReportQuery) (*bytes.Buffer, string, error) {
	if err := s.authz.Require(sess, authz.DailyReportExport); err != nil {
		return nil, "", err
	}
	date, err := model.ParseDate(q.Date)
	if err != nil {
		return nil, "", ErrInvalidDate
	}

	// 1. 班组与日报
	crew, err := s.repo.Crew.GetByID(ctx, q.CrewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCrewNotFound
		}
		s.logger.Error("查询班组失败", zap.Error(err))
		return nil, "", err
	}
	report, err := s.repo.DailyReport.GetByDateAndCrew(ctx, date, crew.CrewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrReportNotFound
		}
		s.logger.Error("查询日报失败", zap.Error(err))
		return nil, "", err
	}
	entries, err := s.repo.LaborEntry.ListByReport(ctx, report.DailyReportID)
	if err != nil {
		s.logger.Error("查询日报明细失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 列定义
	project, err := s.repo.Project.GetByID(ctx, report.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, "", err
	}
	phaseCols, unprodCols, specialCols, absenceNames, err := s.columns(ctx, crew, project, date, entries)
	if err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.EmployeeID)
	}
	employees, err := s.repo.Employee.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, "", err
	}
	byID := make(map[string]model.Employee, len(employees))
	for _, e := range employees {
		byID[e.EmployeeID] = e
	}
	sortEntriesByName(entries, byID)

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "日报"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	totalCols := 2 + len(phaseCols) + len(unprodCols) + len(specialCols) + 3
	f.SetColWidth(sheetName, "A", "A", 26)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", colName(totalCols-1), 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	// 标题
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s - %s", crew.Name, formatDate(report.ReportDate)))
	f.MergeCell(sheetName, "A1", cell(colName(totalCols-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	status := "待通报"
	if report.IsNotified() {
		status = "已通报"
		if report.NotifiedAt != nil {
			status += " " + report.NotifiedAt.Format(time.DateTime)
		}
	}
	f.SetCellValue(sheetName, "A2", "状态")
	f.SetCellValue(sheetName, "B2", status)

	// 表头
	row := 4
	headers := []string{"员工", "证件号"}
	for _, c := range phaseCols {
		headers = append(headers, c.label)
	}
	for _, c := range unprodCols {
		headers = append(headers, c.label)
	}
	for _, c := range specialCols {
		headers = append(headers, c.label)
	}
	headers = append(headers, "缺勤", "工时合计", "特殊合计")
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(headers)-1), row), headerStyle)

	// 数据行
	for _, e := range entries {
		row++
		emp := byID[e.EmployeeID]
		name := emp.Name
		if name == "" {
			name = e.EmployeeID
		}
		col := 0
		put := func(v interface{}) {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
			col++
		}
		put(name)
		put(emp.DocumentNumber)
		for _, c := range phaseCols {
			put(hoursCell(e.ProductiveHours, c.id))
		}
		for _, c := range unprodCols {
			put(hoursCell(e.UnproductiveHours, c.id))
		}
		for _, c := range specialCols {
			put(hoursCell(e.SpecialHours, c.id))
		}
		if e.HasAbsence() {
			put(nameOf(absenceNames, *e.AbsenceTypeID))
		} else {
			put("")
		}
		put(e.WorkedTotal().InexactFloat64())
		put(e.SpecialHours.Total().InexactFloat64())
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("parte_diario_%s_%s.xlsx", crew.Name, formatDate(report.ReportDate))
	return buf, filename, nil
}

// columns 阶段列 = 当日生效阶段 + 明细中出现的其他阶段；类型列 = 项目允许的类型 + 明细中出现的其他类型
func (s *exportService) columns(
	ctx context.Context,
	crew *model.Crew,
	project *model.Project,
	date time.Time,
	entries []model.LaborEntry,
) (phases, unprod, special []exportColumn, absenceNames map[string]string, err error) {
	projectPhases, err := s.repo.Phase.ListByProject(ctx, project.ProjectID)
	if err != nil {
		s.logger.Error("查询项目阶段失败", zap.Error(err))
		return nil, nil, nil, nil, err
	}
	phaseLabels := make(map[string]string, len(projectPhases))
	for _, p := range projectPhases {
		phaseLabels[p.PhaseID] = p.Code
	}
	var activeIDs []string
	for _, b := range activePhaseBriefs(crew, date) {
		activeIDs = append(activeIDs, b.ID)
	}
	phases = buildColumns(activeIDs, phaseLabels, entries, func(e *model.LaborEntry) model.HourMap { return e.ProductiveHours })

	unprodTypes, err := s.repo.Catalog.ListUnproductiveHourTypes(ctx)
	if err != nil {
		s.logger.Error("查询非生产工时类型失败", zap.Error(err))
		return nil, nil, nil, nil, err
	}
	unprodLabels := make(map[string]string, len(unprodTypes))
	var unprodIDs []string
	for _, t := range unprodTypes {
		unprodLabels[t.UnproductiveHourTypeID] = t.Code
		if project.AllowsUnproductive(t.UnproductiveHourTypeID) {
			unprodIDs = append(unprodIDs, t.UnproductiveHourTypeID)
		}
	}
	unprod = buildColumns(unprodIDs, unprodLabels, entries, func(e *model.LaborEntry) model.HourMap { return e.UnproductiveHours })

	specialTypes, err := s.repo.Catalog.ListSpecialHourTypes(ctx)
	if err != nil {
		s.logger.Error("查询特殊工时类型失败", zap.Error(err))
		return nil, nil, nil, nil, err
	}
	specialLabels := make(map[string]string, len(specialTypes))
	var specialIDs []string
	for _, t := range specialTypes {
		specialLabels[t.SpecialHourTypeID] = t.Code
		if project.AllowsSpecial(t.SpecialHourTypeID) {
			specialIDs = append(specialIDs, t.SpecialHourTypeID)
		}
	}
	special = buildColumns(specialIDs, specialLabels, entries, func(e *model.LaborEntry) model.HourMap { return e.SpecialHours })

	absences, err := s.repo.Catalog.ListAbsenceTypes(ctx)
	if err != nil {
		s.logger.Error("查询缺勤类型失败", zap.Error(err))
		return nil, nil, nil, nil, err
	}
	absenceNames = make(map[string]string, len(absences))
	for _, a := range absences {
		absenceNames[a.AbsenceTypeID] = a.Code
	}
	return phases, unprod, special, absenceNames, nil
}

// ── 辅助函数 ──

func buildColumns(base []string, labels map[string]string, entries []model.LaborEntry, pick func(*model.LaborEntry) model.HourMap) []exportColumn {
	seen := make(map[string]bool)
	var cols []exportColumn
	add := func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		cols = append(cols, exportColumn{id: id, label: nameOf(labels, id)})
	}
	for _, id := range base {
		add(id)
	}
	for i := range entries {
		for _, id := range pick(&entries[i]).Keys() {
			add(id)
		}
	}
	return cols
}

// hoursCell 无工时时留空
func hoursCell(m model.HourMap, id string) interface{} {
	v, ok := m[id]
	if !ok || v.Equal(decimal.Zero) {
		return ""
	}
	return v.InexactFloat64()
}

func sortEntriesByName(entries []model.LaborEntry, byID map[string]model.Employee) {
	name := func(e *model.LaborEntry) string {
		if emp, ok := byID[e.EmployeeID]; ok {
			return emp.Name
		}
		return e.EmployeeID
	}
	sort.SliceStable(entries, func(i, j int) bool { return name(&entries[i]) < name(&entries[j]) })
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
