package service

import (
	"context"
	"errors"
	"testing"

	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
	pkgerrors "sacde-pdd/backend/pkg/errors"
)

func moveReq(employeeID, from, to string) *dto.MoveEmployeeRequest {
	return &dto.MoveEmployeeRequest{Date: testDate, EmployeeID: employeeID, SourceCrewID: from, TargetCrewID: to}
}

// countOn 员工在 (testDate, crew) 日报中的明细条数
func countOn(store *mockStore, crewID, employeeID string) int {
	r := store.reportFor(mustDate(testDate), crewID)
	if r == nil {
		return 0
	}
	n := 0
	for _, e := range store.entriesOf(r.DailyReportID) {
		if e.EmployeeID == employeeID {
			n++
		}
	}
	return n
}

func TestMoveEmployee_CreatesTargetReport(t *testing.T) {
	svc, store := setupTestDailyReportService()
	mustSave(t, svc, saveReq(testDate, "crew-1", worked("emp-1", "phase-1", 4), worked("emp-2", "phase-1", 8)))

	resp, err := svc.MoveEmployee(context.Background(), adminSession(), moveReq("emp-2", "crew-1", "crew-2"))
	if err != nil {
		t.Fatalf("MoveEmployee 应成功: %v", err)
	}
	if !resp.TargetCreated {
		t.Error("目标班组无日报时应新建")
	}
	if !resp.Entry.Manual || len(resp.Entry.ProductiveHours) != 0 {
		t.Errorf("目标明细应为空白且 manual=true，实际: %+v", resp.Entry)
	}
	if countOn(store, "crew-1", "emp-2") != 0 || countOn(store, "crew-2", "emp-2") != 1 {
		t.Error("员工应只出现在目标日报中")
	}

	target := store.reports[resp.TargetReportID]
	if target.Status != model.ReportStatusPending || target.CrewID != "crew-2" {
		t.Errorf("目标日报应为 crew-2 的 pending 日报，实际: %+v", target)
	}
	if target.ControlManagerID == nil || *target.ControlManagerID != "emp-cm1" {
		t.Error("目标日报应快照 crew-2 的当前角色")
	}
}

func TestMoveEmployee_ExistingTarget(t *testing.T) {
	svc, store := setupTestDailyReportService()
	mustSave(t, svc, saveReq(testDate, "crew-1", worked("emp-1", "phase-1", 4), worked("emp-2", "phase-1", 8)))
	target := mustSave(t, svc, saveReq(testDate, "crew-2", worked("emp-3", "phase-1", 8)))

	resp, err := svc.MoveEmployee(context.Background(), adminSession(), moveReq("emp-2", "crew-1", "crew-2"))
	if err != nil {
		t.Fatalf("MoveEmployee 应成功: %v", err)
	}
	if resp.TargetCreated || resp.TargetReportID != target.Report.ID {
		t.Error("应写入已有目标日报")
	}
	if n := len(store.entriesOf(target.Report.ID)); n != 2 {
		t.Errorf("目标日报期望 2 条明细，实际: %d", n)
	}
}

func TestMoveEmployee_AtomicUnderInjectedFailure(t *testing.T) {
	// 批次：0 删除源明细，1 创建目标日报，2 创建目标明细
	for failAt := 0; failAt < 3; failAt++ {
		svc, store := setupTestDailyReportService()
		mustSave(t, svc, saveReq(testDate, "crew-1", worked("emp-1", "phase-1", 4), worked("emp-2", "phase-1", 8)))
		reportsBefore := len(store.reports)

		store.failAt = failAt
		_, err := svc.MoveEmployee(context.Background(), adminSession(), moveReq("emp-2", "crew-1", "crew-2"))
		if !errors.Is(err, pkgerrors.ErrCommitFailed) {
			t.Fatalf("failAt=%d: 期望 ErrCommitFailed，实际: %v", failAt, err)
		}

		onSource, onTarget := countOn(store, "crew-1", "emp-2"), countOn(store, "crew-2", "emp-2")
		if onSource+onTarget != 1 || onSource != 1 {
			t.Errorf("failAt=%d: 员工应恰好留在源日报，实际 源=%d 目标=%d", failAt, onSource, onTarget)
		}
		if len(store.reports) != reportsBefore {
			t.Errorf("failAt=%d: 不应留下新建的目标日报", failAt)
		}
	}
}

func TestMoveEmployee_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("同一班组", func(t *testing.T) {
		svc, _ := setupTestDailyReportService()
		if _, err := svc.MoveEmployee(ctx, adminSession(), moveReq("emp-1", "crew-1", "crew-1")); !errors.Is(err, ErrMoveSameCrew) {
			t.Errorf("期望 ErrMoveSameCrew，实际: %v", err)
		}
	})

	t.Run("跨项目", func(t *testing.T) {
		svc, _ := setupTestDailyReportService()
		mustSave(t, svc, saveReq(testDate, "crew-1", worked("emp-1", "phase-1", 4)))
		if _, err := svc.MoveEmployee(ctx, adminSession(), moveReq("emp-1", "crew-1", "crew-3")); !errors.Is(err, ErrMoveCrossProject) {
			t.Errorf("期望 ErrMoveCrossProject，实际: %v", err)
		}
	})

	t.Run("源日报不存在", func(t *testing.T) {
		svc, _ := setupTestDailyReportService()
		if _, err := svc.MoveEmployee(ctx, adminSession(), moveReq("emp-1", "crew-1", "crew-2")); !errors.Is(err, ErrMoveSourceNoReport) {
			t.Errorf("期望 ErrMoveSourceNoReport，实际: %v", err)
		}
	})

	t.Run("员工不在源日报", func(t *testing.T) {
		svc, _ := setupTestDailyReportService()
		mustSave(t, svc, saveReq(testDate, "crew-1", worked("emp-1", "phase-1", 4)))
		if _, err := svc.MoveEmployee(ctx, adminSession(), moveReq("emp-2", "crew-1", "crew-2")); !errors.Is(err, ErrMoveEmployeeNotOnSource) {
			t.Errorf("期望 ErrMoveEmployeeNotOnSource，实际: %v", err)
		}
	})

	t.Run("源日报已通报", func(t *testing.T) {
		svc, _ := setupTestDailyReportService()
		notifiedReport(t, svc)
		if _, err := svc.MoveEmployee(ctx, adminSession(), moveReq("emp-1", "crew-1", "crew-2")); !errors.Is(err, ErrMoveSourceNotified) {
			t.Errorf("期望 ErrMoveSourceNotified，实际: %v", err)
		}
	})

	t.Run("目标日报已通报", func(t *testing.T) {
		svc, store := setupTestDailyReportService()
		mustSave(t, svc, saveReq(testDate, "crew-1", worked("emp-1", "phase-1", 4)))
		target := mustSave(t, svc, saveReq(testDate, "crew-2", worked("emp-3", "phase-1", 8)))
		if _, err := svc.Notify(ctx, adminSession(), target.Report.ID); err != nil {
			t.Fatalf("Notify 应成功: %v", err)
		}
		commits := store.commits
		if _, err := svc.MoveEmployee(ctx, adminSession(), moveReq("emp-1", "crew-1", "crew-2")); !errors.Is(err, ErrMoveTargetNotified) {
			t.Errorf("期望 ErrMoveTargetNotified，实际: %v", err)
		}
		if store.commits != commits {
			t.Error("前置条件失败时不应提交")
		}
	})

	t.Run("员工已在目标日报", func(t *testing.T) {
		svc, _ := setupTestDailyReportService()
		mustSave(t, svc, saveReq(testDate, "crew-1", worked("emp-1", "phase-1", 4)))
		mustSave(t, svc, saveReq(testDate, "crew-2", worked("emp-1", "phase-1", 2)))
		if _, err := svc.MoveEmployee(ctx, adminSession(), moveReq("emp-1", "crew-1", "crew-2")); !errors.Is(err, ErrMoveEmployeeOnTarget) {
			t.Errorf("期望 ErrMoveEmployeeOnTarget，实际: %v", err)
		}
	})
}

func TestListMoveTargets_ExcludesNotified(t *testing.T) {
	svc, store := setupTestDailyReportService()
	ctx := context.Background()

	store.crews["crew-4"] = &model.Crew{CrewID: "crew-4", Name: "Cuadrilla D", ProjectID: "proj-1",
		MemberIDs: model.StringArray{"emp-4"}, Phases: store.crews["crew-1"].Phases}
	mustSave(t, svc, saveReq(testDate, "crew-1", worked("emp-1", "phase-1", 4)))
	target := mustSave(t, svc, saveReq(testDate, "crew-4", worked("emp-4", "phase-1", 8)))
	if _, err := svc.Notify(ctx, adminSession(), target.Report.ID); err != nil {
		t.Fatalf("Notify 应成功: %v", err)
	}

	targets, err := svc.ListMoveTargets(ctx, adminSession(), &dto.MoveTargetQuery{Date: testDate, CrewID: "crew-1"})
	if err != nil {
		t.Fatalf("ListMoveTargets 应成功: %v", err)
	}
	if len(targets) != 1 || targets[0].CrewID != "crew-2" {
		t.Errorf("期望仅 crew-2（无日报），实际: %+v", targets)
	}
	if targets[0].Status != CrewReportNone {
		t.Errorf("期望状态 none，实际: %s", targets[0].Status)
	}
}
