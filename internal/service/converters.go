package service

import (
	"time"

	"github.com/shopspring/decimal"

	"sacde-pdd/backend/internal/dto"
	"sacde-pdd/backend/internal/model"
)

func formatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func hourMapOut(m model.HourMap) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toLaborEntryResponse(e *model.LaborEntry, names map[string]string) dto.LaborEntryResponse {
	return dto.LaborEntryResponse{
		ID:                e.LaborEntryID,
		EmployeeID:        e.EmployeeID,
		EmployeeName:      nameOf(names, e.EmployeeID),
		ProductiveHours:   hourMapOut(e.ProductiveHours),
		UnproductiveHours: hourMapOut(e.UnproductiveHours),
		SpecialHours:      hourMapOut(e.SpecialHours),
		AbsenceTypeID:     e.AbsenceTypeID,
		Manual:            e.Manual,
		WorkedTotal:       e.WorkedTotal(),
		SpecialTotal:      e.SpecialHours.Total(),
	}
}

// entryFromInput 将输入转换为模型；零值工时被去除
func entryFromInput(in *dto.LaborEntryInput) model.LaborEntry {
	e := model.LaborEntry{
		EmployeeID:        in.EmployeeID,
		ProductiveHours:   model.HourMap(in.ProductiveHours).Normalized(),
		UnproductiveHours: model.HourMap(in.UnproductiveHours).Normalized(),
		SpecialHours:      model.HourMap(in.SpecialHours).Normalized(),
		Manual:            in.Manual,
	}
	if in.AbsenceTypeID != nil && *in.AbsenceTypeID != "" {
		id := *in.AbsenceTypeID
		e.AbsenceTypeID = &id
	}
	return e
}

func toPermissionResponse(p *model.Permission, approvals []dto.ApprovalState, names map[string]string) dto.PermissionResponse {
	return dto.PermissionResponse{
		ID:            p.PermissionID,
		EmployeeID:    p.EmployeeID,
		EmployeeName:  nameOf(names, p.EmployeeID),
		AbsenceTypeID: p.AbsenceTypeID,
		StartDate:     formatDate(p.StartDate),
		EndDate:       formatDate(p.EndDate),
		Observation:   p.Observation,
		Approvals:     approvals,
		CreatedAt:     formatTime(p.CreatedAt),
		UpdatedAt:     formatTime(p.UpdatedAt),
	}
}
