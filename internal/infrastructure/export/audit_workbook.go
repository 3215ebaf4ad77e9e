package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/sip-workflow/internal/domain/entity"
)

// AuditSheet is the sheet name of the exported workbook
const AuditSheet = "Audit"

type column struct {
	title string
	width float64
	value func(e *entity.AuditEntry) interface{}
}

var auditColumns = []column{
	{"ID", 8, func(e *entity.AuditEntry) interface{} { return e.ID }},
	{"Recorded At", 22, func(e *entity.AuditEntry) interface{} { return e.CreatedAt.UTC().Format(time.RFC3339) }},
	{"Application", 38, func(e *entity.AuditEntry) interface{} { return e.ApplicationID }},
	{"Execution", 38, func(e *entity.AuditEntry) interface{} { return e.ExecutionID }},
	{"Intent", 22, func(e *entity.AuditEntry) interface{} { return string(e.Intent) }},
	{"Actor", 20, func(e *entity.AuditEntry) interface{} { return e.ActorID }},
	{"Role", 12, func(e *entity.AuditEntry) interface{} { return string(e.ActorRole) }},
	{"From", 22, func(e *entity.AuditEntry) interface{} { return string(e.PreviousStatus) }},
	{"To", 22, func(e *entity.AuditEntry) interface{} { return string(e.NewStatus) }},
	{"Details", 60, func(e *entity.AuditEntry) interface{} { return e.Details }},
}

// AuditWorkbook renders audit entries as an XLSX workbook with one row per entry
func AuditWorkbook(entries []*entity.AuditEntry) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AuditSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(auditColumns))
	for i, col := range auditColumns {
		header[i] = col.title
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(AuditSheet, name, name, col.width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := f.SetSheetRow(AuditSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(auditColumns), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(AuditSheet, "A1", lastHeader, bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, entry := range entries {
		row := make([]interface{}, len(auditColumns))
		for j, col := range auditColumns {
			row[j] = col.value(entry)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(AuditSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
