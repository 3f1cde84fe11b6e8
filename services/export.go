package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"complaint_desk_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// MaxExportRows caps one export
const MaxExportRows = 10000

const exportSheet = "Complaints"

var exportHeaders = []string{
	"ID", "Title", "Category", "Priority", "Status", "Department",
	"Assigned To", "Reporter", "Location", "Created At", "Resolved At",
}

var exportColumnWidths = []float64{38, 40, 14, 10, 14, 24, 24, 24, 30, 20, 20}

// ExportComplaintsXLSX renders the complaints matching the filter as a workbook; admins only.
// Limit and Offset of the filter are ignored.
func ExportComplaintsXLSX(ctx context.Context, db *gorm.DB, actor ActingUser, filter ComplaintFilter) ([]byte, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	var complaints []models.Complaint
	if err := filteredComplaints(ctx, db, actor, filter).
		Preload("Reporter").
		Preload("Department").
		Preload("AssignedTo").
		Order("created_at DESC, id DESC").
		Limit(MaxExportRows).
		Find(&complaints).Error; err != nil {
		return nil, storeError("export complaints", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", exportSheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(exportSheet, col, col, exportColumnWidths[i]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i := range complaints {
		c := &complaints[i]
		row := []interface{}{
			c.ID,
			c.Title,
			c.Category,
			c.Priority,
			models.StatusLabel(c.Status),
			departmentName(c.Department),
			userName(c.AssignedTo),
			c.Reporter.Name,
			derefString(c.Location),
			c.CreatedAt.Format(time.RFC3339),
			formatTime(c.ResolvedAt),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
