// Package spreadsheet renders registrations as an xlsx workbook.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

const (
	// SheetName is the single worksheet of an export.
	SheetName = "Registrations"

	contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
	timeLayout  = "2006-01-02 15:04:05"
)

// Header is the first row of the export.
var Header = []string{
	"Submitted At",
	"Name",
	"ID Suffix",
	"Phone",
	"Location",
	"Activity",
	"Option",
	"Trip Date",
	"Participants",
	"Notes",
}

var columnWidths = []float64{20, 16, 10, 16, 18, 18, 18, 12, 12, 40}

// Writer implements export.Writer for xlsx.
type Writer struct{}

func NewWriter() Writer { return Writer{} }

func (Writer) ContentType() string   { return contentType }
func (Writer) FileExtension() string { return ".xlsx" }

// WriteRegistrations writes one row per registration, in the order given, below a styled header.
func (Writer) WriteRegistrations(w io.Writer, rs []domain.Registration) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	for i, r := range rs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.CreatedAt.UTC().Format(timeLayout),
			r.SubmitterName,
			r.IDSuffix,
			r.Phone,
			r.Location,
			r.Activity,
			deref(r.Option),
			r.TripDate.Format(dateLayout),
			r.Participants,
			deref(r.Notes),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
