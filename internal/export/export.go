// Package export writes collected vehicle records into a spreadsheet
// workbook: one sheet, a header row, then a label row and the data rows for
// each city.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"vehicle_log/internal/format"
	"vehicle_log/internal/report"
)

const (
	// SheetTitle names the single sheet of every exported workbook.
	SheetTitle = "Vehicle Reports"

	unknownDate = "unknown"
)

// Header is the fixed first row of the sheet.
var Header = []string{"Sr No", "VRN", "Model", "Entry Date", "In Time", "Out Date", "Out Time", "Remarks"}

// Rows lays out the sheet content cell by cell. Cities without records are
// skipped.
func Rows(groups []report.CityGroup) [][]string {
	rows := [][]string{append([]string(nil), Header...)}
	for _, g := range groups {
		if len(g.Records) == 0 {
			continue
		}
		rows = append(rows, []string{g.City})
		for _, r := range g.Records {
			rows = append(rows, []string{
				r.Serial,
				r.VRN,
				r.Model,
				r.EntryDate,
				format.FormatTime12(r.EntryTime),
				r.ExitDate,
				format.FormatTime12(r.ExitTime),
				string(r.Remarks),
			})
		}
	}
	return rows
}

// Filename names the workbook after the first entry date found, as
// Vehicle_report_DD-MM-YYYY.xlsx, or Vehicle_report_unknown.xlsx.
func Filename(groups []report.CityGroup) string {
	date := unknownDate
	if dmy := format.DayMonthYear(firstEntryDate(groups)); dmy != "" {
		date = dmy
	}
	return fmt.Sprintf("Vehicle_report_%s.xlsx", date)
}

func firstEntryDate(groups []report.CityGroup) string {
	for _, g := range groups {
		for _, r := range g.Records {
			if r.EntryDate != "" {
				return r.EntryDate
			}
		}
	}
	return ""
}

// Workbook builds the workbook in memory. The caller owns the returned file
// and must Close it.
func Workbook(groups []report.CityGroup) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := format.SafeSheetName(SheetTitle)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range Rows(groups) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write streams the workbook as xlsx to w.
func Write(w io.Writer, groups []report.CityGroup) error {
	f, err := Workbook(groups)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// WriteFile saves the workbook into dir under Filename and returns the path
// written.
func WriteFile(dir string, groups []report.CityGroup) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(groups))

	f, err := Workbook(groups)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}
