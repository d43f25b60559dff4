package sheet

import (
	"strings"

	"github.com/google/uuid"

	"vehicle_log/internal/report"
)

// Field identifies one editable cell of a row.
type Field int

const (
	FieldSerial Field = iota
	FieldVRN
	FieldModel
	FieldEntryDate
	FieldEntryTime
	FieldExitDate
	FieldExitTime
	FieldRemarks

	fieldCount
)

// Fields lists the row cells in column order.
var Fields = []Field{
	FieldSerial, FieldVRN, FieldModel, FieldEntryDate,
	FieldEntryTime, FieldExitDate, FieldExitTime, FieldRemarks,
}

var fieldLabels = [fieldCount]string{
	"Sr No", "VRN", "Model", "Entry Date", "In Time", "Out Date", "Out Time", "Remarks",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "Unknown"
	}
	return fieldLabels[f]
}

// requiredFields must all be filled before a row counts as complete; a row
// with none of them filled is blank and never collected.
var requiredFields = []Field{FieldSerial, FieldVRN, FieldModel, FieldEntryDate, FieldEntryTime}

// Row is one data-entry line of a section.
type Row struct {
	ID string

	values       [fieldCount]string
	exitDisabled bool
	rev          int64

	// bound by the owning section when the row is created
	onChange func(*Row)
}

func newRow() *Row {
	r := &Row{ID: uuid.NewString()}
	r.values[FieldRemarks] = string(report.RemarksOptions[0])
	r.applyRemarks()
	return r
}

// Value returns the raw value of a field as last entered.
func (r *Row) Value(f Field) string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return r.values[f]
}

func (r *Row) Remarks() report.Remarks {
	return report.Remarks(r.values[FieldRemarks])
}

// ExitDisabled reports whether the exit date and time are locked because the
// work is still in progress.
func (r *Row) ExitDisabled() bool {
	return r.exitDisabled
}

// Disabled reports whether f can currently be edited.
func (r *Row) Disabled(f Field) bool {
	return r.exitDisabled && (f == FieldExitDate || f == FieldExitTime)
}

func (r *Row) applyRemarks() {
	r.exitDisabled = r.Remarks() == report.RemarksInProgress
	if r.exitDisabled {
		r.values[FieldExitDate] = ""
		r.values[FieldExitTime] = ""
	}
}

func (r *Row) complete() bool {
	for _, f := range requiredFields {
		if strings.TrimSpace(r.values[f]) == "" {
			return false
		}
	}
	return true
}

// Record reads the row back as a record of city. Disabled exit fields read
// as empty whatever they hold.
func (r *Row) Record(city string) report.Record {
	rec := report.Record{
		RowID:     r.ID,
		City:      city,
		Serial:    strings.TrimSpace(r.values[FieldSerial]),
		VRN:       strings.TrimSpace(r.values[FieldVRN]),
		Model:     strings.TrimSpace(r.values[FieldModel]),
		EntryDate: strings.TrimSpace(r.values[FieldEntryDate]),
		EntryTime: strings.TrimSpace(r.values[FieldEntryTime]),
		Remarks:   report.Remarks(strings.TrimSpace(r.values[FieldRemarks])),
		Revision:  r.rev,
	}
	if !r.exitDisabled {
		rec.ExitDate = strings.TrimSpace(r.values[FieldExitDate])
		rec.ExitTime = strings.TrimSpace(r.values[FieldExitTime])
	}
	return rec
}
