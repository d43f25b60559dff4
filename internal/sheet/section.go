package sheet

import (
	"fmt"
	"strings"
	"time"

	"vehicle_log/internal/report"
)

// Section holds the rows logged for one city. It always has at least one row.
type Section struct {
	City string

	rows []*Row
	form *Form
}

// Rows returns the section's rows in display order.
func (s *Section) Rows() []*Row {
	out := make([]*Row, len(s.rows))
	copy(out, s.rows)
	return out
}

func (s *Section) Len() int {
	return len(s.rows)
}

func (s *Section) Row(i int) (*Row, error) {
	if i < 0 || i >= len(s.rows) {
		return nil, fmt.Errorf("%w: %s row %d", ErrNoRow, s.City, i)
	}
	return s.rows[i], nil
}

// AddRow appends a blank row, pre-filled with the form's global entry date
// when one is set.
func (s *Section) AddRow() *Row {
	row := newRow()
	row.onChange = func(r *Row) {
		r.applyRemarks()
		s.checkLastRow()
		s.form.notify(r.Record(s.City))
	}

	if date := s.form.globalEntryDate; date != "" {
		row.values[FieldEntryDate] = date
		if !row.exitDisabled {
			row.values[FieldExitDate] = date
		}
	}

	s.rows = append(s.rows, row)
	return row
}

// RemoveRow deletes the i-th row. Removing the only row leaves a fresh blank
// one in its place.
func (s *Section) RemoveRow(i int) error {
	if i < 0 || i >= len(s.rows) {
		return fmt.Errorf("%w: %s row %d", ErrNoRow, s.City, i)
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	if len(s.rows) == 0 {
		s.AddRow()
	}
	return nil
}

// Set changes one field of the i-th row and runs the row's change handler:
// remarks gating, auto-grow and change notification.
func (s *Section) Set(i int, f Field, value string) error {
	row, err := s.Row(i)
	if err != nil {
		return err
	}
	if err := validate(f, value); err != nil {
		return err
	}
	if row.Disabled(f) {
		return fmt.Errorf("%w: %s", ErrFieldDisabled, f)
	}

	if f == FieldRemarks {
		value = strings.TrimSpace(value)
	}
	row.values[f] = value
	row.rev++
	row.onChange(row)
	return nil
}

// checkLastRow appends one blank row when the last row has every required
// field filled. The new row is blank, so this never cascades.
func (s *Section) checkLastRow() {
	if len(s.rows) == 0 {
		return
	}
	if s.rows[len(s.rows)-1].complete() {
		s.AddRow()
	}
}

func (s *Section) collect() []report.Record {
	var records []report.Record
	for _, row := range s.rows {
		rec := row.Record(s.City)
		if rec.IsBlank() {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func validate(f Field, value string) error {
	v := strings.TrimSpace(value)
	switch f {
	case FieldSerial:
		for _, c := range v {
			if c < '0' || c > '9' {
				return fmt.Errorf("%w: %s must be a number", ErrInvalidValue, f)
			}
		}
	case FieldEntryDate, FieldExitDate:
		if v != "" && !validDate(v) {
			return fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidValue, f)
		}
	case FieldEntryTime, FieldExitTime:
		if v != "" {
			if _, err := time.Parse("15:04", v); err != nil {
				return fmt.Errorf("%w: %s must be HH:MM", ErrInvalidValue, f)
			}
		}
	case FieldRemarks:
		if !report.Remarks(v).Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidRemarks, value)
		}
	case FieldVRN, FieldModel:
	default:
		return fmt.Errorf("%w: field %d", ErrInvalidValue, int(f))
	}
	return nil
}

func validDate(v string) bool {
	_, err := time.Parse(time.DateOnly, v)
	return err == nil
}
