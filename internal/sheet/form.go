// Package sheet is the in-memory model behind the data-entry form: an ordered
// list of city sections, each an ordered list of rows. The collector reads
// records straight off this model.
package sheet

import (
	"errors"
	"fmt"
	"strings"

	"vehicle_log/internal/report"
)

var (
	ErrNoCity         = errors.New("please select a city")
	ErrDuplicateCity  = errors.New("city already added")
	ErrNoDate         = errors.New("please select a date")
	ErrNoRow          = errors.New("no such row")
	ErrFieldDisabled  = errors.New("field is disabled while work is in progress")
	ErrInvalidRemarks = errors.New("unknown remarks")
	ErrInvalidValue   = errors.New("invalid value")
)

// ChangeListener is told about every user change to a non-blank row.
type ChangeListener func(report.Record)

type Form struct {
	sections        []*Section
	globalEntryDate string
	listener        ChangeListener
}

func New() *Form {
	return &Form{}
}

// OnChange registers fn as the form's change listener, replacing any
// previous one.
func (f *Form) OnChange(fn ChangeListener) {
	f.listener = fn
}

func (f *Form) notify(rec report.Record) {
	if f.listener == nil || rec.IsBlank() {
		return
	}
	f.listener(rec)
}

// AddSection adds a section for city with one blank row. A city can only be
// added once.
func (f *Form) AddSection(city string) (*Section, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrNoCity
	}
	if _, ok := f.Section(city); ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCity, city)
	}

	s := &Section{City: city, form: f}
	s.AddRow()
	f.sections = append(f.sections, s)
	return s, nil
}

// RemoveSection drops the section for city along with its rows.
func (f *Form) RemoveSection(city string) bool {
	for i, s := range f.sections {
		if s.City == city {
			f.sections = append(f.sections[:i], f.sections[i+1:]...)
			return true
		}
	}
	return false
}

func (f *Form) Section(city string) (*Section, bool) {
	for _, s := range f.sections {
		if s.City == city {
			return s, true
		}
	}
	return nil, false
}

func (f *Form) Sections() []*Section {
	out := make([]*Section, len(f.sections))
	copy(out, f.sections)
	return out
}

func (f *Form) GlobalEntryDate() string {
	return f.globalEntryDate
}

// ApplyGlobalEntryDate makes date the default entry date for new rows and
// writes it into every existing row: the entry date always, the exit date
// only where it is not disabled. It counts as a programmatic fill, so no
// auto-grow or change notification happens.
func (f *Form) ApplyGlobalEntryDate(date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return ErrNoDate
	}
	if !validDate(date) {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidValue)
	}

	f.globalEntryDate = date
	for _, s := range f.sections {
		for _, row := range s.rows {
			row.values[FieldEntryDate] = date
			if !row.exitDisabled {
				row.values[FieldExitDate] = date
			}
		}
	}
	return nil
}

// Collect reads every non-blank row, sections first, rows in order.
func (f *Form) Collect() []report.Record {
	var records []report.Record
	for _, s := range f.sections {
		records = append(records, s.collect()...)
	}
	return records
}

// CollectByCity is Collect grouped per section. Sections without a single
// non-blank row are left out.
func (f *Form) CollectByCity() []report.CityGroup {
	var groups []report.CityGroup
	for _, s := range f.sections {
		records := s.collect()
		if len(records) == 0 {
			continue
		}
		groups = append(groups, report.CityGroup{City: s.City, Records: records})
	}
	return groups
}
