package report

import "strings"

// Remarks is the work status of a vehicle. It decides whether the exit
// fields of a record mean anything.
type Remarks string

const (
	RemarksDone       Remarks = "Work Done"
	RemarksInProgress Remarks = "Work In Progress"
)

// RemarksOptions lists the selectable remarks in display order. The first one
// is what a new row starts with.
var RemarksOptions = []Remarks{RemarksDone, RemarksInProgress}

func (r Remarks) Valid() bool {
	for _, opt := range RemarksOptions {
		if r == opt {
			return true
		}
	}
	return false
}

// Record is one vehicle entry/exit line for a city.
type Record struct {
	RowID     string  `json:"row_id,omitempty"`
	City      string  `json:"city"`
	Serial    string  `json:"sr_no"`
	VRN       string  `json:"vrn"`
	Model     string  `json:"model"`
	EntryDate string  `json:"entry_date"`
	EntryTime string  `json:"in_time"`
	ExitDate  string  `json:"out_date"`
	ExitTime  string  `json:"out_time"`
	Remarks   Remarks `json:"remarks"`

	// Revision counts the edits made to the row on the form. A stored row is
	// only replaced by a record of the same or a later revision.
	Revision int64 `json:"rev,omitempty"`
}

// IsBlank reports whether none of the identifying fields carry a value.
func (r Record) IsBlank() bool {
	for _, v := range []string{r.Serial, r.VRN, r.Model, r.EntryDate, r.EntryTime} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// CityGroup is the records of one city in collection order.
type CityGroup struct {
	City    string
	Records []Record
}

// GroupByCity groups records by city, keeping the order in which each city
// first appears.
func GroupByCity(records []Record) []CityGroup {
	var groups []CityGroup
	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.City]
		if !ok {
			i = len(groups)
			index[r.City] = i
			groups = append(groups, CityGroup{City: r.City})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}
