package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vehicle_log/internal/report"
)

func twoCities() []report.CityGroup {
	return []report.CityGroup{
		{City: "Pune", Records: []report.Record{{
			City: "Pune", Serial: "1", VRN: "MH12AB1001", Model: "Swift",
			EntryDate: "2024-05-01", EntryTime: "09:30",
			ExitDate: "2024-05-01", ExitTime: "14:05",
			Remarks: report.RemarksDone,
		}}},
		{City: "Agra", Records: []report.Record{{
			City: "Agra", Serial: "1", VRN: "UP80CD2002", Model: "Nexon",
			EntryDate: "2024-05-02", EntryTime: "00:30",
			Remarks: report.RemarksInProgress,
		}}},
	}
}

func TestRowsLayout(t *testing.T) {
	rows := Rows(twoCities())

	want := [][]string{
		Header,
		{"Pune"},
		{"1", "MH12AB1001", "Swift", "2024-05-01", "9:30 AM", "2024-05-01", "2:05 PM", "Work Done"},
		{"Agra"},
		{"1", "UP80CD2002", "Nexon", "2024-05-02", "12:30 AM", "", "", "Work In Progress"},
	}
	assert.Equal(t, want, rows)
}

func TestRowsSkipsEmptyCities(t *testing.T) {
	groups := append([]report.CityGroup{{City: "Nagpur"}}, twoCities()...)
	rows := Rows(groups)
	assert.Len(t, rows, 5)
	assert.Equal(t, []string{"Pune"}, rows[1])

	assert.Equal(t, [][]string{Header}, Rows(nil))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Vehicle_report_01-05-2024.xlsx", Filename(twoCities()))
	assert.Equal(t, "Vehicle_report_unknown.xlsx", Filename(nil))

	noDate := []report.CityGroup{{City: "Pune", Records: []report.Record{{VRN: "MH12"}}}}
	assert.Equal(t, "Vehicle_report_unknown.xlsx", Filename(noDate))

	// the first non-empty date wins even when it sits in a later city
	later := append(noDate, report.CityGroup{City: "Agra", Records: []report.Record{{EntryDate: "2023-12-31"}}})
	assert.Equal(t, "Vehicle_report_31-12-2023.xlsx", Filename(later))
}

func TestWriteProducesReadableWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, twoCities()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetTitle}, f.GetSheetList())

	rows, err := f.GetRows(SheetTitle)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"Pune"}, rows[1])
	assert.Equal(t, "2:05 PM", rows[2][6])
	assert.Equal(t, []string{"Agra"}, rows[3])
	assert.Equal(t, "Work In Progress", rows[4][7])
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteFile(dir, twoCities())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Vehicle_report_01-05-2024.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetTitle)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
}
