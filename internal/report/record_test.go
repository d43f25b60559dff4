package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordIsBlank(t *testing.T) {
	assert.True(t, Record{}.IsBlank())
	assert.True(t, Record{City: "Pune", Remarks: RemarksDone, ExitDate: "2024-05-01"}.IsBlank())
	assert.True(t, Record{VRN: "   "}.IsBlank())
	assert.False(t, Record{Model: "Swift"}.IsBlank())
	assert.False(t, Record{EntryTime: "10:00"}.IsBlank())
}

func TestRemarksValid(t *testing.T) {
	assert.True(t, RemarksDone.Valid())
	assert.True(t, RemarksInProgress.Valid())
	assert.False(t, Remarks("work done").Valid())
	assert.False(t, Remarks("").Valid())
}

func TestGroupByCity(t *testing.T) {
	records := []Record{
		{City: "Pune", Serial: "1"},
		{City: "Mumbai", Serial: "1"},
		{City: "Pune", Serial: "2"},
	}

	groups := GroupByCity(records)

	if assert.Len(t, groups, 2) {
		assert.Equal(t, "Pune", groups[0].City)
		assert.Len(t, groups[0].Records, 2)
		assert.Equal(t, "2", groups[0].Records[1].Serial)
		assert.Equal(t, "Mumbai", groups[1].City)
	}
	assert.Empty(t, GroupByCity(nil))
}
