package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustar/attendance-register/internal/register"
)

// pinZone renders timestamps in UTC so artifact bytes are stable across
// machines.
func pinZone(t *testing.T) {
	t.Helper()
	old := localZone
	localZone = time.UTC
	t.Cleanup(func() { localZone = old })
}

func strptr(s string) *string { return &s }

func sampleRecords() []register.Record {
	in1 := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	out1 := time.Date(2024, 5, 1, 11, 45, 0, 0, time.UTC)
	in2 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return []register.Record{
		{
			ID:       "rec-1",
			FullName: "Ama Owusu",
			Contact:  strptr("0244000000"),
			Email:    strptr("ama@example.com"),
			Role:     register.RoleVisitor,
			Purpose:  strptr(`Say "hello"`),
			Date:     "2024-05-01",
			TimeIn:   in1,
			TimeOut:  &out1,
			Status:   register.StatusCheckedOut,
		},
		{
			ID:       "rec-2",
			FullName: "Kofi Mensah",
			Role:     register.RoleStaff,
			Date:     "2024-05-01",
			TimeIn:   in2,
			Status:   register.StatusCheckedIn,
		},
	}
}

func TestCSVExactBytes(t *testing.T) {
	pinZone(t)

	data, err := CSV(sampleRecords())
	require.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 3, "header plus one line per record")

	assert.Equal(t,
		`"Full Name","Contact Number","Email Address","Role","Purpose of Visit","Check-in Date","Check-in Time","Check-out Time","Status"`,
		lines[0])
	assert.Equal(t,
		`"Ama Owusu","0244000000","ama@example.com","Visitor","Say "hello"","2024-05-01","5/1/2024, 9:30:00 AM","5/1/2024, 11:45:00 AM","checkedOut"`,
		lines[1], "embedded quotes are wrapped, not doubled")
	assert.Equal(t,
		`"Kofi Mensah","","","Staff","","2024-05-01","5/1/2024, 10:00:00 AM","","checkedIn"`,
		lines[2], "missing optionals render as empty strings")
}

func TestCSVEmptySelection(t *testing.T) {
	data, err := CSV(nil)
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Nil(t, data, "no artifact on an empty selection")
}

func TestRowsSchemaWidth(t *testing.T) {
	pinZone(t)
	for _, row := range Rows(sampleRecords()) {
		assert.Len(t, row, len(Headers))
	}
}
