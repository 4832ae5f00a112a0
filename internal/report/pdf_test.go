package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edustar/attendance-register/internal/register"
)

func TestPDFWithoutLogo(t *testing.T) {
	pinZone(t)

	data, err := PDF(sampleRecords(), "does/not/exist.jpg")
	require.NoError(t, err, "a missing logo must not break the export")
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestPDFPaginates(t *testing.T) {
	pinZone(t)

	in := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	var records []register.Record
	for i := 0; i < 40; i++ {
		records = append(records, register.Record{
			ID:       fmt.Sprintf("rec-%d", i),
			FullName: fmt.Sprintf("Visitor %02d", i),
			Role:     register.RoleVisitor,
			Date:     "2024-05-01",
			TimeIn:   in.Add(time.Duration(i) * time.Minute),
			Status:   register.StatusCheckedIn,
		})
	}

	small, err := PDF(records[:2], "")
	require.NoError(t, err)
	large, err := PDF(records, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(large), "%PDF-"))
	assert.Greater(t, len(large), len(small))
	// 11 rows fit under the first page's title block; 40 records need overflow
	// pages, each carrying its own header band.
	assert.Greater(t, strings.Count(string(large), "/Page"), strings.Count(string(small), "/Page"))
}

func TestPDFEmptySelection(t *testing.T) {
	data, err := PDF(nil, "")
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Nil(t, data)
}

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "short passes through", in: "Ama Owusu", want: "Ama Owusu"},
		{name: "exactly max passes through", in: strings.Repeat("x", 40), want: strings.Repeat("x", 40)},
		{name: "long gains ellipsis", in: strings.Repeat("x", 41), want: strings.Repeat("x", 37) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateCell(tt.in))
		})
	}
}
