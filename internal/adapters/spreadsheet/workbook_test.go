package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

func strp(s string) *string { return &s }

func readBack(t *testing.T, b []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestWriteRegistrations(t *testing.T) {
	rs := []domain.Registration{
		{
			SubmitterName: "王小明",
			IDSuffix:      "1234",
			Phone:         "0912345678",
			Location:      "Taroko",
			Activity:      "Gorge walk",
			Option:        strp("Shakadang"),
			Participants:  3,
			TripDate:      time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
			Notes:         strp("two kids"),
			CreatedAt:     time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC),
		},
		{
			SubmitterName: "Bob",
			IDSuffix:      "5678",
			Phone:         "0987654321",
			Location:      "Kenting",
			Activity:      "Snorkel",
			Participants:  1,
			TripDate:      time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
			CreatedAt:     time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter().WriteRegistrations(&buf, rs))

	rows := readBack(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"2025-03-01 08:30:00", "王小明", "1234", "0912345678", "Taroko", "Gorge walk", "Shakadang", "2025-04-05", "3", "two kids",
	}, rows[1])
	// Trailing empty cells are trimmed by GetRows.
	assert.Equal(t, []string{
		"2025-02-01 09:00:00", "Bob", "5678", "0987654321", "Kenting", "Snorkel", "", "2025-05-01", "1",
	}, rows[2])
}

func TestWriteRegistrations_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter().WriteRegistrations(&buf, nil))
	rows := readBack(t, buf.Bytes())
	require.Len(t, rows, 1)
	assert.Equal(t, Header, rows[0])
}

func TestWriter_Format(t *testing.T) {
	w := NewWriter()
	assert.Equal(t, ".xlsx", w.FileExtension())
	assert.Contains(t, w.ContentType(), "spreadsheetml")
}
