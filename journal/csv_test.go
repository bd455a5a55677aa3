package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	j, err := NewCSV(path)
	require.NoError(t, err)

	for _, e := range sampleEvents() {
		require.NoError(t, j.Record(e))
	}
	require.NoError(t, j.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"01B", "2024-03-15T11:30:45Z", "CLOSE_SL", "TREND", "LONG",
		"98.000000", "100.000000", "0.000000", "0.000000", "-2.000000",
		"9990.000000", "9990.000000", "false", "",
	}, rows[2])
	assert.Equal(t, "true", rows[1][12])
}

func TestCSVJournalBadPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSV(filepath.Join(t.TempDir(), "missing", "trades.csv"))
	assert.Error(t, err)
}
