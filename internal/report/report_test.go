package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

func TestAppendInsight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "insights.csv")
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.Local)

	require.NoError(t, AppendInsight(path, at, "camera outages", "**Findings:** PoE failures"))
	require.NoError(t, AppendInsight(path, at.Add(time.Hour), "door faults", "line one\nline two, with comma"))

	got, err := ReadInsights(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "camera outages", got[0].Query)
	assert.True(t, got[0].Timestamp.Equal(at))
	assert.Equal(t, "line one\nline two, with comma", got[1].Insight)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "timestamp,query,insight\n2025-06-01 09:30:00,camera outages,")
}

func TestReadInsights_Missing(t *testing.T) {
	got, err := ReadInsights(filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExportHits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hits.csv")
	hits := []models.Hit{
		{Rank: 1, Similarity: 0.8123, Ticket: models.Ticket{TicketID: "APT-1", Summary: "Camera offline"}},
		{Rank: 2, Similarity: 0.5, Ticket: models.Ticket{TicketID: "APT-9", Summary: "Door"}},
	}
	require.NoError(t, ExportHits(path, hits))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"retrieval_rank", "similarity", "Ticket Key", "Summary"}, rows[0][:4])
	assert.Equal(t, []string{"1", "0.8123", "APT-1", "Camera offline"}, rows[1][:4])
	assert.Equal(t, "2", rows[2][0])

	assert.Error(t, ExportHits(path, nil))
}
