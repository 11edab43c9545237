// Package report persists generated insights and retrieved ticket snapshots.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Kavirubc/ticketrag/internal/tickets"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

// TimestampLayout is the format of the insight log timestamp column
const TimestampLayout = "2006-01-02 15:04:05"

var insightHeader = []string{"timestamp", "query", "insight"}

// AppendInsight adds one row to the insight log at path, writing the header
// when the file is new or empty.
func AppendInsight(path string, at time.Time, query, insight string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(insightHeader); err != nil {
			return err
		}
	}
	if err := w.Write([]string{at.Format(TimestampLayout), query, insight}); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

// Insight is one row of the insight log
type Insight struct {
	Timestamp time.Time
	Query     string
	Insight   string
}

// ReadInsights loads the insight log. A missing file is an empty log.
func ReadInsights(path string) ([]Insight, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(insightHeader)
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report header: %w", err)
	}

	var out []Insight
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read report: %w", err)
		}
		ts, err := time.ParseInLocation(TimestampLayout, rec[0], time.Local)
		if err != nil {
			return nil, fmt.Errorf("bad timestamp %q: %w", rec[0], err)
		}
		out = append(out, Insight{Timestamp: ts, Query: rec[1], Insight: rec[2]})
	}
	return out, nil
}

// ExportHits writes the retrieved tickets with a leading retrieval_rank column
func ExportHits(path string, hits []models.Hit) error {
	if len(hits) == 0 {
		return errors.New("no tickets retrieved, nothing to export")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"retrieval_rank", "similarity"}, tickets.Header()...)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := range hits {
		row := append([]string{
			strconv.Itoa(hits[i].Rank),
			strconv.FormatFloat(hits[i].Similarity, 'f', 4, 64),
		}, tickets.Row(&hits[i].Ticket)...)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
