package tickets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Kavirubc/ticketrag/pkg/models"
)

// Report describes a ticket CSV before any processing
type Report struct {
	Columns              []string       `json:"columns"`
	Rows                 int            `json:"rows"`
	Missing              map[string]int `json:"missing"`
	AvgDescriptionLength float64        `json:"avg_description_length,omitempty"`
	AvgResolutionLength  float64        `json:"avg_resolution_length,omitempty"`
	Preview              [][]string     `json:"preview"`
}

// Inspect reads a CSV and reports its shape, with up to previewRows sample rows
func Inspect(path string, previewRows int) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return InspectReader(f, previewRows)
}

// InspectReader is Inspect over an already opened stream
func InspectReader(r io.Reader, previewRows int) (*Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	rep := &Report{
		Columns: header,
		Missing: make(map[string]int, len(header)),
	}
	for _, h := range header {
		rep.Missing[h] = 0
	}

	descCol, resCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "description":
			descCol = i
		case "resolution":
			resCol = i
		}
	}

	var descTotal, resTotal int
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rep.Rows+1, err)
		}
		rep.Rows++

		for i, h := range header {
			if i >= len(record) || models.NormalizeField(record[i]) == "" {
				rep.Missing[h]++
			}
		}
		if descCol >= 0 && descCol < len(record) {
			descTotal += len(models.NormalizeField(record[descCol]))
		}
		if resCol >= 0 && resCol < len(record) {
			resTotal += len(models.NormalizeField(record[resCol]))
		}
		if len(rep.Preview) < previewRows {
			rep.Preview = append(rep.Preview, record)
		}
	}

	if rep.Rows > 0 {
		if descCol >= 0 {
			rep.AvgDescriptionLength = float64(descTotal) / float64(rep.Rows)
		}
		if resCol >= 0 {
			rep.AvgResolutionLength = float64(resTotal) / float64(rep.Rows)
		}
	}

	return rep, nil
}
