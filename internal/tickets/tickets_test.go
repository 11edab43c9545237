package tickets

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/ticketrag/internal/config"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

const rawExport = `Ticket Key,Summary,Description,Status,Priority,Store Number,Last Comment,Resolution
APT-1,Camera offline,"PTZ camera at store 12 not recording",Open,High,12.0,nan,Replaced PSU
APT-2,Door lock jammed,"* Issue: ADA door will not latch",Closed,Low,7,Tech dispatched,
APT-3,,,Open,nan,,,
`

func TestDecode(t *testing.T) {
	got, err := Decode(strings.NewReader(rawExport))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, 0, got[0].Position)
	assert.Equal(t, "APT-1", got[0].TicketID)
	assert.Equal(t, "12", got[0].StoreNumber)
	assert.Empty(t, got[0].LastComment, "nan is absent")
	assert.Equal(t, "Tech dispatched", got[1].LastComment)
	assert.Equal(t, 2, got[2].Position)
	assert.Empty(t, got[2].Priority)
}

func TestDecode_RequiresKeyColumn(t *testing.T) {
	_, err := Decode(strings.NewReader("Summary,Status\nx,Open\n"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(""))
	assert.Error(t, err)
}

func TestWriteCSV_RoundTripsThroughReader(t *testing.T) {
	in := []models.Ticket{
		{TicketID: "APT-1", Summary: "Camera offline", CleanedText: "Camera offline. PTZ, not recording", Status: "Open", StoreNumber: "12"},
		{TicketID: "", Summary: "No key", CleanedText: "line one\nline two"},
	}
	path := filepath.Join(t.TempDir(), "nested", "reference.csv")
	require.NoError(t, WriteCSV(path, in))

	out, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0].CleanedText, out[0].CleanedText)
	assert.Equal(t, "line one\nline two", out[1].CleanedText)
	assert.Equal(t, 1, out[1].Position)
}

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "bullets and headings",
			in:   "* Issue: camera down\n* Resolution: replaced",
			want: "The issue is camera down The resolution was replaced",
		},
		{
			name: "proposed resolution keeps its phrase",
			in:   "Proposed Resolution: reboot NVR",
			want: "The proposed resolution is reboot NVR",
		},
		{
			name: "urls and links removed",
			in:   "see https://jira.example.com/browse/APT-1 and [doc](http://x.y) or [Bob|mailto:bob@x.com] now",
			want: "see and or now",
		},
		{
			name: "boilerplate removed",
			in:   "Hello team! door stuck. Thank you for the help",
			want: "door stuck.",
		},
		{
			name: "status relabelled",
			in:   "Status: waiting on vendor",
			want: "Current status: waiting on vendor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestCleanTickets_DropsEmptyAndRenumbers(t *testing.T) {
	in, err := Decode(strings.NewReader(rawExport))
	require.NoError(t, err)

	out, dropped := CleanTickets(in)
	assert.Equal(t, 1, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[1].Position)
	assert.Equal(t, "Camera offline. PTZ camera at store 12 not recording", out[0].CleanedText)
	assert.Contains(t, out[1].CleanedText, "The issue is ADA door will not latch")
}

func TestRewrite(t *testing.T) {
	in := "Hi team. Camera down, see [runbook](http://wiki/x) <b>now</b>. Problem: no power. Kind regards, Ops"
	assert.Equal(t, "Camera down, see runbook now . The problem is no power.", Rewrite(in))
}

func testStore() *Store {
	return NewStore([]models.Ticket{
		{Position: 9, TicketID: "APT-1", Summary: "PTZ camera offline", CleanedText: "camera not recording", Status: "Open", Priority: "High"},
		{TicketID: "APT-2", Summary: "Door lock", CleanedText: "ADA door will not latch", Status: "Closed", Priority: "Low"},
		{TicketID: "APT-3", Summary: "Router", CleanedText: "store wifi down, replacement router shipped", Status: "open"},
		{TicketID: "APT-1", Summary: "dup id", CleanedText: "duplicate"},
	})
}

func TestStore(t *testing.T) {
	s := testStore()

	assert.Equal(t, 4, s.Len())
	first, ok := s.Get(0)
	require.True(t, ok)
	assert.Equal(t, 0, first.Position, "positions renumbered to offsets")

	_, ok = s.Get(4)
	assert.False(t, ok)
	_, ok = s.Get(-1)
	assert.False(t, ok)

	found, ok := s.FindByID("APT-1")
	require.True(t, ok)
	assert.Equal(t, "PTZ camera offline", found.Summary, "first occurrence wins")

	page, total := s.Page(1, 1, "OPEN")
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "APT-3", page[0].TicketID)
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(testStore(), 4)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 4, st.Indexed)
	assert.Equal(t, map[string]int{"Open": 1, "Closed": 1, "open": 1}, st.ByStatus)
	assert.Equal(t, map[string]int{"High": 1, "Low": 1}, st.ByPriority)
}

func TestCategorizer(t *testing.T) {
	c := NewCategorizer(config.DefaultCategories())
	s := testStore()

	tk, _ := s.Get(2)
	assert.Equal(t, []string{"Network", "Hardware"}, c.Match(&tk))

	counts := c.Count(s)
	require.Len(t, counts, 5)
	byName := map[string]int{}
	for _, cc := range counts {
		byName[cc.Name] = cc.Count
	}
	assert.Equal(t, 1, byName["Camera"])
	assert.Equal(t, 1, byName["Door/Access"])
	assert.Equal(t, 1, byName["Network"])
	assert.Equal(t, 1, byName["Hardware"])
	assert.Equal(t, 4, byName[AllTickets])
}

func TestInspectReader(t *testing.T) {
	rep, err := InspectReader(strings.NewReader(rawExport), 2)
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Rows)
	assert.Len(t, rep.Columns, 8)
	assert.Equal(t, 1, rep.Missing["Summary"])
	assert.Equal(t, 2, rep.Missing["Last Comment"])
	assert.Len(t, rep.Preview, 2)
	assert.InDelta(t, float64(len("PTZ camera at store 12 not recording")+len("* Issue: ADA door will not latch"))/3, rep.AvgDescriptionLength, 1e-9)
	assert.InDelta(t, float64(len("Replaced PSU"))/3, rep.AvgResolutionLength, 1e-9)
}

func TestEncode_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "Ticket Key,Summary,"))
}
