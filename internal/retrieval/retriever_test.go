package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kavirubc/ticketrag/internal/corpus"
	"github.com/Kavirubc/ticketrag/internal/embedding"
	"github.com/Kavirubc/ticketrag/internal/retry"
	"github.com/Kavirubc/ticketrag/internal/tickets"
	"github.com/Kavirubc/ticketrag/internal/vectordb"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

const dims = 256

func fastPolicy() Options {
	return Options{
		EmbedTimeout: time.Second,
		Retry:        retry.Policy{Attempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
	}
}

func buildHolder(t *testing.T, records []models.Ticket) *corpus.Holder {
	t.Helper()
	b := corpus.NewBuilder(embedding.NewHashProvider(dims), 8, nil)
	c, _, err := b.BuildLocal(context.Background(), records)
	require.NoError(t, err)
	return corpus.NewHolder(c)
}

func threeTickets() []models.Ticket {
	return []models.Ticket{
		{TicketID: "APT-10", Summary: "Camera broken", CleanedText: "Camera broken at store 12, PTZ camera not recording"},
		{TicketID: "APT-11", Summary: "Door lock", CleanedText: "ADA door lock jammed at entrance"},
		{TicketID: "APT-12", Summary: "Network outage", CleanedText: "Router network switch down, no connectivity"},
	}
}

func TestRetrieve_RanksRelevantTicketFirst(t *testing.T) {
	r := New(buildHolder(t, threeTickets()), embedding.NewHashProvider(dims), fastPolicy(), nil)

	hits, err := r.Retrieve(context.Background(), "camera broken at store 12", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "APT-10", hits[0].Ticket.TicketID)
	assert.Equal(t, 1, hits[0].Rank)
	assert.Equal(t, 2, hits[1].Rank)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestRetrieve_InvalidQuery(t *testing.T) {
	r := New(buildHolder(t, threeTickets()), embedding.NewHashProvider(dims), fastPolicy(), nil)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := r.Retrieve(context.Background(), q, 3)
		assert.ErrorIs(t, err, ErrInvalidQuery, "query %q", q)
	}
}

func TestRetrieve_ClampsTopK(t *testing.T) {
	records := make([]models.Ticket, 10)
	for i := range records {
		records[i] = models.Ticket{
			TicketID:    fmt.Sprintf("APT-%d", i),
			CleanedText: fmt.Sprintf("ticket number %d about camera %d", i, i*7),
		}
	}
	r := New(buildHolder(t, records), embedding.NewHashProvider(dims), fastPolicy(), nil)

	hits, err := r.Retrieve(context.Background(), "camera", 100)
	require.NoError(t, err)
	assert.Len(t, hits, 10)

	hits, err = r.Retrieve(context.Background(), "camera", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = r.Retrieve(context.Background(), "camera", -4)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestRetrieve_OrderedAndBounded(t *testing.T) {
	r := New(buildHolder(t, threeTickets()), embedding.NewHashProvider(dims), fastPolicy(), nil)

	hits, err := r.Retrieve(context.Background(), "door jammed", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	for i, h := range hits {
		assert.GreaterOrEqual(t, h.Similarity, 0.0)
		assert.LessOrEqual(t, h.Similarity, 1.0)
		assert.Equal(t, i+1, h.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, hits[i-1].Similarity, h.Similarity)
		}
	}
}

func TestRetrieve_Idempotent(t *testing.T) {
	r := New(buildHolder(t, threeTickets()), embedding.NewHashProvider(dims), fastPolicy(), nil)
	ctx := context.Background()

	first, err := r.Retrieve(ctx, "network down", 3)
	require.NoError(t, err)
	second, err := r.Retrieve(ctx, "  network down ", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRetrieve_NoCorpus(t *testing.T) {
	r := New(corpus.NewHolder(nil), embedding.NewHashProvider(dims), fastPolicy(), nil)
	_, err := r.Retrieve(context.Background(), "camera", 3)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
}

func TestRetrieve_EmptyCorpus(t *testing.T) {
	c, err := corpus.New(vectordb.NewFlatIndex(dims), tickets.NewStore(nil), "empty")
	require.NoError(t, err)
	r := New(corpus.NewHolder(c), embedding.NewHashProvider(dims), fastPolicy(), nil)

	hits, err := r.Retrieve(context.Background(), "camera", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestRetrieve_DimensionMismatch(t *testing.T) {
	r := New(buildHolder(t, threeTickets()), embedding.NewHashProvider(dims/2), fastPolicy(), nil)
	_, err := r.Retrieve(context.Background(), "camera", 2)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

// stubIndex returns canned neighbors regardless of the query vector
type stubIndex struct {
	size      int
	neighbors []vectordb.Neighbor
}

func (s *stubIndex) Search(context.Context, []float32, int) ([]vectordb.Neighbor, error) {
	return s.neighbors, nil
}
func (s *stubIndex) Len() int                { return s.size }
func (s *stubIndex) Dimensions() int         { return dims }
func (s *stubIndex) Metric() vectordb.Metric { return vectordb.MetricL2 }

func stubHolder(t *testing.T, records []models.Ticket, neighbors []vectordb.Neighbor) *corpus.Holder {
	t.Helper()
	c, err := corpus.New(&stubIndex{size: len(records), neighbors: neighbors}, tickets.NewStore(records), "stub")
	require.NoError(t, err)
	return corpus.NewHolder(c)
}

func TestRetrieve_SkipsSentinelsAndDuplicates(t *testing.T) {
	records := []models.Ticket{
		{TicketID: "APT-1", CleanedText: "camera one"},
		{TicketID: "APT-2", CleanedText: "camera two"},
		{TicketID: "APT-1", CleanedText: "camera one again"},
		{TicketID: "APT-4", CleanedText: "camera four"},
	}
	holder := stubHolder(t, records, []vectordb.Neighbor{
		{Position: 0, Distance: 0.1},
		{Position: -1, Distance: 0},
		{Position: 0, Distance: 0.1},
		{Position: 2, Distance: 0.2},
		{Position: 1, Distance: 0.3},
		{Position: 3, Distance: 0.4},
	})
	r := New(holder, embedding.NewHashProvider(dims), fastPolicy(), nil)

	hits, err := r.Retrieve(context.Background(), "camera", 4)
	require.NoError(t, err)

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.Ticket.TicketID
	}
	assert.Equal(t, []string{"APT-1", "APT-2", "APT-4"}, ids)
	assert.Equal(t, 0, hits[0].Ticket.Position)
}

func TestRetrieve_CorruptIndex(t *testing.T) {
	records := []models.Ticket{{TicketID: "APT-1", CleanedText: "camera"}}
	holder := stubHolder(t, records, []vectordb.Neighbor{{Position: 7, Distance: 0.1}})
	r := New(holder, embedding.NewHashProvider(dims), fastPolicy(), nil)

	_, err := r.Retrieve(context.Background(), "camera", 1)
	assert.ErrorIs(t, err, corpus.ErrCorruptIndex)
}

type slowEmbedder struct {
	calls atomic.Int32
}

func (s *slowEmbedder) Embed(ctx context.Context, _ string) ([]float32, error) {
	s.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}
func (s *slowEmbedder) EmbedBatch(ctx context.Context, _ []string) ([][]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (s *slowEmbedder) Dimensions() int { return dims }
func (s *slowEmbedder) Close() error    { return nil }

func TestRetrieve_EmbeddingTimeout(t *testing.T) {
	emb := &slowEmbedder{}
	opts := fastPolicy()
	opts.EmbedTimeout = 10 * time.Millisecond
	r := New(buildHolder(t, threeTickets()), emb, opts, nil)

	_, err := r.Retrieve(context.Background(), "camera", 2)
	assert.ErrorIs(t, err, ErrEmbeddingTimeout)
	assert.Equal(t, int32(2), emb.calls.Load())
}

type flakyEmbedder struct {
	inner embedding.Provider
	fails atomic.Int32
}

func (f *flakyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.fails.Add(-1) >= 0 {
		return nil, errors.New("503 from provider")
	}
	return f.inner.Embed(ctx, text)
}
func (f *flakyEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return f.inner.EmbedBatch(ctx, texts)
}
func (f *flakyEmbedder) Dimensions() int { return f.inner.Dimensions() }
func (f *flakyEmbedder) Close() error    { return nil }

func TestRetrieve_RetriesTransientEmbedFailure(t *testing.T) {
	emb := &flakyEmbedder{inner: embedding.NewHashProvider(dims)}
	emb.fails.Store(1)
	r := New(buildHolder(t, threeTickets()), emb, fastPolicy(), nil)

	hits, err := r.Retrieve(context.Background(), "camera broken", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestRetrieve_SnapshotSurvivesSwap(t *testing.T) {
	holder := buildHolder(t, threeTickets())
	r := New(holder, embedding.NewHashProvider(dims), fastPolicy(), nil)
	gen := r.Generation()

	holder.Swap(buildHolder(t, threeTickets()[:1]).Load())

	assert.Greater(t, r.Generation(), gen)
	hits, err := r.Retrieve(context.Background(), "network", 3)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
