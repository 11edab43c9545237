package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/Kavirubc/ticketrag/internal/config"
	"github.com/Kavirubc/ticketrag/internal/embedding"
	"github.com/Kavirubc/ticketrag/internal/tickets"
	"github.com/Kavirubc/ticketrag/internal/vectordb"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

func sampleTickets() []models.Ticket {
	return []models.Ticket{
		{TicketID: "APT-1", Summary: "Camera offline", CleanedText: "PTZ camera offline at store 12"},
		{TicketID: "APT-2", Summary: "", CleanedText: ""},
		{TicketID: "APT-3", Summary: "Door jammed", CleanedText: "ADA door lock jammed"},
		{TicketID: "", Summary: "Router down", Description: "store network router down"},
	}
}

func TestNew_LengthMismatch(t *testing.T) {
	idx := vectordb.NewFlatIndex(2)
	_, _ = idx.Add([]float32{1, 0})
	store := tickets.NewStore(sampleTickets())

	_, err := New(idx, store, "test")
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestCorpus_TicketAndDimensions(t *testing.T) {
	idx := vectordb.NewFlatIndex(2)
	_, _ = idx.Add([]float32{1, 0})
	c, err := New(idx, tickets.NewStore(sampleTickets()[:1]), "test")
	require.NoError(t, err)

	tk, err := c.Ticket(0)
	require.NoError(t, err)
	assert.Equal(t, "APT-1", tk.TicketID)

	_, err = c.Ticket(1)
	assert.ErrorIs(t, err, ErrCorruptIndex)

	assert.NoError(t, c.CheckDimensions(2))
	assert.ErrorIs(t, c.CheckDimensions(3), vectordb.ErrDimensionMismatch)
}

func TestCorpus_CheckEmbedderUnknownPasses(t *testing.T) {
	idx := vectordb.NewFlatIndex(2)
	_, _ = idx.Add([]float32{1, 0})
	c, err := New(idx, tickets.NewStore(sampleTickets()[:1]), "test")
	require.NoError(t, err)

	assert.NoError(t, c.CheckEmbedder("gemini/text-embedding-004"))
}

func TestBuilder_DoesNotMixModels(t *testing.T) {
	primary := &flakyProvider{HashProvider: embedding.NewHashProvider(16), failAfter: 1}
	fallback := embedding.NewFallback(primary, embedding.NewHashProvider(16), nil)

	b := NewBuilder(fallback, 1, nil)
	_, _, err := b.BuildLocal(context.Background(), sampleTickets())
	assert.ErrorIs(t, err, embedding.ErrModelSwitch)
}

func TestBuilder_WholeBuildOnFallback(t *testing.T) {
	primary := &flakyProvider{HashProvider: embedding.NewHashProvider(16), failAfter: 0}
	fallback := embedding.NewFallback(primary, embedding.NewHashProvider(16), nil)

	c, stats, err := NewBuilder(fallback, 1, nil).BuildLocal(context.Background(), sampleTickets())
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, stats.Indexed)
	assert.Equal(t, "fallback", fallback.Name())
}

// flakyProvider answers failAfter batches, then fails every call
type flakyProvider struct {
	*embedding.HashProvider
	failAfter int
	calls     int
}

func (f *flakyProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls > f.failAfter {
		return nil, errors.New("provider unavailable")
	}
	return f.HashProvider.EmbedBatch(ctx, texts)
}

func TestBuilder_BuildLocal(t *testing.T) {
	b := NewBuilder(embedding.NewHashProvider(32), 2, nil)
	var progress []int
	b.OnProgress = func(done, total int) {
		progress = append(progress, done)
		assert.Equal(t, 3, total)
	}

	c, stats, err := b.BuildLocal(context.Background(), sampleTickets())
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 3, c.Index.Len())
	assert.Equal(t, []int{2, 3}, progress)
	assert.Equal(t, 4, stats.TotalRows)
	assert.Equal(t, 3, stats.Indexed)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 32, stats.Dimensions)

	last, ok := c.Store.Get(2)
	require.True(t, ok)
	assert.Equal(t, 2, last.Position)
	assert.Equal(t, "Router down", last.Summary)
}

func TestSnapshot_SaveOpen(t *testing.T) {
	b := NewBuilder(embedding.NewHashProvider(16), 10, nil)
	c, _, err := b.BuildLocal(context.Background(), sampleTickets())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data", "tickets.db")
	require.NoError(t, Save(path, c.Store, c.Index.(*vectordb.FlatIndex), "hash"))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file cleaned up")

	store, index, meta, err := Open(path)
	require.NoError(t, err)

	assert.Equal(t, 3, meta.Count)
	assert.Equal(t, 16, meta.Dimensions)
	assert.Equal(t, "hash", meta.Embedder)
	assert.Equal(t, c.Store.All(), store.All())

	for pos := 0; pos < 3; pos++ {
		want, _ := c.Index.(*vectordb.FlatIndex).Vector(pos)
		got, ok := index.Vector(pos)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestSnapshot_OpenMissing(t *testing.T) {
	_, _, _, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestSnapshot_OpenDetectsMissingVector(t *testing.T) {
	b := NewBuilder(embedding.NewHashProvider(8), 10, nil)
	c, _, err := b.BuildLocal(context.Background(), sampleTickets())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tickets.db")
	require.NoError(t, Save(path, c.Store, c.Index.(*vectordb.FlatIndex), "hash"))

	db, err := bbolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketVectors).Delete(positionKey(1))
	}))
	require.NoError(t, db.Close())

	_, _, _, err = Open(path)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestLoad_Local(t *testing.T) {
	b := NewBuilder(embedding.NewHashProvider(8), 10, nil)
	built, _, err := b.BuildLocal(context.Background(), sampleTickets())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Index.Backend = "local"
	cfg.Index.Path = filepath.Join(t.TempDir(), "tickets.db")
	require.NoError(t, Save(cfg.Index.Path, built.Store, built.Index.(*vectordb.FlatIndex), "hash"))

	c, err := Load(context.Background(), cfg, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, vectordb.MetricL2, c.Index.Metric())
	assert.Equal(t, "hash", c.Embedder)
	assert.NoError(t, c.CheckEmbedder("hash"))
	assert.ErrorIs(t, c.CheckEmbedder("openai/text-embedding-3-small"), ErrCorruptIndex)

	cfg.Index.Backend = "qdrant"
	_, err = Load(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}

func TestHolder_Swap(t *testing.T) {
	h := NewHolder(nil)
	assert.Nil(t, h.Load())

	mk := func(n int) *Corpus {
		idx := vectordb.NewFlatIndex(1)
		recs := make([]models.Ticket, n)
		for i := range recs {
			_, _ = idx.Add([]float32{float32(i)})
		}
		c, err := New(idx, tickets.NewStore(recs), "test")
		require.NoError(t, err)
		return c
	}

	first := mk(1)
	assert.Nil(t, h.Swap(first))
	assert.Equal(t, uint64(1), h.Load().Generation())

	snapshot := h.Load()
	prev := h.Swap(mk(2))
	assert.Same(t, first, prev)
	assert.Equal(t, uint64(2), h.Load().Generation())
	// an earlier reader keeps its own snapshot
	assert.Equal(t, 1, snapshot.Len())
}

func TestHolder_ConcurrentReaders(t *testing.T) {
	idx := vectordb.NewFlatIndex(1)
	_, _ = idx.Add([]float32{0})
	c, err := New(idx, tickets.NewStore([]models.Ticket{{TicketID: "A"}}), "test")
	require.NoError(t, err)
	h := NewHolder(c)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cur := h.Load()
				assert.Equal(t, cur.Store.Len(), cur.Index.Len())
			}
		}()
	}
	for i := 0; i < 10; i++ {
		idx := vectordb.NewFlatIndex(1)
		_, _ = idx.Add([]float32{0})
		next, err := New(idx, tickets.NewStore([]models.Ticket{{TicketID: "B"}}), "test")
		require.NoError(t, err)
		h.Swap(next)
	}
	wg.Wait()
}
