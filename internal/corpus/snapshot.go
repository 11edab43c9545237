package corpus

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Kavirubc/ticketrag/internal/tickets"
	"github.com/Kavirubc/ticketrag/internal/vectordb"
	"github.com/Kavirubc/ticketrag/pkg/models"
)

var (
	bucketMeta    = []byte("meta")
	bucketTickets = []byte("tickets")
	bucketVectors = []byte("vectors")
	keyMeta       = []byte("meta")
)

// Meta describes a saved snapshot
type Meta struct {
	Count      int       `json:"count"`
	Dimensions int       `json:"dimensions"`
	Embedder   string    `json:"embedder"`
	BuiltAt    time.Time `json:"built_at"`
}

// Save writes store and index to a single bbolt file. The file at path is
// replaced only once the new one is complete.
func Save(path string, store *tickets.Store, index *vectordb.FlatIndex, embedder string) error {
	if store.Len() != index.Len() {
		return fmt.Errorf("%w: index has %d vectors, store has %d tickets",
			ErrCorruptIndex, index.Len(), store.Len())
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	_ = os.Remove(tmp)

	db, err := bbolt.Open(tmp, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", tmp, err)
	}

	meta := Meta{
		Count:      store.Len(),
		Dimensions: index.Dimensions(),
		Embedder:   embedder,
		BuiltAt:    time.Now().UTC(),
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		mb, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		tb, err := tx.CreateBucket(bucketTickets)
		if err != nil {
			return err
		}
		vb, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return err
		}

		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := mb.Put(keyMeta, data); err != nil {
			return err
		}

		for pos := 0; pos < store.Len(); pos++ {
			t, _ := store.Get(pos)
			data, err := json.Marshal(t)
			if err != nil {
				return err
			}
			if err := tb.Put(positionKey(pos), data); err != nil {
				return err
			}
			vec, _ := index.Vector(pos)
			if err := vb.Put(positionKey(pos), encodeVector(vec)); err != nil {
				return err
			}
		}
		return nil
	})
	if cerr := db.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Open reads a snapshot fully into memory
func Open(path string) (*tickets.Store, *vectordb.FlatIndex, Meta, error) {
	var meta Meta

	if _, err := os.Stat(path); err != nil {
		return nil, nil, meta, fmt.Errorf("index not found at %s: %w", path, err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{ReadOnly: true, Timeout: time.Second})
	if err != nil {
		return nil, nil, meta, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer db.Close()

	var records []models.Ticket
	var index *vectordb.FlatIndex

	err = db.View(func(tx *bbolt.Tx) error {
		mb, tb, vb := tx.Bucket(bucketMeta), tx.Bucket(bucketTickets), tx.Bucket(bucketVectors)
		if mb == nil || tb == nil || vb == nil {
			return fmt.Errorf("%w: missing buckets", ErrCorruptIndex)
		}
		if err := json.Unmarshal(mb.Get(keyMeta), &meta); err != nil {
			return fmt.Errorf("%w: bad meta: %v", ErrCorruptIndex, err)
		}

		records = make([]models.Ticket, 0, meta.Count)
		index = vectordb.NewFlatIndex(meta.Dimensions)

		// keys are big-endian positions, so cursor order is position order
		c := tb.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			pos := int(binary.BigEndian.Uint64(k))
			if pos != len(records) {
				return fmt.Errorf("%w: ticket position gap at %d", ErrCorruptIndex, len(records))
			}
			var t models.Ticket
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("%w: ticket %d: %v", ErrCorruptIndex, pos, err)
			}
			records = append(records, t)

			raw := vb.Get(k)
			if raw == nil {
				return fmt.Errorf("%w: no vector for position %d", ErrCorruptIndex, pos)
			}
			vec, err := decodeVector(raw)
			if err != nil {
				return fmt.Errorf("%w: position %d: %v", ErrCorruptIndex, pos, err)
			}
			if _, err := index.Add(vec); err != nil {
				return fmt.Errorf("%w: position %d: %v", ErrCorruptIndex, pos, err)
			}
		}

		if vb.Stats().KeyN != len(records) || len(records) != meta.Count {
			return fmt.Errorf("%w: meta says %d rows, found %d tickets and %d vectors",
				ErrCorruptIndex, meta.Count, len(records), vb.Stats().KeyN)
		}
		return nil
	})
	if err != nil {
		return nil, nil, meta, err
	}

	return tickets.NewStore(records), index, meta, nil
}

func positionKey(pos int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(pos))
	return k
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("vector of %d bytes", len(buf))
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v, nil
}
