package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/pebble"
	"github.com/google/uuid"
)

const pebbleOrderPrefix = "order/"

// PebbleRepo keeps finalized orders in a local pebble database,
// for deployments without postgres.
type PebbleRepo struct {
	db *pebble.DB
}

func NewPebbleRepo(dir string) (*PebbleRepo, error) {
	d, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleRepo{db: d}, nil
}

func (p *PebbleRepo) Close() error { return p.db.Close() }

func pebbleKey(id string) []byte { return []byte(pebbleOrderPrefix + id) }

func (p *PebbleRepo) SaveOrder(_ context.Context, rec *Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}
	// orders are written once and must survive a crash right after the reply
	if err := p.db.Set(pebbleKey(rec.ID), b, pebble.Sync); err != nil {
		return "", fmt.Errorf("pebble set: %w", err)
	}
	return rec.ID, nil
}

func (p *PebbleRepo) GetOrder(_ context.Context, id string) (*Record, error) {
	v, closer, err := p.db.Get(pebbleKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var rec Record
	if err := json.Unmarshal(v, &rec); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", id, err)
	}
	return &rec, nil
}

func (p *PebbleRepo) ListOrders(_ context.Context) ([]Record, error) {
	it, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(pebbleOrderPrefix),
		UpperBound: []byte("order0"), // '0' follows '/'
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	out := []Record{}
	for it.First(); it.Valid(); it.Next() {
		var rec Record
		if err := json.Unmarshal(it.Value(), &rec); err != nil {
			return nil, fmt.Errorf("decode order %s: %w", it.Key(), err)
		}
		out = append(out, rec)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderTimestamp.Before(out[j].OrderTimestamp)
	})
	return out, nil
}
