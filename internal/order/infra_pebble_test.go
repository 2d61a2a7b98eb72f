package order

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openPebble(t *testing.T) *PebbleRepo {
	t.Helper()
	repo, err := NewPebbleRepo(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestPebbleRepo_SaveAndGet(t *testing.T) {
	repo := openPebble(t)

	st := sampleState()
	st.IsFinalized = true
	id, err := repo.SaveOrder(context.Background(), NewRecord(st, "a1", fixedNow()))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id != "a1" {
		t.Errorf("id: got %q", id)
	}

	got, err := repo.GetOrder(context.Background(), "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Subtotal != 15.97 || !got.IsFinalized || !got.OrderTimestamp.Equal(fixedNow()) {
		t.Errorf("record: %+v", got)
	}
	if mods := got.Items["big mac"].Modifications; len(mods) != 1 || mods[0] != "no pickles" {
		t.Errorf("modifications: %v", mods)
	}
}

func TestPebbleRepo_AssignsID(t *testing.T) {
	repo := openPebble(t)

	rec := NewRecord(sampleState(), "", fixedNow())
	id, err := repo.SaveOrder(context.Background(), rec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" || rec.ID != id {
		t.Errorf("expected generated id, got %q (record %q)", id, rec.ID)
	}
}

func TestPebbleRepo_NotFound(t *testing.T) {
	repo := openPebble(t)

	if _, err := repo.GetOrder(context.Background(), "missing"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPebbleRepo_ListOrders(t *testing.T) {
	repo := openPebble(t)
	ctx := context.Background()

	// ids sort opposite to time so ordering must come from the timestamp
	for i, id := range []string{"c", "b", "a"} {
		ts := fixedNow().Add(time.Duration(i) * time.Minute)
		if _, err := repo.SaveOrder(ctx, NewRecord(sampleState(), id, ts)); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	list, err := repo.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(list))
	}
	for i, want := range []string{"c", "b", "a"} {
		if list[i].ID != want {
			t.Errorf("order %d: got %q, want %q", i, list[i].ID, want)
		}
	}
}
