package feed

import (
	"testing"

	"rug-surfer/internal/domain"
)

func TestHistory_AppendEvictsOldest(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Append(&domain.Snapshot{Mint: "MintA", Price: float64(i)})
	}

	got := h.Recent("MintA")
	if len(got) != 3 {
		t.Fatalf("expected bound of 3, got %d", len(got))
	}
	for i, s := range got {
		if want := float64(i + 2); s.Price != want {
			t.Errorf("entry %d price = %f, want %f (oldest evicted, order kept)", i, s.Price, want)
		}
	}
}

func TestHistory_PerMintIsolation(t *testing.T) {
	h := NewHistory(10)
	h.Append(&domain.Snapshot{Mint: "MintA", Price: 1})
	h.Append(&domain.Snapshot{Mint: "MintB", Price: 2})

	if h.Len("MintA") != 1 || h.Len("MintB") != 1 {
		t.Errorf("per-mint series mixed: A=%d B=%d", h.Len("MintA"), h.Len("MintB"))
	}
}

func TestHistory_RecentReturnsCopy(t *testing.T) {
	h := NewHistory(10)
	h.Append(&domain.Snapshot{Mint: "MintA", Price: 1})

	got := h.Recent("MintA")
	got[0] = &domain.Snapshot{Mint: "MintA", Price: 99}

	if h.Recent("MintA")[0].Price != 1 {
		t.Error("Recent must return a copied slice")
	}
}

func TestHistory_Drop(t *testing.T) {
	h := NewHistory(10)
	h.Append(&domain.Snapshot{Mint: "MintA", Price: 1})
	h.Drop("MintA")

	if h.Len("MintA") != 0 {
		t.Errorf("expected empty series after Drop, got %d", h.Len("MintA"))
	}
}

func TestHistory_DefaultDepth(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < DefaultHistoryDepth+10; i++ {
		h.Append(&domain.Snapshot{Mint: "MintA", Price: float64(i)})
	}
	if got := h.Len("MintA"); got != DefaultHistoryDepth {
		t.Errorf("default depth = %d, want %d", got, DefaultHistoryDepth)
	}
}
