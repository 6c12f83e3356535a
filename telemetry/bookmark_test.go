package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PreyCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Build up prey population
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick: int32(i * 600),
			PreyCount:     100,
			PredCount:     10,
		})
	}

	// Now crash prey population
	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 3000,
		PreyCount:     50, // 50% drop
		PredCount:     10,
	})
	if !hasBookmark(bookmarks, BookmarkPreyCrash) {
		t.Error("expected prey_crash bookmark")
	}

	// Peak resets after a crash
	bookmarks = bd.Check(WindowStats{WindowEndTick: 3600, PreyCount: 45, PredCount: 10})
	if hasBookmark(bookmarks, BookmarkPreyCrash) {
		t.Error("crash should not retrigger against the old peak")
	}
}

func TestBookmarkDetector_PredatorExtinction(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if b := bd.Check(WindowStats{WindowEndTick: 600, PreyCount: 80, PredCount: 0}); hasBookmark(b, BookmarkPredatorExtinction) {
		t.Error("first window must not trigger")
	}
	bd.Check(WindowStats{WindowEndTick: 1200, PreyCount: 80, PredCount: 4})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 1800, PreyCount: 120, PredCount: 0})
	if !hasBookmark(bookmarks, BookmarkPredatorExtinction) {
		t.Error("expected predator_extinction bookmark")
	}

	// Staying extinct is not a new event
	bookmarks = bd.Check(WindowStats{WindowEndTick: 2400, PreyCount: 130, PredCount: 0})
	if hasBookmark(bookmarks, BookmarkPredatorExtinction) {
		t.Error("extinction should fire once per collapse")
	}
}

func TestBookmarkDetector_PredatorRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Predator population drops to critical level
	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{
			WindowEndTick: int32(i * 600),
			PreyCount:     100,
			PredCount:     2, // Critical low
		})
	}

	// Predator recovers to 5x the minimum
	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 2400,
		PreyCount:     100,
		PredCount:     10,
	})
	if !hasBookmark(bookmarks, BookmarkPredatorRecovery) {
		t.Error("expected predator_recovery bookmark")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	bd := NewBookmarkDetector(10)

	triggeredAt := -1
	count := 0
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{
			WindowEndTick: int32(i * 600),
			PreyCount:     100,
			PredCount:     20,
		})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			count++
			if triggeredAt < 0 {
				triggeredAt = i
			}
		}
	}

	// Windows 3..7 each extend the stable run; the fifth one fires.
	if triggeredAt != 7 {
		t.Errorf("stable ecosystem triggered at window %d, want 7", triggeredAt)
	}
	if count != 1 {
		t.Errorf("stable ecosystem fired %d times, want 1", count)
	}
}

func TestBookmarkDetector_UnstableResets(t *testing.T) {
	bd := NewBookmarkDetector(10)

	preys := []int{100, 100, 100, 100, 100, 20, 100, 100, 100}
	for i, p := range preys {
		bookmarks := bd.Check(WindowStats{
			WindowEndTick: int32(i * 600),
			PreyCount:     p,
			PredCount:     20,
		})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			t.Fatalf("unexpected stable bookmark at window %d", i)
		}
	}
}
