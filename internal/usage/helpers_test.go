package usage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/goodtune/screentime/internal/clock"
	"github.com/goodtune/screentime/internal/storage/bolt"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *bolt.Store {
	t.Helper()

	store, err := bolt.Open(filepath.Join(t.TempDir(), "screentime.bolt"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testClock() *clock.TestClock {
	return &clock.TestClock{CurrentTime: testNow}
}
