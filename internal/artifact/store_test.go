package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"potholeai/internal/media/sniffer"
)

var jpegHead = []byte{0xff, 0xd8, 0xff, 0xe0, 'j', 'f', 'i', 'f'}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestStageAndRemove(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Stage(jpegHead, sniffer.Detect(jpegHead))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if !strings.HasSuffix(a.Path, ".jpeg") {
		t.Errorf("path %q should carry jpeg extension", a.Path)
	}
	if filepath.Dir(a.Path) != store.Dir() {
		t.Errorf("artifact staged outside store dir: %s", a.Path)
	}
	got, err := os.ReadFile(a.Path)
	if err != nil {
		t.Fatalf("read staged: %v", err)
	}
	if !bytes.Equal(got, jpegHead) {
		t.Error("staged bytes differ from input")
	}
	if a.Size != int64(len(jpegHead)) || a.MIME != "image/jpeg" {
		t.Errorf("unexpected metadata: %+v", a)
	}

	if err := store.Remove(a); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(a.Path); !os.IsNotExist(err) {
		t.Fatalf("artifact still present: %v", err)
	}
	if err := store.Remove(a); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
}

func TestConcurrentStagesAreIsolated(t *testing.T) {
	store := newTestStore(t)

	const n = 32
	paths := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := []byte{byte(i), byte(i), byte(i)}
			a, err := store.Stage(data, sniffer.Detect(data))
			if err != nil {
				t.Errorf("stage %d: %v", i, err)
				return
			}
			paths[i] = a.Path
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for i, p := range paths {
		if _, dup := seen[p]; dup {
			t.Fatalf("duplicate artifact path %s", p)
		}
		seen[p] = struct{}{}
		got, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("read %s: %v", p, err)
		}
		if !bytes.Equal(got, []byte{byte(i), byte(i), byte(i)}) {
			t.Fatalf("artifact %d holds another request's bytes", i)
		}
	}
}

func TestSweep(t *testing.T) {
	store := newTestStore(t)

	old := filepath.Join(store.Dir(), "orphan-old.jpg")
	fresh := filepath.Join(store.Dir(), "orphan-fresh.jpg")
	for _, path := range []string{old, fresh} {
		if err := os.WriteFile(path, []byte("img"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	past := now.Add(-2 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Sweep(time.Hour, now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old orphan survived sweep")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh orphan removed: %v", err)
	}
}

func TestSweepSkipsArtifactsInUse(t *testing.T) {
	store := newTestStore(t)

	staged, err := store.Stage([]byte("slow classification"), sniffer.Detect(nil))
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(staged.Path, past, past); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Sweep(time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if _, err := os.Stat(staged.Path); err != nil {
		t.Fatalf("in-use artifact swept: %v", err)
	}

	if err := store.Remove(staged); err != nil {
		t.Fatal(err)
	}
	if store.inUse(filepath.Base(staged.Path)) {
		t.Fatal("artifact still tracked after remove")
	}
}

func TestFingerprintStable(t *testing.T) {
	if Fingerprint([]byte("a")) != Fingerprint([]byte("a")) {
		t.Fatal("fingerprint not deterministic")
	}
	if Fingerprint([]byte("a")) == Fingerprint([]byte("b")) {
		t.Fatal("distinct inputs share a fingerprint")
	}
	if len(Fingerprint(nil)) != 64 {
		t.Fatal("expected 32-byte hex digest")
	}
}
