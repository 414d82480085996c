package workspace

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestStorePutAndGet(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Dir: "functions", Path: "dedupe/dedupe.py"}

	payload := []byte("def dedupe(): pass\n")
	entry, err := store.Put(context.Background(), locator, bytes.NewReader(payload), PutOptions{Mode: 0o600})
	if err != nil {
		t.Fatalf("put error: %v", err)
	}
	if entry.FilePath != filepath.Join(store.Root(), "functions", "dedupe", "dedupe.py") {
		t.Fatalf("unexpected file path %s", entry.FilePath)
	}

	result, err := store.Get(context.Background(), locator)
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	defer result.Reader.Close()

	body, err := io.ReadAll(result.Reader)
	if err != nil {
		t.Fatalf("read body error: %v", err)
	}
	if string(body) != string(payload) {
		t.Fatalf("payload mismatch: %s", string(body))
	}
	if result.Entry.SizeBytes != int64(len(payload)) {
		t.Fatalf("size mismatch: %d", result.Entry.SizeBytes)
	}
	if result.Entry.Mode != 0o600 {
		t.Fatalf("mode mismatch: %v", result.Entry.Mode)
	}
}

func TestStorePutRefusesExistingWithoutOverwrite(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Path: "graph/graph.yml"}
	ctx := context.Background()

	if _, err := store.Put(ctx, locator, bytes.NewReader([]byte("a")), PutOptions{}); err != nil {
		t.Fatalf("put error: %v", err)
	}
	if _, err := store.Put(ctx, locator, bytes.NewReader([]byte("b")), PutOptions{}); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := store.Put(ctx, locator, bytes.NewReader([]byte("b")), PutOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite should succeed: %v", err)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), Locator{Dir: "functions", Path: "missing.py"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRemove(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Dir: "functions", Path: "remove/remove.py"}
	if _, err := store.Put(context.Background(), locator, bytes.NewReader([]byte("data")), PutOptions{}); err != nil {
		t.Fatalf("put error: %v", err)
	}
	if err := store.Remove(context.Background(), locator); err != nil {
		t.Fatalf("remove error: %v", err)
	}
	if _, err := store.Get(context.Background(), locator); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
	if err := store.Remove(context.Background(), locator); err != nil {
		t.Fatalf("removing a missing file should be a no-op: %v", err)
	}
}

func TestStoreIgnoresDirectories(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Dir: "functions", Path: "pkg"}

	fs, ok := store.(*fileStore)
	if !ok {
		t.Fatalf("unexpected store type %T", store)
	}

	filePath, err := fs.entryPath(locator)
	if err != nil {
		t.Fatalf("path error: %v", err)
	}
	if err := os.MkdirAll(filePath, 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}

	if _, err := store.Get(context.Background(), locator); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for directory, got %v", err)
	}
}

func TestStoreKeepsPathsInsideRoot(t *testing.T) {
	store := newTestStore(t)
	fs := store.(*fileStore)

	filePath, err := fs.entryPath(Locator{Dir: "..", Path: "../../etc/passwd"})
	if err != nil {
		t.Fatalf("path error: %v", err)
	}
	if filepath.Dir(filepath.Dir(filePath)) != store.Root() {
		t.Fatalf("path escaped root: %s", filePath)
	}
	if _, err := fs.entryPath(Locator{Path: " "}); err == nil {
		t.Fatalf("empty path should be rejected")
	}
}

func TestStoreSerializesConcurrentWriters(t *testing.T) {
	store := newTestStore(t)
	locator := Locator{Path: "shared.txt"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Put(context.Background(), locator, bytes.NewReader([]byte("same content")), PutOptions{Overwrite: true})
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(store.Root(), "shared.txt"))
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if string(data) != "same content" {
		t.Fatalf("unexpected content %q", data)
	}
	if len(store.(*fileStore).locks) != 0 {
		t.Fatalf("entry locks should be released")
	}
}

// newTestStore returns a Store backed by a temporary directory.
func newTestStore(t *testing.T) Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}
