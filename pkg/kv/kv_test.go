package kv

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	data, ok, err := s.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if ok {
		t.Error("NullStore.Get should always report a missing key")
	}
	if data != nil {
		t.Error("NullStore.Get should return nil data")
	}

	if err := s.Set(ctx, "key", []byte("value")); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still missing after Set
	if _, ok, _ = s.Get(ctx, "key"); ok {
		t.Error("NullStore should not store data")
	}

	if err := s.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	if h3 := Hash([]byte("world")); h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

// storeContract exercises the behavior every Store must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "diagramNodes"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want false, nil", ok, err)
	}

	if err := s.Set(ctx, "diagramNodes", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "diagramNodes")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if string(got) != `[{"id":"1"}]` {
		t.Errorf("Get = %s", got)
	}

	if err := s.Set(ctx, "diagramNodes", []byte(`[]`)); err != nil {
		t.Fatalf("Set (overwrite): %v", err)
	}
	got, _, _ = s.Get(ctx, "diagramNodes")
	if string(got) != `[]` {
		t.Errorf("Get after overwrite = %s, want []", got)
	}

	if err := s.Delete(ctx, "diagramNodes"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "diagramNodes"); ok {
		t.Error("key still present after Delete")
	}
	if err := s.Delete(ctx, "diagramNodes"); err != nil {
		t.Errorf("Delete(missing) = %v, want nil", err)
	}
}

func TestMemory(t *testing.T) {
	storeContract(t, NewMemory(0))
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)

	in := []byte("abc")
	if err := m.Set(ctx, "k", in); err != nil {
		t.Fatal(err)
	}
	in[0] = 'x'

	out, _, _ := m.Get(ctx, "k")
	if string(out) != "abc" {
		t.Errorf("stored value changed through caller slice: %s", out)
	}
	out[1] = 'y'
	again, _, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed through returned slice: %s", again)
	}
}

func TestMemoryQuota(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	if err := m.Set(ctx, "a", []byte("12345")); err != nil {
		t.Fatalf("Set within quota: %v", err)
	}
	if m.Size() != 6 {
		t.Errorf("Size = %d, want 6", m.Size())
	}

	err := m.Set(ctx, "b", []byte("123456"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("Set over quota = %v, want ErrQuotaExceeded", err)
	}
	if _, ok, _ := m.Get(ctx, "b"); ok {
		t.Error("rejected write must not be stored")
	}

	// Replacing a value only counts the difference.
	if err := m.Set(ctx, "a", []byte("123456789")); err != nil {
		t.Errorf("overwrite within quota: %v", err)
	}
	if err := m.Set(ctx, "a", []byte("1234567890")); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("overwrite over quota = %v, want ErrQuotaExceeded", err)
	}
	got, _, _ := m.Get(ctx, "a")
	if string(got) != "123456789" {
		t.Errorf("previous value must survive a rejected write, got %s", got)
	}

	if err := m.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if m.Size() != 0 {
		t.Errorf("Size after delete = %d, want 0", m.Size())
	}
}

func TestMemoryClosed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	m.Close()

	if _, _, err := m.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close = %v, want ErrClosed", err)
	}
	if err := m.Set(ctx, "k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after Close = %v, want ErrClosed", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	storeContract(t, s)
}

func TestFileStorePath(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	p := s.Path("diagramEdges")
	if !strings.HasPrefix(p, dir) {
		t.Errorf("Path %q not under %q", p, dir)
	}
	if !strings.HasSuffix(p, ".json") {
		t.Errorf("Path %q should end in .json", p)
	}
	if s.Path("diagramNodes") == p {
		t.Error("different keys must map to different files")
	}
}

func TestFileStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path("k"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := s.Get(ctx, "k")
	if ok || !errors.Is(err, ErrCorrupt) {
		t.Errorf("Get(corrupt) = ok %v, err %v; want ErrCorrupt", ok, err)
	}

	// The damaged file is left for inspection.
	raw, err := os.ReadFile(s.Path("k"))
	if err != nil || !bytes.Equal(raw, []byte("{not json")) {
		t.Errorf("corrupt file should be left in place, got %q, %v", raw, err)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	tests := []struct {
		name      string
		failures  int
		transient bool
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", 0, true, 1, false},
		{"recovers from transient failures", 2, true, 3, false},
		{"gives up after attempts", 5, true, 3, true},
		{"does not retry permanent errors", 5, false, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(ctx, 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					if tt.transient {
						return Transient(boom)
					}
					return boom
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, boom) {
				t.Errorf("err = %v should wrap the cause", err)
			}
		})
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error { return Transient(errors.New("down")) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestTransientNil(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
}
