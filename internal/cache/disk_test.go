package cache

import (
	"bytes"
	"os"
	"testing"
	"time"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	for _, level := range []int{0, 3} {
		dc, err := NewDiskCache(t.TempDir(), 0, level)
		if err != nil {
			t.Fatal(err)
		}

		in := []byte("some synthesized audio")
		if err := dc.Put("k", in); err != nil {
			t.Fatal(err)
		}
		out, ok := dc.Get("k")
		if !ok {
			t.Fatalf("level %d: Get missed after Put", level)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("level %d: Get = %q, want %q", level, out, in)
		}
	}
}

func TestDiskCacheMiss(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := dc.Get("absent"); ok {
		t.Error("Get hit for an absent key")
	}
	stats := dc.Stats()
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}

func TestDiskCacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := dc.Put("k", []byte("payload")); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewDiskCache(dir, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	out, ok := reopened.Get("k")
	if !ok || !bytes.Equal(out, []byte("payload")) {
		t.Errorf("reopened Get = %q, %v", out, ok)
	}
}

func TestDiskCacheReadsCompressedAfterCompressionDisabled(t *testing.T) {
	dir := t.TempDir()
	dc, err := NewDiskCache(dir, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := dc.Put("k", []byte("payload")); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewDiskCache(dir, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	out, ok := reopened.Get("k")
	if !ok || !bytes.Equal(out, []byte("payload")) {
		t.Errorf("Get after disabling compression = %q, %v", out, ok)
	}
}

func TestDiskCacheEvictsLRU(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 250, 0)
	if err != nil {
		t.Fatal(err)
	}

	blob := make([]byte, 100)
	if err := dc.Put("a", blob); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := dc.Put("b", blob); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	// Touch "a" so "b" is the least recently used.
	if _, ok := dc.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}
	time.Sleep(10 * time.Millisecond)

	if err := dc.Put("c", blob); err != nil {
		t.Fatal(err)
	}

	if _, ok := dc.Get("b"); ok {
		t.Error("b should have been evicted as least recently used")
	}
	if _, ok := dc.Get("a"); !ok {
		t.Error("a should have survived")
	}
	if _, ok := dc.Get("c"); !ok {
		t.Error("c should have survived")
	}
	if dc.Size() > 250 {
		t.Errorf("Size = %d, want <= capacity", dc.Size())
	}
	if dc.Stats().Evictions == 0 {
		t.Error("no evictions recorded")
	}
}

func TestDiskCacheDeleteAndClear(t *testing.T) {
	dc, err := NewDiskCache(t.TempDir(), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	_ = dc.Put("a", []byte("x"))
	_ = dc.Put("b", []byte("y"))

	if err := dc.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := dc.Get("a"); ok {
		t.Error("a still present after Delete")
	}
	if err := dc.Delete("a"); err != nil {
		t.Errorf("second Delete = %v, want nil no-op", err)
	}

	if err := dc.Clear(); err != nil {
		t.Fatal(err)
	}
	if dc.Size() != 0 {
		t.Errorf("Size = %d after Clear, want 0", dc.Size())
	}
}

func TestKeyIsStableAndDistinct(t *testing.T) {
	a := Key("local", "voice", "cat", "1.00")
	b := Key("local", "voice", "cat", "1.00")
	if a != b {
		t.Error("same parts should derive the same key")
	}
	if a == Key("local", "voice", "cat", "0.70") {
		t.Error("different parts should derive different keys")
	}
	// Part boundaries matter: ("ab","c") is not ("a","bc").
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("key must separate its parts")
	}
	if len(a) != 32 {
		t.Errorf("key length = %d, want 32", len(a))
	}
}

func TestModelStore(t *testing.T) {
	ms, err := NewModelStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	const voice = "en_US-amy-medium"

	if ms.Has(voice) {
		t.Error("Has = true for an absent model")
	}
	writeModel(t, ms, voice)
	if !ms.Has(voice) {
		t.Error("Has = false after writing both files")
	}

	writeModel(t, ms, "en_GB-alba-medium")
	want := []string{"en_GB-alba-medium", voice}
	got := ms.List()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("List = %v, want %v", got, want)
	}

	if err := ms.Remove(voice); err != nil {
		t.Fatal(err)
	}
	if ms.Has(voice) {
		t.Error("Has = true after Remove")
	}
	if err := ms.Remove(voice); err != nil {
		t.Errorf("second Remove = %v, want nil no-op", err)
	}
}

func TestModelStoreIgnoresHalfDownloads(t *testing.T) {
	ms, err := NewModelStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// Model file without its config does not count.
	if err := writeFile(ms.ModelPath("partial"), []byte("model")); err != nil {
		t.Fatal(err)
	}
	if ms.Has("partial") {
		t.Error("Has = true for a model missing its config")
	}
	if got := ms.List(); len(got) != 0 {
		t.Errorf("List = %v, want empty", got)
	}
}

func writeModel(t *testing.T, ms *ModelStore, voice string) {
	t.Helper()
	if err := writeFile(ms.ModelPath(voice), []byte("model")); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(ms.ConfigPath(voice), []byte("{}")); err != nil {
		t.Fatal(err)
	}
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
