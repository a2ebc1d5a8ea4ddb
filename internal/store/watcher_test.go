package store

import (
	"testing"
	"time"
)

func TestWatchReportsExternalChange(t *testing.T) {
	s := newTestStore(t)
	ch, cancel, err := s.Watch(KeyWords)
	if err != nil {
		t.Skipf("watching unavailable: %v", err)
	}
	defer cancel()

	if err := s.Put(KeyWords, []string{"apple"}); err != nil {
		t.Fatal(err)
	}

	select {
	case <-ch:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification after write")
	}
}

func TestWatchIgnoresOtherKeys(t *testing.T) {
	s := newTestStore(t)
	ch, cancel, err := s.Watch(KeyWords)
	if err != nil {
		t.Skipf("watching unavailable: %v", err)
	}
	defer cancel()

	if err := s.Put(KeySettings, DefaultSettings()); err != nil {
		t.Fatal(err)
	}

	select {
	case <-ch:
		t.Fatal("notified for an unrelated key")
	case <-time.After(250 * time.Millisecond):
	}
}
