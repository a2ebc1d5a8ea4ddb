package speech

import (
	"context"
	"errors"
	"testing"
)

func testSelector(t *testing.T, persist func(Kind)) (*Selector, *fakeHost, *LocalProvider) {
	t.Helper()
	host := &fakeHost{voices: []Voice{{ID: "host-en", Lang: "en-US"}}}
	local, _, _ := testLocalProvider(t)
	sel := NewSelector(NewNativeProvider(host), local, nil, persist)
	return sel, host, local
}

func TestSelectorNativeIsImmediatelyReady(t *testing.T) {
	sel, _, _ := testSelector(t, nil)

	sel.Apply(context.Background(), KindNative, AccentUS, "")
	if sel.State() != SelectorReady {
		t.Errorf("state = %v, want ready", sel.State())
	}
	if sel.ActiveKind() != KindNative {
		t.Errorf("active = %v, want native", sel.ActiveKind())
	}
}

func TestSelectorActivatesLocal(t *testing.T) {
	sel, _, local := testSelector(t, nil)

	sel.Apply(context.Background(), KindLocal, AccentUS, "")
	if sel.State() != SelectorReady {
		t.Fatalf("state = %v, want ready", sel.State())
	}
	if sel.ActiveKind() != KindLocal {
		t.Errorf("active = %v, want local", sel.ActiveKind())
	}
	if !local.IsReady() {
		t.Error("local provider should be initialized")
	}
}

func TestSelectorUnsupportedAccentSkipsInit(t *testing.T) {
	sel, _, local := testSelector(t, nil)

	fetched := false
	local.fetch = func(context.Context, string, ProgressFunc) error {
		fetched = true
		return nil
	}

	// zh-TW has no local model, so the selector must not even try.
	sel.Apply(context.Background(), KindLocal, AccentTW, "")
	if sel.State() != SelectorFallback {
		t.Errorf("state = %v, want fallback", sel.State())
	}
	if sel.ActiveKind() != KindNative {
		t.Errorf("active = %v, want native", sel.ActiveKind())
	}
	if fetched {
		t.Error("no model download should start for an unsupported accent")
	}
}

func TestSelectorInitFailurePersistsCorrection(t *testing.T) {
	var persisted []Kind
	sel, _, local := testSelector(t, func(k Kind) { persisted = append(persisted, k) })
	local.fetch = func(context.Context, string, ProgressFunc) error {
		return errors.New("network down")
	}

	sel.Apply(context.Background(), KindLocal, AccentUS, "")
	if sel.State() != SelectorFallback {
		t.Errorf("state = %v, want fallback", sel.State())
	}
	if sel.ActiveKind() != KindNative {
		t.Errorf("active = %v, want native", sel.ActiveKind())
	}
	if len(persisted) != 1 || persisted[0] != KindNative {
		t.Errorf("persisted = %v, want a single native correction", persisted)
	}
}

func TestSelectorUnsupportedAccentDoesNotPersist(t *testing.T) {
	var persisted []Kind
	sel, _, _ := testSelector(t, func(k Kind) { persisted = append(persisted, k) })

	sel.Apply(context.Background(), KindLocal, AccentTW, "")
	if len(persisted) != 0 {
		t.Errorf("persisted = %v; an accent mismatch is not an init failure", persisted)
	}
}

func TestSelectorSpeakFallsBackPerUtterance(t *testing.T) {
	sel, host, local := testSelector(t, nil)
	sel.Apply(context.Background(), KindLocal, AccentUS, "")

	local.synth = func(context.Context, string, string, string, float64) ([]byte, error) {
		return nil, errors.New("synth broke")
	}

	err := sel.Speak(context.Background(), "cat", Options{Speed: SpeedNormal, Accent: AccentUS})
	if err != nil {
		t.Fatalf("Speak = %v; the native retry should absorb the failure", err)
	}
	if len(host.spoken) != 1 || host.spoken[0] != "cat" {
		t.Errorf("host spoke %v, want the retried word", host.spoken)
	}
	// The preferred backend stays active for the next word.
	if sel.ActiveKind() != KindLocal {
		t.Errorf("active = %v, want local after a per-utterance fallback", sel.ActiveKind())
	}
}

func TestSelectorCancelReachesBothBackends(t *testing.T) {
	sel, host, _ := testSelector(t, nil)
	sel.Apply(context.Background(), KindLocal, AccentUS, "")

	before := host.cancels
	sel.Cancel()
	if host.cancels <= before {
		t.Error("native backend should be canceled too")
	}
}

func TestSelectorSwitchCancelsPrevious(t *testing.T) {
	sel, host, _ := testSelector(t, nil)

	sel.Apply(context.Background(), KindNative, AccentUS, "")
	before := host.cancels
	sel.Apply(context.Background(), KindLocal, AccentUS, "")
	if host.cancels <= before {
		t.Error("switching backends should cancel the previous one")
	}
}

func TestSelectorInvalidKindDefaultsToNative(t *testing.T) {
	sel, _, _ := testSelector(t, nil)

	sel.Apply(context.Background(), Kind("telepathy"), AccentUS, "")
	if sel.ActiveKind() != KindNative || sel.State() != SelectorReady {
		t.Errorf("state = %v active = %v, want ready native", sel.State(), sel.ActiveKind())
	}
}
