package speech

// Static voice catalogs for the neural backends. The native backend's
// catalog comes from the host at runtime and is not listed here.

// localVoices is the curated list of downloadable neural voices, grouped by
// language. Kept small on purpose: these are the voices worth a download for
// spelling practice.
var localVoices = map[string][]Voice{
	"en_US": {
		{ID: "en_US-hfc_female-medium", Name: "HFC Female", Lang: "en-US", Quality: "medium", Description: "Clear female voice"},
		{ID: "en_US-lessac-medium", Name: "Lessac", Lang: "en-US", Quality: "medium", Description: "Natural male voice"},
		{ID: "en_US-amy-medium", Name: "Amy", Lang: "en-US", Quality: "medium", Description: "Friendly female voice"},
		{ID: "en_US-ryan-medium", Name: "Ryan", Lang: "en-US", Quality: "medium", Description: "Clear male voice"},
	},
	"en_GB": {
		{ID: "en_GB-cori-medium", Name: "Cori", Lang: "en-GB", Quality: "medium", Description: "British female voice"},
		{ID: "en_GB-alba-medium", Name: "Alba", Lang: "en-GB", Quality: "medium", Description: "Scottish female voice"},
	},
}

// localAccentDefaults maps an accent to the default local voice. A missing
// entry means the local backend cannot serve that accent and the selector
// must fall back to the native backend.
var localAccentDefaults = map[Accent]string{
	AccentUS: "en_US-hfc_female-medium",
	AccentUK: "en_GB-cori-medium",
	// zh-TW has no usable local model; native fallback only.
}

// remoteVoices lists the cloud service voices. The remote service handles
// all three accents, including Mandarin.
var remoteVoices = []Voice{
	{ID: "alloy", Name: "Alloy", Lang: "en-US", Quality: "neural", Description: "Balanced neutral voice"},
	{ID: "nova", Name: "Nova", Lang: "en-US", Quality: "neural", Description: "Bright female voice"},
	{ID: "onyx", Name: "Onyx", Lang: "en-GB", Quality: "neural", Description: "Deep male voice"},
	{ID: "shimmer", Name: "Shimmer", Lang: "zh-TW", Quality: "neural", Description: "Soft voice, clear Mandarin"},
}

// remoteAccentDefaults maps an accent to the default remote voice.
var remoteAccentDefaults = map[Accent]string{
	AccentUS: "alloy",
	AccentUK: "onyx",
	AccentTW: "shimmer",
}

// LocalVoicesForAccent returns the local voices available for an accent.
func LocalVoicesForAccent(accent Accent) []Voice {
	switch accent {
	case AccentUS:
		return localVoices["en_US"]
	case AccentUK:
		return localVoices["en_GB"]
	default:
		return nil
	}
}

// LocalVoiceForAccent returns the default local voice id for an accent, or
// empty when the accent is unsupported locally.
func LocalVoiceForAccent(accent Accent) string {
	return localAccentDefaults[accent]
}

// RemoteVoiceForAccent returns the default remote voice id for an accent.
func RemoteVoiceForAccent(accent Accent) string {
	if id, ok := remoteAccentDefaults[accent]; ok {
		return id
	}
	return remoteAccentDefaults[AccentUS]
}

// RemoteVoices returns the remote voice catalog.
func RemoteVoices() []Voice {
	out := make([]Voice, len(remoteVoices))
	copy(out, remoteVoices)
	return out
}

// Supports reports whether a backend kind can serve the given accent.
// Native always can (it degrades to any English voice); local depends on the
// model catalog; remote serves everything.
func Supports(kind Kind, accent Accent) bool {
	switch kind {
	case KindLocal:
		_, ok := localAccentDefaults[accent]
		return ok
	default:
		return true
	}
}

// lookupLocalVoice finds a local catalog entry by id.
func lookupLocalVoice(id string) (Voice, bool) {
	for _, group := range localVoices {
		for _, v := range group {
			if v.ID == id {
				return v, true
			}
		}
	}
	return Voice{}, false
}
