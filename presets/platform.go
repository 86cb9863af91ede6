package presets

// PlatformPreset is a streaming-platform loudness target.
type PlatformPreset struct {
	Name       string  `json:"name"`
	TargetLUFS float64 `json:"target_lufs"`
	CeilingDB  float64 `json:"ceiling_db"`
}

var platformPresets = map[string]PlatformPreset{
	"spotify":     {"spotify", -14, -1.0},
	"apple_music": {"apple_music", -16, -1.0},
	"youtube":     {"youtube", -14, -1.0},
	"soundcloud":  {"soundcloud", -14, -1.0},
	"club":        {"club", -9, -0.3},
	"dynamic":     {"dynamic", -18, -1.0}, // preserve dynamics
}

// PlatformFor returns the loudness target for a platform, defaulting
// to spotify.
func PlatformFor(name string) PlatformPreset {
	if p, ok := platformPresets[name]; ok {
		return p
	}
	return platformPresets["spotify"]
}

// IsKnownPlatform reports whether a platform preset exists.
func IsKnownPlatform(name string) bool {
	_, ok := platformPresets[name]
	return ok
}

// PickPlatform chooses a platform from the mix's measured loudness:
// already-dynamic material targets apple_music, club-loud material
// stays club-loud, everything else gets the spotify target.
func PickPlatform(mixLUFS float64) PlatformPreset {
	switch {
	case mixLUFS <= -16:
		return platformPresets["apple_music"]
	case mixLUFS >= -10:
		return platformPresets["club"]
	default:
		return platformPresets["spotify"]
	}
}
