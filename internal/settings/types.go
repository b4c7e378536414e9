package settings

import "math"

// AudioSettings parametrizes the microphone capture stream.
type AudioSettings struct {
	SampleRate int
	Channels   int
	ChunkSize  int
	Format     string
}

// TranscriptionSettings parametrizes the transcription API request.
type TranscriptionSettings struct {
	Language    string
	Model       string
	Temperature float64
	Prompt      string
}

// UISettings stores window geometry and theme selection.
type UISettings struct {
	WindowGeometry string
	Theme          string
}

// OutputSettings controls transcript auto-save behavior.
type OutputSettings struct {
	AutoSave      bool
	SaveDirectory string
	FileFormat    string
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Message string
}

// intAt reads an integer leaf with default fallback. JSON decoding yields
// float64 for every number, so whole floats are accepted.
func intAt(d Document, path string, fallback int) int {
	value, ok := d.Lookup(path)
	if !ok {
		return fallback
	}
	switch n := value.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n == math.Trunc(n) {
			return int(n)
		}
	}
	return fallback
}

func floatAt(d Document, path string, fallback float64) float64 {
	value, ok := d.Lookup(path)
	if !ok {
		return fallback
	}
	switch n := value.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return fallback
}

func stringAt(d Document, path string, fallback string) string {
	value, ok := d.Lookup(path)
	if !ok {
		return fallback
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fallback
}

func boolAt(d Document, path string, fallback bool) bool {
	value, ok := d.Lookup(path)
	if !ok {
		return fallback
	}
	if b, ok := value.(bool); ok {
		return b
	}
	return fallback
}
