package settings

import "fmt"

// Validate checks schema invariants and returns non-fatal warnings. The
// store never rejects a document outright; consumers decide how to surface
// out-of-range values.
func Validate(doc Document) []Warning {
	warnings := []Warning{}

	for _, path := range []string{"audio.sample_rate", "audio.channels", "audio.chunk_size"} {
		if n := intAt(doc, path, 1); n <= 0 {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("%s must be > 0 (got %d)", path, n)})
		}
	}

	if temperature := floatAt(doc, "transcription.temperature", 0); temperature < 0 || temperature > 1 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("transcription.temperature must be within [0.0, 1.0] (got %v)", temperature)})
	}

	if value, ok := doc.Lookup("api_key"); ok {
		if _, isString := value.(string); !isString {
			warnings = append(warnings, Warning{Message: "api_key must be a string"})
		}
	}

	return warnings
}
