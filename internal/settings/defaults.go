package settings

import (
	"os"
	"path/filepath"
)

// DefaultAudio returns the canonical microphone capture parameters.
func DefaultAudio() AudioSettings {
	return AudioSettings{
		SampleRate: 44100,
		Channels:   1,
		ChunkSize:  1024,
		Format:     "paInt16",
	}
}

// DefaultTranscription returns the canonical transcription request hints.
func DefaultTranscription() TranscriptionSettings {
	return TranscriptionSettings{
		Language:    "en",
		Model:       "whisper-1",
		Temperature: 0.0,
		Prompt:      "",
	}
}

// DefaultUI returns the canonical window settings.
func DefaultUI() UISettings {
	return UISettings{
		WindowGeometry: "600x500",
		Theme:          "default",
	}
}

// DefaultOutput returns the canonical transcript save settings.
func DefaultOutput() OutputSettings {
	home, _ := os.UserHomeDir()
	return OutputSettings{
		AutoSave:      false,
		SaveDirectory: filepath.Join(home, "Documents"),
		FileFormat:    "txt",
	}
}

// Default returns a fresh copy of the full default document. Every schema
// path documented for the store exists in the returned tree.
func Default() Document {
	audio := DefaultAudio()
	transcription := DefaultTranscription()
	ui := DefaultUI()
	output := DefaultOutput()

	return Document{
		"api_key": "",
		"audio": map[string]any{
			"sample_rate": audio.SampleRate,
			"channels":    audio.Channels,
			"chunk_size":  audio.ChunkSize,
			"format":      audio.Format,
		},
		"transcription": map[string]any{
			"language":    transcription.Language,
			"model":       transcription.Model,
			"temperature": transcription.Temperature,
			"prompt":      transcription.Prompt,
		},
		"ui": map[string]any{
			"window_geometry": ui.WindowGeometry,
			"theme":           ui.Theme,
		},
		"output": map[string]any{
			"auto_save":      output.AutoSave,
			"save_directory": output.SaveDirectory,
			"file_format":    output.FileFormat,
		},
	}
}
