package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("Expected %v, got: %v", tt.want, got)
			}
		})
	}
}

// TestNewWithWriter_InstanceLevel tests that the level is applied per logger
func TestNewWithWriter_InstanceLevel(t *testing.T) {
	globalBefore := zerolog.GlobalLevel()

	var quiet, loud bytes.Buffer
	q := NewWithWriter("error", &quiet)
	l := NewWithWriter("debug", &loud)

	q.Info().Msg("hidden")
	l.Debug().Msg("visible")

	if quiet.Len() != 0 {
		t.Errorf("Expected no output below error level, got: %s", quiet.String())
	}
	if !strings.Contains(loud.String(), "visible") {
		t.Errorf("Expected debug output, got: %s", loud.String())
	}
	if zerolog.GlobalLevel() != globalBefore {
		t.Errorf("Expected global level to stay %v, got: %v", globalBefore, zerolog.GlobalLevel())
	}
}
