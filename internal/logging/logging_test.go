package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"WARN", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, dev := range []bool{false, true} {
		logger, err := New("warn", dev)
		if err != nil {
			t.Fatalf("New(warn, %v) error = %v", dev, err)
		}
		if logger.Core().Enabled(zapcore.InfoLevel) {
			t.Error("info should be disabled at warn level")
		}
		if !logger.Core().Enabled(zapcore.ErrorLevel) {
			t.Error("error should be enabled at warn level")
		}
	}

	if _, err := New("loud", false); err == nil {
		t.Error("New(loud) should fail")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) returned nil")
	}
}
