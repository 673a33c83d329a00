package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"build-1", false},
		{"deploy/prod", false},
		{"", true},
		{" padded", true},
		{"trailing ", true},
		{"bad\x00id", true},
		{"tab\tid", true},
		{strings.Repeat("a", 256), false},
		{strings.Repeat("a", 257), true},
	}

	for _, tt := range tests {
		err := ValidateID("node", tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateID(%q) code = %v, want %v", tt.id, GetCode(err), ErrCodeInvalidInput)
		}
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		wantErr       bool
	}{
		{"defaults", 0, 0, false},
		{"typical", 1200, 800, false},
		{"negative width", -1, 800, true},
		{"negative height", 1200, -5, true},
		{"NaN", math.NaN(), 800, true},
		{"huge", 1 << 21, 800, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewport(tt.width, tt.height)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateViewport() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidViewport) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidViewport)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"pipeline.json", false},
		{"data/pipelines/main.yaml", false},
		{"/etc/pipegraph/graph.toml", false},
		{"", true},
		{"../secret.json", true},
		{"data/../../x.json", true},
		{"data\\..\\x.json", true},
		{"bad\x00.json", true},
		{"file..name.json", false},
		{strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		err := ValidatePath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}
