package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "Rock", false},
		{"valid with spaces", "Baroque Rock", false},
		{"valid unicode", "Música Popular Brasileira", false},
		{"valid punctuation", "Drum & Bass", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeSchema) {
				t.Errorf("ValidateNodeID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeSchema)
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		v       float64
		wantErr bool
	}{
		{200, false},
		{1e-3, false},
		{0, true},
		{-1, true},
		{math.NaN(), true},
		{math.Inf(1), true},
	}

	for _, tt := range tests {
		err := ValidatePositive("depth_spacing", tt.v)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePositive(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
		}
	}
}

func TestValidateNonNegative(t *testing.T) {
	if err := ValidateNonNegative("padding", 0); err != nil {
		t.Errorf("zero should pass: %v", err)
	}
	if err := ValidateNonNegative("padding", -0.5); err == nil {
		t.Error("negative should fail")
	}
	if err := ValidateNonNegative("padding", math.Inf(-1)); err == nil {
		t.Error("infinity should fail")
	}
}
