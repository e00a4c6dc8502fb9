package score

import (
	"errors"
	"math"
	"testing"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

func TestNew_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
	}{
		{"zero", 0.0, false},
		{"one", 1.0, false},
		{"middle", 0.42, false},
		{"negative", -0.1, true},
		{"above one", 1.1, true},
		{"nan", math.NaN(), true},
		{"+inf", math.Inf(1), true},
		{"-inf", math.Inf(-1), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(tc.v)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v", tc.v)
				}
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Value() != tc.v {
				t.Errorf("Value() = %v, want %v", s.Value(), tc.v)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		v    float64
		want Level
	}{
		{0.95, High},
		{0.81, High},
		{0.8, Medium},
		{0.5, Medium},
		{0.49, Low},
		{0, Low},
	}
	for _, tc := range tests {
		s, err := New(tc.v)
		if err != nil {
			t.Fatalf("New(%v): %v", tc.v, err)
		}
		if got := s.Level(); got != tc.want {
			t.Errorf("Level(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-0.3).Value(); got != 0 {
		t.Errorf("Clamp(-0.3) = %v", got)
	}
	if got := Clamp(1.7).Value(); got != 1 {
		t.Errorf("Clamp(1.7) = %v", got)
	}
	if got := Clamp(math.NaN()).Value(); got != 0 {
		t.Errorf("Clamp(NaN) = %v", got)
	}
	if got := Clamp(0.73).Value(); got != 0.73 {
		t.Errorf("Clamp(0.73) = %v", got)
	}
}

func TestPercent(t *testing.T) {
	s, _ := New(0.876)
	if s.Percent() != 88 {
		t.Errorf("Percent() = %d, want 88", s.Percent())
	}
}
