package model

import (
	"testing"
	"time"
)

func TestElapsedMinutes(t *testing.T) {
	now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		createdAt time.Time
		want      int
	}{
		{"just created", now, 0},
		{"under a minute", now.Add(-30 * time.Second), 0},
		{"fifteen minutes", now.Add(-15 * time.Minute), 15},
		{"rounds down", now.Add(-(15*time.Minute + 59*time.Second)), 15},
		{"clock skew clamps to zero", now.Add(2 * time.Minute), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ElapsedMinutes(tt.createdAt, now); got != tt.want {
				t.Errorf("ElapsedMinutes = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidKitchenState(t *testing.T) {
	for _, s := range []string{KitchenStatePending, KitchenStatePreparing, KitchenStateReady} {
		if !ValidKitchenState(s) {
			t.Errorf("ValidKitchenState(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "done", "Ready"} {
		if ValidKitchenState(s) {
			t.Errorf("ValidKitchenState(%q) = true, want false", s)
		}
	}
}
