package services

import (
	"context"
	"testing"

	"fintrack/internal/events"
	"fintrack/internal/store/memory"
)

func TestThemeServiceToggle(t *testing.T) {
	ctx := context.Background()
	bus := events.NewBus()
	changes := 0
	bus.Subscribe(func(e events.Event) {
		if e.Type == events.PreferenceChanged {
			changes++
		}
	})
	svc := NewThemeService(memory.New(), bus, ThemeLight)

	cur, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if cur != ThemeLight {
		t.Errorf("Current() = %q, want %q", cur, ThemeLight)
	}

	for _, want := range []Theme{ThemeDark, ThemeLight, ThemeDark} {
		got, err := svc.Toggle(ctx)
		if err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		if got != want {
			t.Errorf("Toggle() = %q, want %q", got, want)
		}
	}

	cur, _ = svc.Current(ctx)
	if cur != ThemeDark {
		t.Errorf("Current() after toggles = %q, want %q", cur, ThemeDark)
	}
	if changes != 3 {
		t.Errorf("preference events = %d, want 3", changes)
	}
}

func TestThemeServiceFallback(t *testing.T) {
	tests := []struct {
		name     string
		fallback Theme
		want     Theme
	}{
		{"dark fallback", ThemeDark, ThemeDark},
		{"light fallback", ThemeLight, ThemeLight},
		{"unknown fallback becomes light", Theme("sepia"), ThemeLight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewThemeService(memory.New(), nil, tt.fallback).Current(context.Background())
			if err != nil {
				t.Fatalf("Current() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Current() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThemeServiceSetRejectsUnknown(t *testing.T) {
	svc := NewThemeService(memory.New(), nil, ThemeLight)
	if err := svc.Set(context.Background(), Theme("blue")); err == nil {
		t.Error("Set() should reject unknown theme")
	}
}
