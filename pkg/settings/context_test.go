package settings

import (
	"context"
	"testing"
)

func TestIntoContext(t *testing.T) {
	tests := []struct {
		name     string
		settings *Run
	}{
		{name: "empty_settings", settings: &Run{}},
		{name: "settings_with_values", settings: &Run{NoColor: true, StateDir: "/tmp/s", Interactive: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := IntoContext(context.Background(), tt.settings)
			got, ok := FromContext(ctx)
			if !ok {
				t.Fatal("FromContext() found nothing")
			}
			if got != tt.settings {
				t.Errorf("FromContext() returned a different pointer")
			}
		})
	}
}

func TestFromContext_Missing(t *testing.T) {
	if s, ok := FromContext(context.Background()); ok || s != nil {
		t.Errorf("FromContext() = %v, %v; want nil, false", s, ok)
	}
	ctx := context.WithValue(context.Background(), settingsContextKey, "wrong type")
	if _, ok := FromContext(ctx); ok {
		t.Error("FromContext() accepted a non-*Run value")
	}
}

func TestFromContextOrDefault(t *testing.T) {
	def := FromContextOrDefault(context.Background())
	if !def.ExitOnError {
		t.Error("defaults should exit on error")
	}
	mine := &Run{StateDir: "/x"}
	if got := FromContextOrDefault(IntoContext(context.Background(), mine)); got != mine {
		t.Error("FromContextOrDefault() ignored the stored settings")
	}
}
