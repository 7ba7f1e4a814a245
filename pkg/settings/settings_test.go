package settings

import (
	"path/filepath"
	"testing"
)

func TestNewCliParams(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg")
	got := NewCliParams()
	want := &Run{
		StateDir:    filepath.Join("/tmp/xdg", CliBinaryName),
		ExitOnError: true,
	}
	if *got != *want {
		t.Errorf("NewCliParams() = %+v, want %+v", got, want)
	}
}

func TestDefaultStateDir(t *testing.T) {
	tests := []struct {
		name string
		xdg  string
		home string
		want string
	}{
		{name: "xdg wins", xdg: "/state", home: "/home/u", want: filepath.Join("/state", "gridkit")},
		{name: "home fallback", xdg: "", home: "/home/u", want: filepath.Join("/home/u", ".local", "state", "gridkit")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_STATE_HOME", tt.xdg)
			t.Setenv("HOME", tt.home)
			if got := DefaultStateDir(); got != tt.want {
				t.Errorf("DefaultStateDir() = %q, want %q", got, tt.want)
			}
		})
	}
}
