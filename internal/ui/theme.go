package ui

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/gridkit/internal/config"
	"github.com/oakwood-commons/gridkit/pkg/grid"
)

// Theme holds the colours of the interactive view.
type Theme struct {
	Header  color.Color
	Border  color.Color
	Active  color.Color
	Muted   color.Color
	Info    color.Color
	Success color.Color
	Warning color.Color
	Error   color.Color
}

// NewTheme resolves a config theme, filling blanks with the stock palette.
func NewTheme(t config.Theme) Theme {
	pick := func(v, fallback string) color.Color {
		if strings.TrimSpace(v) == "" {
			v = fallback
		}
		return lipgloss.Color(v)
	}
	return Theme{
		Header:  pick(t.Header, "12"),
		Border:  pick(t.Border, "8"),
		Active:  pick(t.Active, "10"),
		Muted:   pick(t.Muted, "245"),
		Info:    pick(t.Info, "12"),
		Success: pick(t.Success, "10"),
		Warning: pick(t.Warning, "11"),
		Error:   pick(t.Error, "9"),
	}
}

func (t Theme) noticeColor(l grid.Level) color.Color {
	switch l {
	case grid.LevelSuccess:
		return t.Success
	case grid.LevelWarning:
		return t.Warning
	case grid.LevelError:
		return t.Error
	default:
		return t.Info
	}
}

// style returns a foreground style, or a bare style when colour is off.
func style(c color.Color, noColor bool) lipgloss.Style {
	s := lipgloss.NewStyle()
	if noColor || c == nil {
		return s
	}
	return s.Foreground(c)
}
