// Package theme defines color themes for the crowdscope dashboard.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/crowdscope/internal/model"
)

// Theme maps dashboard roles to colors. Funding roles follow the
// campaign status: Funded for reached goals, Raising for open campaigns.
type Theme struct {
	Name string

	Background    lipgloss.Color // app background
	Surface       lipgloss.Color // cards and bars
	SurfaceHover  lipgloss.Color // active tab
	SurfaceBright lipgloss.Color // selected row, skeleton blocks
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // selected card

	TextDim     lipgloss.Color
	TextMuted   lipgloss.Color
	TextPrimary lipgloss.Color

	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	Funded       lipgloss.Color
	FundedBright lipgloss.Color
	Raising      lipgloss.Color
	Warning      lipgloss.Color // stale values, offline, validation errors
	Address      lipgloss.Color // owner and contract addresses
}

// StatusColor returns the color for a campaign status.
func (t Theme) StatusColor(s model.CampaignStatus) lipgloss.Color {
	switch s {
	case model.StatusFunded:
		return t.Funded
	case model.StatusActive:
		return t.Raising
	default:
		return t.TextMuted
	}
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Funded:        lipgloss.Color("#879A39"),
	FundedBright:  lipgloss.Color("#A3B859"),
	Raising:       lipgloss.Color("#4385BE"),
	Warning:       lipgloss.Color("#DA702C"),
	Address:       lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceHover:  lipgloss.Color("#45475A"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	Funded:        lipgloss.Color("#A6E3A1"),
	FundedBright:  lipgloss.Color("#C6F6C1"),
	Raising:       lipgloss.Color("#74C7EC"),
	Warning:       lipgloss.Color("#FAB387"),
	Address:       lipgloss.Color("#94E2D5"),
}

// TokyoNight is a cool blue and purple theme.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceHover:  lipgloss.Color("#343A52"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#BB9AF7"),
	AccentBright:  lipgloss.Color("#D0B8FF"),
	Funded:        lipgloss.Color("#9ECE6A"),
	FundedBright:  lipgloss.Color("#B9E87A"),
	Raising:       lipgloss.Color("#7AA2F7"),
	Warning:       lipgloss.Color("#FF9E64"),
	Address:       lipgloss.Color("#7DCFFF"),
}

// Terminal uses the 16 ANSI colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Funded:        lipgloss.Color("2"),
	FundedBright:  lipgloss.Color("10"),
	Raising:       lipgloss.Color("4"),
	Warning:       lipgloss.Color("3"),
	Address:       lipgloss.Color("6"),
}

// All available themes, default first.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// Names lists the available theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Valid reports whether name is a known theme.
func Valid(name string) bool {
	for _, t := range All {
		if t.Name == name {
			return true
		}
	}
	return false
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
