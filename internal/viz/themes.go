package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the live view and SVG snapshots. Tight, Fat and Pair are the
// strokes for the three things the broad phase draws: shape boxes, their
// enlarged tree boxes and the candidate pairs between them. All colors are
// #rrggbb so GradientText and the SVG writer can use them directly.
type Theme struct {
	Name string

	TitleFrom, TitleTo lipgloss.Color
	Heading            lipgloss.Color
	Text, Muted        lipgloss.Color
	Chart              lipgloss.Color

	Running, Paused, Alert lipgloss.Color

	Background lipgloss.Color
	Tight      lipgloss.Color
	Fat        lipgloss.Color
	Pair       lipgloss.Color
}

var (
	ThemePhosphor = Theme{
		Name:       "phosphor",
		TitleFrom:  lipgloss.Color("#39ff14"),
		TitleTo:    lipgloss.Color("#0fa36b"),
		Heading:    lipgloss.Color("#7dffb0"),
		Text:       lipgloss.Color("#d8ffe4"),
		Muted:      lipgloss.Color("#3f7a55"),
		Chart:      lipgloss.Color("#39ff14"),
		Running:    lipgloss.Color("#39ff14"),
		Paused:     lipgloss.Color("#e6d84a"),
		Alert:      lipgloss.Color("#ff5a36"),
		Background: lipgloss.Color("#07120b"),
		Tight:      lipgloss.Color("#39ff14"),
		Fat:        lipgloss.Color("#1f8f4a"),
		Pair:       lipgloss.Color("#ff5a36"),
	}

	ThemeBlueprint = Theme{
		Name:       "blueprint",
		TitleFrom:  lipgloss.Color("#e8f1ff"),
		TitleTo:    lipgloss.Color("#6fa8ff"),
		Heading:    lipgloss.Color("#9cc4ff"),
		Text:       lipgloss.Color("#e8f1ff"),
		Muted:      lipgloss.Color("#5877a8"),
		Chart:      lipgloss.Color("#9cc4ff"),
		Running:    lipgloss.Color("#7ee0c3"),
		Paused:     lipgloss.Color("#ffd27a"),
		Alert:      lipgloss.Color("#ff7a8a"),
		Background: lipgloss.Color("#0d2a52"),
		Tight:      lipgloss.Color("#e8f1ff"),
		Fat:        lipgloss.Color("#6fa8ff"),
		Pair:       lipgloss.Color("#ffd27a"),
	}

	// Paper is meant for snapshots that end up on a white page.
	ThemePaper = Theme{
		Name:       "paper",
		TitleFrom:  lipgloss.Color("#222222"),
		TitleTo:    lipgloss.Color("#8a5a2b"),
		Heading:    lipgloss.Color("#8a5a2b"),
		Text:       lipgloss.Color("#dddddd"),
		Muted:      lipgloss.Color("#8c8c8c"),
		Chart:      lipgloss.Color("#c08a4e"),
		Running:    lipgloss.Color("#4e9a5b"),
		Paused:     lipgloss.Color("#c08a4e"),
		Alert:      lipgloss.Color("#c0392b"),
		Background: lipgloss.Color("#fbf8f1"),
		Tight:      lipgloss.Color("#222222"),
		Fat:        lipgloss.Color("#9a9a9a"),
		Pair:       lipgloss.Color("#c0392b"),
	}

	Themes = []Theme{ThemePhosphor, ThemeBlueprint, ThemePaper}

	DefaultTheme = ThemePhosphor
	CurrentTheme = DefaultTheme
)

// GetTheme looks a theme up by name. Unknown names get DefaultTheme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return DefaultTheme
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, 0, len(Themes))
	for _, t := range Themes {
		names = append(names, t.Name)
	}
	return names
}

// NextTheme is bound to the T key.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = DefaultTheme
}
