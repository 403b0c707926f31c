package shared

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console palette shared by the CLI and the console logger.
var (
	ColorInfo    = color.New(color.FgCyan)
	ColorSuccess = color.New(color.FgGreen)
	ColorWarning = color.New(color.FgYellow)
	ColorError   = color.New(color.FgRed)
	ColorPrompt  = color.New(color.FgBlue, color.Bold)
	ColorMuted   = color.New(color.FgHiBlack)
	ColorHeader  = color.New(color.FgMagenta, color.Bold)
)

// InitializeColors disables colour output when stdout is not a terminal or
// when the caller forces it off.
func InitializeColors(forceOff bool) {
	color.NoColor = forceOff || !isatty.IsTerminal(os.Stdout.Fd())
}

// MatchStateColor picks the colour used to print a match state label.
func MatchStateColor(state string) *color.Color {
	switch state {
	case "matched", "finalized":
		return ColorSuccess
	case "has_candidates":
		return ColorWarning
	case "unsuccessful":
		return ColorError
	default:
		return ColorMuted
	}
}
