package shared

import (
	"os"
	"strings"
)

// DebugPrint prints debug messages when debug mode is enabled
func DebugPrint(debug bool, format string, args ...interface{}) {
	if debug {
		ColorMuted.Printf("DEBUG: "+format+"\n", args...)
	}
}

// IsDebugMode reports whether RETAGGER_DEBUG (or DEBUG) asks for debug output.
func IsDebugMode() bool {
	for _, name := range []string{"RETAGGER_DEBUG", "DEBUG"} {
		switch strings.ToLower(os.Getenv(name)) {
		case "1", "true", "yes":
			return true
		}
	}
	return false
}
