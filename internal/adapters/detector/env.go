// Package detector chooses the log format from the terminal environment.
package detector

import (
	"os"

	"golang.org/x/term"
)

// LogFormat is the rendering mode of log output.
type LogFormat int

const (
	// FormatAuto defers to DetectEnvironment.
	FormatAuto LogFormat = iota
	// FormatPretty renders colored, human-readable lines.
	FormatPretty
	// FormatJSON renders one JSON object per record.
	FormatJSON
)

// DetectEnvironment returns FormatJSON when stderr is not a terminal or CI is
// set, and FormatPretty otherwise.
func DetectEnvironment() LogFormat {
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return FormatJSON
	}
	return FormatPretty
}

// ResolveFormat applies the --log-format flag ("auto", "pretty", "json") to
// the detected format.
func ResolveFormat(detected LogFormat, flag string) LogFormat {
	switch flag {
	case "pretty", "text":
		return FormatPretty
	case "json":
		return FormatJSON
	default:
		return detected
	}
}
