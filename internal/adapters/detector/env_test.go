package detector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/tusk/internal/adapters/detector"
)

func TestDetectEnvironment_CI(t *testing.T) {
	for _, v := range []string{"true", "1"} {
		t.Setenv("CI", v)
		assert.Equal(t, detector.FormatJSON, detector.DetectEnvironment(), "CI=%s", v)
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name     string
		detected detector.LogFormat
		flag     string
		want     detector.LogFormat
	}{
		{"explicit pretty", detector.FormatJSON, "pretty", detector.FormatPretty},
		{"text alias", detector.FormatJSON, "text", detector.FormatPretty},
		{"explicit json", detector.FormatPretty, "json", detector.FormatJSON},
		{"auto keeps detection", detector.FormatJSON, "auto", detector.FormatJSON},
		{"empty keeps detection", detector.FormatPretty, "", detector.FormatPretty},
		{"unknown keeps detection", detector.FormatPretty, "xml", detector.FormatPretty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detector.ResolveFormat(tt.detected, tt.flag))
		})
	}
}
