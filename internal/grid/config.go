package grid

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvSpacing    = "GRIDART_SPACING"
	EnvLineLength = "GRIDART_LINE_LENGTH"
)

// ConfigFromEnv applies env overrides on top of defaults and validates the result.
func ConfigFromEnv(defaults Grid) (Grid, error) {
	g := defaults
	if raw := os.Getenv(EnvSpacing); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Grid{}, fmt.Errorf("%s must be a number (got %q): %w", EnvSpacing, raw, err)
		}
		g.Spacing = v
	}
	if raw := os.Getenv(EnvLineLength); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Grid{}, fmt.Errorf("%s must be a number (got %q): %w", EnvLineLength, raw, err)
		}
		g.LineLength = v
	}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}
