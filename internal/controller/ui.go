// Package controller provides output adapters for displaying migration results.
package controller

import (
	"context"

	m "gooze.dev/pkg/rulemig/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeMigrate StartMode = iota
	ModeList
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	color bool
}

// WithListMode sets the UI to find-only mode.
func WithListMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeList
	}
}

// WithMigrateMode sets the UI to migration mode.
func WithMigrateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeMigrate
	}
}

// WithColor enables styled output.
func WithColor(enabled bool) StartOption {
	return func(c *StartConfig) {
		c.color = enabled
	}
}

// UI defines the interface for displaying matches and migration results.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	DisplayMatches(ctx context.Context, matches []m.Match, err error) error
	DisplayIndexInfo(ctx context.Context, files int, jobs int)
	DisplayDiff(ctx context.Context, file m.Path, diff string)
	DisplaySummary(ctx context.Context, report m.RunReport)
}
