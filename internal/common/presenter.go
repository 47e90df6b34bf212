package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// ColorMode controls colored console output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// Presenter prints user-facing messages. Structured logs go through
// errors.Logger instead.
type Presenter struct {
	output      io.Writer
	errorOutput io.Writer
	quiet       bool
}

// NewPresenter writes to stdout and stderr with the color mode taken from
// the environment.
func NewPresenter() *Presenter {
	return NewPresenterWithOptions(os.Stdout, os.Stderr, DetectColorMode())
}

// NewPresenterWithOptions creates a Presenter with explicit writers.
func NewPresenterWithOptions(output, errorOutput io.Writer, mode ColorMode) *Presenter {
	switch mode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
	return &Presenter{output: output, errorOutput: errorOutput}
}

// DetectColorMode honours NO_COLOR and RESUMEPDF_COLOR (always, never, auto).
func DetectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	switch strings.ToLower(os.Getenv("RESUMEPDF_COLOR")) {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// SetQuiet suppresses everything except errors.
func (p *Presenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Success prints message in green.
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintln(p.output, message)
}

// Warning prints message in yellow.
func (p *Presenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow).Fprintf(p.output, "Warning: %s\n", message)
}

// Info prints message without decoration.
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, message)
}

// Section prints an underlined title.
func (p *Presenter) Section(title string) {
	if p.quiet {
		return
	}
	header := color.New(color.Bold)
	header.Fprintln(p.output, title)
	header.Fprintln(p.output, strings.Repeat("-", len([]rune(title))))
}

// Error prints err to the error output, even in quiet mode.
func (p *Presenter) Error(err error) {
	if err == nil {
		return
	}
	color.New(color.FgRed, color.Bold).Fprintf(p.errorOutput, "Error: %v\n", err)
}
