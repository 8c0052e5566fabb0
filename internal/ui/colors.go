package ui

import "github.com/fatih/color"

// ColorReset returns the reset escape code from the current theme.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error color from the current theme.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success color from the current theme.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color from the current theme.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary color from the current theme.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorCyan returns the secondary color from the current theme.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code from the current theme.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code from the current theme.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// Printers for whole-line status messages. They honor color.NoColor, which
// InitTheme and SetCurrentTheme keep in sync with the active theme.
var (
	SuccessPrinter = color.New(color.FgGreen, color.Bold)
	WarningPrinter = color.New(color.FgYellow)
	ErrorPrinter   = color.New(color.FgRed, color.Bold)
	LabelPrinter   = color.New(color.FgCyan)
)

// CLIColorProvider implements the errors package color provider using the
// current theme.
type CLIColorProvider struct{}

// Yellow returns the warning color.
func (CLIColorProvider) Yellow() string { return ColorYellow() }

// Red returns the error color.
func (CLIColorProvider) Red() string { return ColorRed() }

// Reset returns the reset code.
func (CLIColorProvider) Reset() string { return ColorReset() }
