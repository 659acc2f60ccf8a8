package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	ColorUp        = lipgloss.Color("#00D26A") // green  price up, success
	ColorDown      = lipgloss.Color("#FF4444") // red    price down, error
	ColorWarning   = lipgloss.Color("#FFB800")
	ColorAddress   = lipgloss.Color("#00B4D8") // addresses, hashes
	ColorValue     = lipgloss.Color("#FFFFFF")
	ColorMeta      = lipgloss.Color("#555555")
	ColorBorder    = lipgloss.Color("#1E3A5F")
	ColorSymbol    = lipgloss.Color("#9B5DE5") // token symbols
	ColorHighlight = lipgloss.Color("#F15BB5") // selected rows
	ColorInfo      = lipgloss.Color("#4EA8DE")
)

// Base styles.
var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorUp).Bold(true)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleError   = lipgloss.NewStyle().Foreground(ColorDown).Bold(true)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleAddress = lipgloss.NewStyle().Foreground(ColorAddress)
	StyleValue   = lipgloss.NewStyle().Foreground(ColorValue).Bold(true)
	StyleMeta    = lipgloss.NewStyle().Foreground(ColorMeta)
	StyleSymbol  = lipgloss.NewStyle().Foreground(ColorSymbol).Bold(true)
	StyleUp      = lipgloss.NewStyle().Foreground(ColorUp)
	StyleDown    = lipgloss.NewStyle().Foreground(ColorDown)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Bold(true)

	StyleSelected = lipgloss.NewStyle().
			Background(ColorHighlight).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorSymbol).
			Bold(true).
			MarginBottom(1)
)

// Banner returns the tada banner.
func Banner() string {
	art := `
  ████████╗ █████╗ ██████╗  █████╗
  ╚══██╔══╝██╔══██╗██╔══██╗██╔══██╗
     ██║   ███████║██║  ██║███████║
     ██║   ██╔══██║██║  ██║██╔══██║
     ██║   ██║  ██║██████╔╝██║  ██║
     ╚═╝   ╚═╝  ╚═╝╚═════╝ ╚═╝  ╚═╝`

	tagline := StyleMeta.Render("     Creator tokens on a bonding curve")
	return StyleSymbol.Render(art) + "\n" + tagline + "\n"
}

// Success formats a success message.
func Success(msg string) string { return StyleSuccess.Render("✓ " + msg) }

// Warn formats a warning message.
func Warn(msg string) string { return StyleWarning.Render("⚠ " + msg) }

// Err formats an error message.
func Err(msg string) string { return StyleError.Render("✗ " + msg) }

// Info formats an informational message.
func Info(msg string) string { return StyleInfo.Render("ℹ " + msg) }

// Hint formats a suggestion for the next command.
func Hint(msg string) string { return StyleMeta.Render("→ " + msg) }

// Addr formats an address.
func Addr(a string) string { return StyleAddress.Render(a) }

// Val formats a value.
func Val(v string) string { return StyleValue.Render(v) }

// Meta formats metadata text.
func Meta(m string) string { return StyleMeta.Render(m) }

// Symbol formats a token symbol.
func Symbol(s string) string { return StyleSymbol.Render(s) }

// TruncateAddr shortens an address for display: 0x1234…5678.
func TruncateAddr(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}
