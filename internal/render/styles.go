// Package render formats marketplace state for the terminal.
package render

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	unreadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	meStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	priceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	emptyStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
)

// Messages shown in place of content.
const (
	NoMessages      = "No messages yet."
	ThreadFailed    = "Failed to load messages."
	InboxFailed     = "Failed to load inbox."
	NoListings      = "No items found. Try different filters."
	WishlistIsEmpty = "Your wishlist is empty."
	LoadingText     = "Loading..."
)
