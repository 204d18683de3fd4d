package tui

import "github.com/charmbracelet/lipgloss"

// bannerStyle uses the same adaptive color scheme as the header for consistency.
var bannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"}).
	Bold(true)

// Banner is the text displayed above the picker on startup.
const Banner = `╔╗╔┌─┐┬─┐┌─┐┬┌┬┐
║║║├┤ ├┬┘├┤ │ ││
╝╚╝└─┘┴└─└─┘┴─┴┘`
