package main

import "github.com/charmbracelet/lipgloss"

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render
	errorText = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#E03A3E", Dark: "#FF5F87"}).Bold(true).Render
)
