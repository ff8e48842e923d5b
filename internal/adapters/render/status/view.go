package status

import (
	"fmt"
	"math"
	"strings"

	"github.com/dorian305/rtls-client/internal/application"
	"github.com/dorian305/rtls-client/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const sampleBarWidth = 20

type RenderOptions struct {
	// Endpoint is shown in the header when set.
	Endpoint string
	// MinSamples sizes the sample gate bar. Zero hides it.
	MinSamples int
}

func renderView(status application.Status, opts RenderOptions, s styles) string {
	header := "server: n/a"
	if opts.Endpoint != "" {
		header = "server: " + opts.Endpoint
	}

	lines := []string{
		s.title.Render("RTLS Client"),
		s.header.Render(header),
		s.section.Render(renderDevice(status, opts, s)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderDevice(status application.Status, opts RenderOptions, s styles) string {
	device := status.Device
	parts := []string{
		s.device.Render(deviceTitle(device)),
		keyValue(s, "type:", typeLabel(device.Type)),
		keyValue(s, "state:", stateStyle(status.State, s).Render(status.State.String())),
	}

	if device.Battery != "" {
		parts = append(parts, keyValue(s, "battery:", s.detail.Render(device.Battery)))
	}
	if status.Samples > 0 {
		parts = append(parts, keyValue(s, "position:", s.detail.Render(device.Coordinates.String())))
	}
	if opts.MinSamples > 0 {
		parts = append(parts, sampleLine(status, opts.MinSamples, s))
	}
	if status.LastError != "" {
		parts = append(parts, s.warning.Render("last error: "+status.LastError))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func keyValue(s styles, key, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key), " ", value)
}

func sampleLine(status application.Status, minSamples int, s styles) string {
	gated := status.Samples
	if gated > minSamples {
		gated = minSamples
	}
	percent := 100 * float64(gated) / float64(minSamples)

	meta := fmt.Sprintf("%d/%d", gated, minSamples)
	if status.ConnectRequested {
		meta = fmt.Sprintf("%d collected, gate open", status.Samples)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.key.Render("samples:"),
		" ",
		renderProgressBar(percent, sampleBarWidth, s),
		" ",
		s.meta.Render(meta),
	)
}

func renderProgressBar(filledPercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := clampPercent(filledPercent) / 100.0
	filled := int(math.Round(float64(width) * fraction))
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func deviceTitle(device domain.Device) string {
	name := strings.TrimSpace(device.Name)
	if name == "" {
		name = "unnamed device"
	}
	if device.ID == "" {
		return fmt.Sprintf("%s (unassigned)", name)
	}
	return fmt.Sprintf("%s (%s)", name, device.ID)
}

func typeLabel(t domain.DeviceType) string {
	if t == "" {
		return "n/a"
	}
	return string(t)
}

func stateStyle(state domain.SessionState, s styles) lipgloss.Style {
	switch state {
	case domain.SessionConnected:
		return s.connected
	case domain.SessionConnecting:
		return s.pending
	case domain.SessionClosed:
		return s.closed
	default:
		return s.detail
	}
}
