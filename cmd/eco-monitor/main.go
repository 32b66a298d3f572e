package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultServerURL = "http://localhost:3536"
	forecastPreview  = 6
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

var severityStyles = map[string]lipgloss.Style{
	"critical": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	"warning":  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	"info":     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
}

var aqiStyles = map[string]lipgloss.Style{
	"Good":                           lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	"Moderate":                       lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
	"Unhealthy for Sensitive Groups": lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	"Unhealthy":                      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

type step int

const (
	stepEnteringURL step = iota
	stepEnteringEmail
	stepEnteringPassword
	stepLoggingIn
	stepSelectingDevice
	stepDashboard
)

type model struct {
	step         step
	api          *apiClient
	serverURL    string
	email        string
	currentInput string

	devices  []device
	cursor   int
	selected *device
	latest   *reading
	alerts   []alert
	forecast []prediction

	message  string
	loading  bool
	quitting bool
}

type loginSuccessMsg struct{ devices []device }
type dashboardMsg struct {
	latest *reading
	alerts []alert
}
type ackedMsg struct{ title string }
type forecastMsg []prediction
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func initialModel() model {
	return model{
		step:         stepEnteringURL,
		currentInput: defaultServerURL,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func loginUser(api *apiClient, email, password string) tea.Cmd {
	return func() tea.Msg {
		if err := api.login(email, password); err != nil {
			return errMsg{fmt.Errorf("login failed: %w", err)}
		}
		devices, err := api.devices()
		if err != nil {
			return errMsg{err}
		}
		return loginSuccessMsg{devices: devices}
	}
}

func loadDashboard(api *apiClient, deviceID string) tea.Cmd {
	return func() tea.Msg {
		latest, err := api.latest(deviceID)
		if err != nil {
			return errMsg{err}
		}
		alerts, err := api.alerts(deviceID)
		if err != nil {
			return errMsg{err}
		}
		return dashboardMsg{latest: latest, alerts: alerts}
	}
}

func acknowledge(api *apiClient, a alert) tea.Cmd {
	return func() tea.Msg {
		if err := api.ackAlert(a.ID); err != nil {
			return errMsg{err}
		}
		return ackedMsg{title: a.Title}
	}
}

func generateForecast(api *apiClient, deviceID string) tea.Cmd {
	return func() tea.Msg {
		predictions, err := api.generate(deviceID, "air_quality")
		if err != nil {
			return errMsg{err}
		}
		return forecastMsg(predictions)
	}
}

func (m model) typing() bool {
	return m.step == stepEnteringURL || m.step == stepEnteringEmail || m.step == stepEnteringPassword
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case loginSuccessMsg:
		m.loading = false
		m.devices = msg.devices
		m.cursor = 0
		m.step = stepSelectingDevice
		m.message = successStyle.Render("✓ Logged in as " + m.email)

	case dashboardMsg:
		m.loading = false
		m.latest = msg.latest
		m.alerts = msg.alerts
		m.message = ""

	case ackedMsg:
		m.message = successStyle.Render("✓ Acknowledged " + msg.title)
		m.loading = true
		return m, loadDashboard(m.api, m.selected.ID)

	case forecastMsg:
		m.loading = false
		m.forecast = []prediction(msg)
		if len(m.forecast) > forecastPreview {
			m.forecast = m.forecast[:forecastPreview]
		}

	case errMsg:
		m.loading = false
		m.message = errorStyle.Render("✗ " + msg.err.Error())
		if m.step == stepLoggingIn {
			m.step = stepEnteringEmail
			m.currentInput = ""
		}
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || (key == "q" && !m.typing()) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.typing() {
		switch msg.Type {
		case tea.KeyBackspace:
			if len(m.currentInput) > 0 {
				m.currentInput = m.currentInput[:len(m.currentInput)-1]
			}
		case tea.KeyEnter:
			return m.submitInput()
		case tea.KeyRunes, tea.KeySpace:
			m.currentInput += string(msg.Runes)
		}
		return m, nil
	}

	switch m.step {
	case stepSelectingDevice:
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.devices)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.devices) > 0 {
				m.selected = &m.devices[m.cursor]
				m.step = stepDashboard
				m.latest, m.alerts, m.forecast = nil, nil, nil
				m.loading = true
				return m, loadDashboard(m.api, m.selected.ID)
			}
		}

	case stepDashboard:
		switch key {
		case "r":
			m.loading = true
			return m, loadDashboard(m.api, m.selected.ID)
		case "a":
			if len(m.alerts) > 0 {
				return m, acknowledge(m.api, m.alerts[0])
			}
		case "g":
			m.loading = true
			return m, generateForecast(m.api, m.selected.ID)
		case "esc", "b":
			m.step = stepSelectingDevice
			m.message = ""
		}
	}

	return m, nil
}

func (m model) submitInput() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.currentInput)
	if input == "" {
		return m, nil
	}

	switch m.step {
	case stepEnteringURL:
		m.serverURL = input
		m.api = newAPIClient(input)
		m.step = stepEnteringEmail
	case stepEnteringEmail:
		m.email = input
		m.step = stepEnteringPassword
	case stepEnteringPassword:
		m.step = stepLoggingIn
		m.loading = true
		m.message = "Logging in..."
		m.currentInput = ""
		return m, loginUser(m.api, m.email, input)
	}
	m.currentInput = ""
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("EcoTracker Monitor") + "\n")

	switch m.step {
	case stepEnteringURL:
		s.WriteString(promptStyle.Render("Server URL:") + "\n")
		s.WriteString(inputStyle.Render("> " + m.currentInput))
		s.WriteString("\n\nPress Enter\n")

	case stepEnteringEmail:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		s.WriteString(promptStyle.Render("Email:") + "\n")
		s.WriteString(inputStyle.Render("> " + m.currentInput))
		s.WriteString("\n\nPress Enter\n")

	case stepEnteringPassword:
		s.WriteString(promptStyle.Render("Password:") + "\n")
		s.WriteString(inputStyle.Render("> " + strings.Repeat("•", len(m.currentInput))))
		s.WriteString("\n\nPress Enter\n")

	case stepLoggingIn:
		s.WriteString(m.message + "\n")

	case stepSelectingDevice:
		if m.message != "" {
			s.WriteString(m.message + "\n\n")
		}
		if len(m.devices) == 0 {
			s.WriteString("No devices registered for this account.\n\n(Press q to quit)\n")
			break
		}
		s.WriteString(promptStyle.Render("Select a device:") + "\n\n")
		for i, d := range m.devices {
			cursor := " "
			style := normalStyle
			if m.cursor == i {
				cursor = ">"
				style = selectedStyle
			}
			status := mutedStyle.Render("offline")
			if d.IsOnline {
				status = successStyle.Render("online")
			}
			s.WriteString(fmt.Sprintf("%s %s %s\n", cursor, style.Render(d.Name), status))
		}
		s.WriteString("\nUse ↑/↓, Enter to open, q to quit\n")

	case stepDashboard:
		s.WriteString(m.dashboardView())
	}

	return s.String()
}

func (m model) dashboardView() string {
	var s strings.Builder
	s.WriteString(promptStyle.Render(m.selected.Name) + mutedStyle.Render(" "+m.selected.MacAddress) + "\n\n")

	if m.loading && m.latest == nil {
		s.WriteString("Loading...\n")
	} else if m.latest == nil {
		s.WriteString(mutedStyle.Render("No readings yet") + "\n")
	} else {
		s.WriteString(fmt.Sprintf("Temperature  %s\n", formatFloat(m.latest.Temperature, "°C")))
		s.WriteString(fmt.Sprintf("Humidity     %s\n", formatFloat(m.latest.Humidity, "%")))
		aq := "-"
		if m.latest.AirQuality != nil {
			style, ok := aqiStyles[m.latest.AirQualityStatus]
			if !ok {
				style = normalStyle
			}
			aq = fmt.Sprintf("%d %s", *m.latest.AirQuality, style.Render(m.latest.AirQualityStatus))
		}
		s.WriteString(fmt.Sprintf("Air quality  %s\n", aq))
		s.WriteString(mutedStyle.Render("updated "+m.latest.Timestamp.Local().Format("15:04:05")) + "\n")
	}

	s.WriteString("\n" + promptStyle.Render(fmt.Sprintf("Unread alerts (%d)", len(m.alerts))) + "\n")
	for _, a := range m.alerts {
		style, ok := severityStyles[a.Severity]
		if !ok {
			style = normalStyle
		}
		s.WriteString(fmt.Sprintf("  %s %s\n", style.Render("["+a.Severity+"]"), a.Message))
	}

	if len(m.forecast) > 0 {
		s.WriteString("\n" + promptStyle.Render("Air quality forecast") + "\n")
		for _, p := range m.forecast {
			s.WriteString(fmt.Sprintf("  %s  %6.2f  %s\n", p.PredictionFor.Local().Format("15:04"), p.PredictedValue, mutedStyle.Render(fmt.Sprintf("%.0f%%", p.Confidence*100))))
		}
	}

	if m.message != "" {
		s.WriteString("\n" + m.message + "\n")
	}
	s.WriteString("\nr refresh • a acknowledge • g forecast • b back • q quit\n")
	return s.String()
}

func formatFloat(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f%s", *v, unit)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
