package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var acked []string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "supersecret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid email or password"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":"u-1"}}`))
	})
	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			h(w, r)
		}
	}
	mux.HandleFunc("/api/v1/devices", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"d-1","name":"office","isOnline":true}],"count":1}`))
	}))
	mux.HandleFunc("/api/v1/sensors/d-1/latest", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"temperature":22.5,"airQuality":160,"airQualityStatus":"Unhealthy for Sensitive Groups","timestamp":"2026-10-14T10:00:00Z"}}`))
	}))
	mux.HandleFunc("/api/v1/alerts/d-1", authed(func(w http.ResponseWriter, r *http.Request) {
		if len(acked) > 0 {
			_, _ = w.Write([]byte(`{"data":[],"count":0}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"a-1","severity":"warning","title":"Moderate Air Quality","message":"Air quality index is 160"}],"count":1}`))
	}))
	mux.HandleFunc("/api/v1/alerts/a-1/read", authed(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		acked = append(acked, "a-1")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	mux.HandleFunc("/api/v1/predictions/d-1/generate", authed(func(w http.ResponseWriter, r *http.Request) {
		base := time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC)
		preds := make([]map[string]interface{}, 24)
		for i := range preds {
			preds[i] = map[string]interface{}{"predictedValue": 100 + i, "confidence": 0.8, "predictionFor": base.Add(time.Duration(i) * time.Hour)}
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": preds, "count": len(preds)})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &acked
}

// send feeds msg to m and runs the resulting command chain to completion.
func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(model)
	for cmd != nil {
		out := cmd()
		if _, quit := out.(tea.QuitMsg); quit {
			break
		}
		next, cmd = m.Update(out)
		m = next.(model)
	}
	return m
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func clearInput(t *testing.T, m model) model {
	for len(m.currentInput) > 0 {
		m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	return m
}

func loggedIn(t *testing.T, url string) model {
	t.Helper()
	m := initialModel()
	assert.Equal(t, defaultServerURL, m.currentInput)

	m = typeText(t, clearInput(t, m), url)
	m = typeText(t, m, "ada@example.com")
	return typeText(t, m, "supersecret")
}

func TestLoginAndDeviceList(t *testing.T) {
	srv, _ := fakeAPI(t)
	m := loggedIn(t, srv.URL)

	require.Equal(t, stepSelectingDevice, m.step)
	require.Len(t, m.devices, 1)
	assert.Contains(t, m.View(), "office")
}

func TestLoginFailureReturnsToEmail(t *testing.T) {
	srv, _ := fakeAPI(t)
	m := initialModel()
	m = typeText(t, clearInput(t, m), srv.URL)
	m = typeText(t, m, "ada@example.com")
	m = typeText(t, m, "wrong")

	assert.Equal(t, stepEnteringEmail, m.step)
	assert.Contains(t, m.message, "invalid email or password")
}

func TestDashboardActions(t *testing.T) {
	srv, acked := fakeAPI(t)
	m := loggedIn(t, srv.URL)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stepDashboard, m.step)
	require.NotNil(t, m.latest)
	assert.Equal(t, 160, *m.latest.AirQuality)
	require.Len(t, m.alerts, 1)

	view := m.View()
	assert.Contains(t, view, "22.5°C")
	assert.Contains(t, view, "Unhealthy for Sensitive Groups")
	assert.Contains(t, view, "Air quality index is 160")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	assert.Equal(t, []string{"a-1"}, *acked)
	assert.Empty(t, m.alerts)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")})
	require.Len(t, m.forecast, forecastPreview)
	assert.Equal(t, 100.0, m.forecast[0].PredictedValue)
	assert.True(t, strings.Contains(m.View(), "Air quality forecast"))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestQWhileTypingIsInput(t *testing.T) {
	m := initialModel()
	m = send(t, clearInput(t, m), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.False(t, m.quitting)
	assert.Equal(t, "q", m.currentInput)
}
