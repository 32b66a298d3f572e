package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type device struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MacAddress string `json:"macAddress"`
	IsOnline   bool   `json:"isOnline"`
}

type reading struct {
	Temperature      *float64  `json:"temperature"`
	Humidity         *float64  `json:"humidity"`
	AirQuality       *int      `json:"airQuality"`
	Timestamp        time.Time `json:"timestamp"`
	AirQualityStatus string    `json:"airQualityStatus"`
}

type alert struct {
	ID       string `json:"id"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

type prediction struct {
	PredictedValue float64   `json:"predictedValue"`
	Confidence     float64   `json:"confidence"`
	PredictionFor  time.Time `json:"predictionFor"`
}

// apiClient talks to the EcoTracker REST API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("server not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		return fmt.Errorf("%s", apiErr.Error)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) login(email, password string) error {
	var result struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, &result)
	if err != nil {
		return err
	}
	if result.Token == "" {
		return fmt.Errorf("server returned no token")
	}
	c.token = result.Token
	return nil
}

func (c *apiClient) devices() ([]device, error) {
	var result struct {
		Data []device `json:"data"`
	}
	err := c.do(http.MethodGet, "/api/v1/devices", nil, &result)
	return result.Data, err
}

func (c *apiClient) latest(deviceID string) (*reading, error) {
	var result struct {
		Data *reading `json:"data"`
	}
	err := c.do(http.MethodGet, "/api/v1/sensors/"+deviceID+"/latest", nil, &result)
	return result.Data, err
}

func (c *apiClient) alerts(deviceID string) ([]alert, error) {
	var result struct {
		Data []alert `json:"data"`
	}
	err := c.do(http.MethodGet, "/api/v1/alerts/"+deviceID, nil, &result)
	return result.Data, err
}

func (c *apiClient) ackAlert(alertID string) error {
	return c.do(http.MethodPatch, "/api/v1/alerts/"+alertID+"/read", nil, nil)
}

func (c *apiClient) generate(deviceID, predictionType string) ([]prediction, error) {
	var result struct {
		Data []prediction `json:"data"`
	}
	err := c.do(http.MethodPost, "/api/v1/predictions/"+deviceID+"/generate", map[string]string{"type": predictionType}, &result)
	return result.Data, err
}
