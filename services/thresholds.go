package services

import (
	"fmt"

	"ecotracker/entities"
)

// Fixed alerting bands. Comparisons are strict on every bound.
const (
	TemperatureLow      = 18.0
	TemperatureHigh     = 28.0
	TemperatureCritical = 35.0

	HumidityLow      = 40.0
	HumidityHigh     = 80.0
	HumidityCritical = 90.0

	AirQualityGood      = 100
	AirQualityModerate  = 150
	AirQualityUnhealthy = 200
)

// EvaluateThresholds returns at most one alert per metric present in r.
// Critical wins over high, and high over low. Returned alerts are unread and
// not yet persisted.
func EvaluateThresholds(deviceID string, r ReadingInput) []entities.Alert {
	var alerts []entities.Alert

	if r.Temperature != nil {
		if a, ok := temperatureAlert(deviceID, *r.Temperature); ok {
			alerts = append(alerts, a)
		}
	}
	if r.Humidity != nil {
		if a, ok := humidityAlert(deviceID, *r.Humidity); ok {
			alerts = append(alerts, a)
		}
	}
	if r.AirQuality != nil {
		if a, ok := airQualityAlert(deviceID, *r.AirQuality); ok {
			alerts = append(alerts, a)
		}
	}

	return alerts
}

func temperatureAlert(deviceID string, t float64) (entities.Alert, bool) {
	a := entities.Alert{DeviceID: deviceID, Type: entities.MetricTemperature, Value: t}
	switch {
	case t > TemperatureCritical:
		a.Severity = entities.SeverityCritical
		a.Title = "Critical Temperature Alert"
		a.Threshold = TemperatureCritical
		a.Message = fmt.Sprintf("Temperature reached %s°C, exceeding critical threshold of %s°C", num(t), num(TemperatureCritical))
	case t > TemperatureHigh:
		a.Severity = entities.SeverityWarning
		a.Title = "High Temperature Alert"
		a.Threshold = TemperatureHigh
		a.Message = fmt.Sprintf("Temperature reached %s°C, above maximum threshold of %s°C", num(t), num(TemperatureHigh))
	case t < TemperatureLow:
		a.Severity = entities.SeverityWarning
		a.Title = "Low Temperature Alert"
		a.Threshold = TemperatureLow
		a.Message = fmt.Sprintf("Temperature dropped to %s°C, below minimum threshold of %s°C", num(t), num(TemperatureLow))
	default:
		return entities.Alert{}, false
	}
	return a, true
}

func humidityAlert(deviceID string, h float64) (entities.Alert, bool) {
	a := entities.Alert{DeviceID: deviceID, Type: entities.MetricHumidity, Value: h}
	switch {
	case h > HumidityCritical:
		a.Severity = entities.SeverityCritical
		a.Title = "Critical Humidity Alert"
		a.Threshold = HumidityCritical
		a.Message = fmt.Sprintf("Humidity reached %s%%, exceeding critical threshold of %s%%", num(h), num(HumidityCritical))
	case h > HumidityHigh:
		a.Severity = entities.SeverityWarning
		a.Title = "High Humidity Alert"
		a.Threshold = HumidityHigh
		a.Message = fmt.Sprintf("Humidity reached %s%%, above maximum threshold of %s%%", num(h), num(HumidityHigh))
	case h < HumidityLow:
		a.Severity = entities.SeverityInfo
		a.Title = "Low Humidity Alert"
		a.Threshold = HumidityLow
		a.Message = fmt.Sprintf("Humidity dropped to %s%%, below minimum threshold of %s%%", num(h), num(HumidityLow))
	default:
		return entities.Alert{}, false
	}
	return a, true
}

func airQualityAlert(deviceID string, aqi int) (entities.Alert, bool) {
	a := entities.Alert{DeviceID: deviceID, Type: entities.MetricAirQuality, Value: float64(aqi)}
	switch {
	case aqi > AirQualityUnhealthy:
		a.Severity = entities.SeverityCritical
		a.Title = "Unhealthy Air Quality"
		a.Threshold = AirQualityUnhealthy
		a.Message = fmt.Sprintf("Air quality index reached %d, indicating unhealthy air conditions", aqi)
	case aqi > AirQualityModerate:
		a.Severity = entities.SeverityWarning
		a.Title = "Moderate Air Quality"
		a.Threshold = AirQualityModerate
		a.Message = fmt.Sprintf("Air quality index is %d, indicating moderate air quality", aqi)
	default:
		return entities.Alert{}, false
	}
	return a, true
}

// AirQualityStatus maps an AQI to the label shown on the dashboard.
func AirQualityStatus(aqi int) string {
	switch {
	case aqi <= AirQualityGood:
		return "Good"
	case aqi <= AirQualityModerate:
		return "Moderate"
	case aqi <= AirQualityUnhealthy:
		return "Unhealthy for Sensitive Groups"
	default:
		return "Unhealthy"
	}
}

func AirQualityColor(aqi int) string {
	switch {
	case aqi <= AirQualityGood:
		return "green"
	case aqi <= AirQualityModerate:
		return "yellow"
	case aqi <= AirQualityUnhealthy:
		return "orange"
	default:
		return "red"
	}
}

// num prints without trailing zeros, so 36 renders as "36" and 28.5 as "28.5".
func num(v float64) string {
	return fmt.Sprintf("%g", v)
}
