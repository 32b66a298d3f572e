package services

import (
	"errors"
	"testing"

	"ecotracker/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, field, verr.Field)
	assert.NotEmpty(t, verr.Reason)
}

func TestValidateReadingAcceptsFullPayload(t *testing.T) {
	in, err := ValidateReading([]byte(`{"temperature":22.5,"humidity":45,"airQuality":80,"timestamp":1700000000000}`))
	require.NoError(t, err)

	require.NotNil(t, in.Temperature)
	require.NotNil(t, in.Humidity)
	require.NotNil(t, in.AirQuality)
	assert.Equal(t, 22.5, *in.Temperature)
	assert.Equal(t, 45.0, *in.Humidity)
	assert.Equal(t, 80, *in.AirQuality)
}

func TestValidateReadingKeepsAbsentFieldsAbsent(t *testing.T) {
	in, err := ValidateReading([]byte(`{"humidity":0}`))
	require.NoError(t, err)

	assert.Nil(t, in.Temperature)
	assert.Nil(t, in.AirQuality)
	require.NotNil(t, in.Humidity)
	assert.Equal(t, 0.0, *in.Humidity)

	in, err = ValidateReading([]byte(`{}`))
	require.NoError(t, err)
	assert.Nil(t, in.Temperature)
	assert.Nil(t, in.Humidity)
	assert.Nil(t, in.AirQuality)
}

func TestValidateReadingBounds(t *testing.T) {
	cases := []struct {
		body  string
		field string
	}{
		{`{"temperature":95}`, "temperature"},
		{`{"temperature":-40.5}`, "temperature"},
		{`{"humidity":100.1}`, "humidity"},
		{`{"humidity":-1}`, "humidity"},
		{`{"airQuality":1001}`, "airQuality"},
		{`{"airQuality":-3}`, "airQuality"},
	}
	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			_, err := ValidateReading([]byte(tc.body))
			requireValidationField(t, err, tc.field)
		})
	}
}

func TestValidateReadingInclusiveLimits(t *testing.T) {
	_, err := ValidateReading([]byte(`{"temperature":-40,"humidity":100,"airQuality":1000}`))
	assert.NoError(t, err)

	_, err = ValidateReading([]byte(`{"temperature":80,"humidity":0,"airQuality":0}`))
	assert.NoError(t, err)
}

func TestValidateReadingWrongTypes(t *testing.T) {
	_, err := ValidateReading([]byte(`{"temperature":"hot"}`))
	requireValidationField(t, err, "temperature")

	_, err = ValidateReading([]byte(`{"airQuality":12.5}`))
	requireValidationField(t, err, "airQuality")

	_, err = ValidateReading([]byte(`{"humidity":true}`))
	requireValidationField(t, err, "humidity")
}

func TestValidateReadingMalformedBody(t *testing.T) {
	for _, body := range []string{``, `[]`, `{"temperature":`, `42`} {
		_, err := ValidateReading([]byte(body))
		requireValidationField(t, err, "body")
	}
}
