package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, 29, d.Day())
	assert.Equal(t, time.UTC, d.Location())

	for _, invalid := range []string{"2023-02-29", "2024/01/01", "01-02-2024", ""} {
		_, err := ParseDate(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	d := DateOf(time.Date(2024, 6, 30, 23, 30, 0, 0, loc))

	assert.Equal(t, "2024-06-30", d.String())
	assert.Equal(t, time.UTC, d.Location())
}

func TestDate_Comparisons(t *testing.T) {
	jan := NewDate(2024, 1, 1)
	feb := NewDate(2024, 2, 1)

	assert.True(t, jan.Before(feb))
	assert.True(t, feb.After(jan))
	assert.True(t, jan.Equal(NewDate(2024, 1, 1)))
	assert.True(t, jan.Between(jan, feb))
	assert.True(t, feb.Between(jan, feb))
	assert.False(t, NewDate(2024, 2, 2).Between(jan, feb))
}

func TestDate_AddMonths(t *testing.T) {
	tests := []struct {
		from     Date
		months   int
		expected string
	}{
		{NewDate(2024, 1, 31), 1, "2024-02-29"},
		{NewDate(2024, 3, 31), 1, "2024-04-30"},
		{NewDate(2024, 11, 15), 2, "2025-01-15"},
		{NewDate(2024, 3, 31), -1, "2024-02-29"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.from.AddMonths(tt.months).String())
	}

	assert.Equal(t, "2025-02-28", NewDate(2024, 2, 29).AddYears(1).String())
	assert.Equal(t, "2028-02-29", NewDate(2024, 2, 29).AddYears(4).String())
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Date    Date  `json:"date"`
		EndDate *Date `json:"endDate"`
	}

	data, err := json.Marshal(payload{Date: NewDate(2024, 7, 4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-07-04","endDate":null}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-07-04","endDate":"2024-12-31"}`), &decoded))
	assert.Equal(t, "2024-07-04", decoded.Date.String())
	require.NotNil(t, decoded.EndDate)
	assert.Equal(t, "2024-12-31", decoded.EndDate.String())

	require.NoError(t, json.Unmarshal([]byte(`{"date":""}`), &decoded))
	assert.True(t, decoded.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"July 4"}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"date":20240704}`), &decoded))
}

func TestDate_ValueAndScan(t *testing.T) {
	value, err := NewDate(2024, 7, 4).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-07-04", value)

	value, err = Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	tests := []struct {
		name  string
		input interface{}
	}{
		{"string", "2024-07-04"},
		{"bytes", []byte("2024-07-04")},
		{"timestamp string", "2024-07-04 00:00:00"},
		{"rfc3339", "2024-07-04T00:00:00Z"},
		{"time", time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.input))
			assert.Equal(t, "2024-07-04", d.String())
		})
	}

	var d Date
	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("not a date"))
}

func TestDate_UnmarshalText(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalText([]byte("2024-01-09")))
	assert.Equal(t, "2024-01-09", d.String())
	assert.Error(t, d.UnmarshalText([]byte("2024-13-01")))
}
