package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// StatusOK is the status the forecast API reports on success.
const StatusOK = "200"

// UnknownError is reported when a failed response carries no message.
const UnknownError = "Unknown error"

// Main holds the temperatures of a sample
type Main struct {
	Temp    float64 `json:"temp"`
	TempMax float64 `json:"temp_max"`
	TempMin float64 `json:"temp_min"`
}

// Wind holds the wind conditions of a sample
type Wind struct {
	Speed float64 `json:"speed"`
}

// Sample is a single 3-hour forecast point
type Sample struct {
	Dt   int64 `json:"dt"` // Unix timestamp
	Main Main  `json:"main"`
	Wind Wind  `json:"wind"`
}

// Time returns the sample timestamp in the given location
func (s Sample) Time(loc *time.Location) time.Time {
	return time.Unix(s.Dt, 0).In(loc)
}

// ForecastResponse is the raw payload of the 5 day / 3 hour forecast endpoint
type ForecastResponse struct {
	Cod     FlexString `json:"cod"`
	Message FlexString `json:"message"`
	Cnt     int        `json:"cnt"`
	List    []Sample   `json:"list"`
	City    struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"` // shift from UTC in seconds
	} `json:"city"`
}

// OK reports whether the API flagged the response as successful
func (r ForecastResponse) OK() bool {
	return string(r.Cod) == StatusOK
}

// ErrorMessage returns the API supplied message, or UnknownError when absent
func (r ForecastResponse) ErrorMessage() string {
	if r.Message == "" {
		return UnknownError
	}
	return string(r.Message)
}

// FlexString decodes a JSON string or number into its text form.
// The API sends "cod" as "200" on success but as a bare number (401, 404) on
// some errors, and "message" is 0 on success.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}
