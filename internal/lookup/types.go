package lookup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Place is the region an IP geolocates to.
type Place struct {
	Province string `json:"province"`
	City     string `json:"city"`
}

// String joins province and city the way the card prints them.
func (p Place) String() string { return p.Province + p.City }

type geoResponse struct {
	Data *Place `json:"data"`
}

// Weather is the current-conditions block of the weather API.
type Weather struct {
	Rain        Value `json:"now_rain"`
	Humidity    Value `json:"now_humidity"`
	Temperature Value `json:"now_temperature"`
	FeelsLike   Value `json:"now_feelst"`
	WindDir     Value `json:"now_wind_direction"`
	Pressure    Value `json:"now_airpressure"`
	Comfort     Value `json:"now_icomfort"`
}

// Summary formats the conditions as four lines. The card renders one text
// row per line, so the field order and line breaks are fixed.
func (w Weather) Summary() string {
	return fmt.Sprintf("Rain: %s Humidity: %s\nTemp: %s Feels like: %s\nWind: %s Pressure: %s\nComfort: %s",
		w.Rain, w.Humidity, w.Temperature, w.FeelsLike, w.WindDir, w.Pressure, w.Comfort)
}

type weatherResponse struct {
	Data *Weather `json:"data"`
}

// Value is an API field that may arrive as a JSON string or number.
// Line breaks are flattened to spaces so Summary keeps its four lines.
type Value string

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// UnmarshalJSON accepts a string, a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(lineBreaks.Replace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*v = Value(n.String())
	return nil
}

// Result is what the card shows for location and weather.
type Result struct {
	Location string
	Weather  string
}
