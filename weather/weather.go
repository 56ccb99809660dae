// Package weather reads the current observation of a fixed CWA station.
// The station call is best effort: any failure yields a canned reading,
// never an error.
package weather

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const stationURL = "https://opendata.cwa.gov.tw/api/v1/rest/datastore/O-A0001-001?Authorization=CWA-2972A4CE-3596-4E17-BA22-2E40E059301C&format=JSON&StationId=C0AJ80"

var dayNames = [...]string{"日", "一", "二", "三", "四", "五", "六"}

type Reading struct {
	Temperature float64 `json:"temperature"`
	Weather     string  `json:"weather"`
	DayOfWeek   string  `json:"dayOfWeek"`
}

type Client struct {
	HTTP *http.Client
	URL  string
	Now  func() time.Time
}

func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{Timeout: 10 * time.Second},
		URL:  stationURL,
		Now:  time.Now,
	}
}

type stationPayload struct {
	Records struct {
		Station []struct {
			WeatherElement struct {
				Weather        string `json:"Weather"`
				AirTemperature string `json:"AirTemperature"`
				DailyExtreme   struct {
					DailyHigh struct {
						TemperatureInfo struct {
							AirTemperature string `json:"AirTemperature"`
						} `json:"TemperatureInfo"`
					} `json:"DailyHigh"`
				} `json:"DailyExtreme"`
			} `json:"WeatherElement"`
		} `json:"Station"`
	} `json:"records"`
}

// Fetch returns the live station reading, or the fallback reading when
// the request, status or payload is bad.
func (c *Client) Fetch() Reading {
	req, err := http.NewRequest(http.MethodGet, c.URL, nil)
	if err != nil {
		return c.fallback()
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	res, err := c.HTTP.Do(req)
	if err != nil {
		slog.Warn("weather fetch failed", "error", err)
		return c.fallback()
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		slog.Warn("weather fetch unexpected status", "status", res.StatusCode)
		return c.fallback()
	}

	var payload stationPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		slog.Warn("weather payload decode failed", "error", err)
		return c.fallback()
	}
	if len(payload.Records.Station) == 0 {
		slog.Warn("weather payload has no station data")
		return c.fallback()
	}

	reading := c.fallback()
	element := payload.Records.Station[0].WeatherElement

	// The station reports -99 when the temperature sensor has no
	// value; fall back to the daily high in that case.
	if t, ok := parseTemperature(element.AirTemperature); ok {
		reading.Temperature = t
	} else if t, ok := parseTemperature(element.DailyExtreme.DailyHigh.TemperatureInfo.AirTemperature); ok {
		reading.Temperature = t
	}
	if element.Weather != "" {
		reading.Weather = element.Weather
	}
	return reading
}

func (c *Client) fallback() Reading {
	return Reading{
		Temperature: 25,
		Weather:     "晴時多雲",
		DayOfWeek:   dayNames[c.Now().Weekday()],
	}
}

func parseTemperature(raw string) (float64, bool) {
	if raw == "" || raw == "-99" {
		return 0, false
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil || t <= -90 {
		return 0, false
	}
	return t, true
}
