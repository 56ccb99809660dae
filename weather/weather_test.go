package weather

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// Wednesday, so the weekday token is 三.
var testNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func testClient(url string) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: time.Second},
		URL:  url,
		Now:  func() time.Time { return testNow },
	}
}

func TestFetchParsesStationReading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"records": {
				"Station": [{
					"WeatherElement": {
						"Weather": "多雲",
						"AirTemperature": "23.5"
					}
				}]
			}
		}`))
	}))
	defer server.Close()

	got := testClient(server.URL).Fetch()
	if got.Temperature != 23.5 {
		t.Errorf("temperature = %v, want 23.5", got.Temperature)
	}
	if got.Weather != "多雲" {
		t.Errorf("weather = %q, want 多雲", got.Weather)
	}
	if got.DayOfWeek != "三" {
		t.Errorf("dayOfWeek = %q, want 三", got.DayOfWeek)
	}
}

func TestFetchUsesDailyHighWhenSensorInvalid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"records": {
				"Station": [{
					"WeatherElement": {
						"Weather": "晴",
						"AirTemperature": "-99",
						"DailyExtreme": {
							"DailyHigh": {
								"TemperatureInfo": {"AirTemperature": "31.2"}
							}
						}
					}
				}]
			}
		}`))
	}))
	defer server.Close()

	got := testClient(server.URL).Fetch()
	if got.Temperature != 31.2 {
		t.Errorf("temperature = %v, want daily high 31.2", got.Temperature)
	}
}

func TestFetchFallsBackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed payload", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"records": oops`))
		}},
		{"no station data", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"records": {"Station": []}}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			got := testClient(server.URL).Fetch()
			want := Reading{Temperature: 25, Weather: "晴時多雲", DayOfWeek: "三"}
			if got != want {
				t.Errorf("fallback = %+v, want %+v", got, want)
			}
		})
	}
}

func TestFetchFallsBackWhenUnreachable(t *testing.T) {
	got := testClient("http://127.0.0.1:1").Fetch()
	if got.Temperature != 25 || got.Weather != "晴時多雲" {
		t.Errorf("fallback = %+v", got)
	}
}
