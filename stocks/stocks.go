// Package stocks fetches a fixed basket of TWSE/OTC quotes. Like the
// weather adapter it degrades to placeholder quotes instead of failing.
package stocks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"
)

const quoteURL = "https://mis.twse.com.tw/stock/api/getStockInfo.jsp?ex_ch=tse_0050.tw|tse_2330.tw|tse_2317.tw|tse_1216.tw|otc_6547.tw|otc_6180.tw"

type Quote struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Change        string `json:"change"`
	ChangePercent string `json:"changePercent"`
	Volume        string `json:"volume"`
	PriceChange   string `json:"priceChange"`
}

type Client struct {
	HTTP *http.Client
	URL  string
}

func NewClient() *Client {
	return &Client{
		HTTP: &http.Client{Timeout: 10 * time.Second},
		URL:  quoteURL,
	}
}

type quotePayload struct {
	MsgArray []struct {
		C string `json:"c"` // ticker id
		N string `json:"n"` // name
		Z string `json:"z"` // last trade price
		O string `json:"o"` // open
		Y string `json:"y"` // previous close
		V string `json:"v"` // volume
	} `json:"msgArray"`
}

// Fetch returns the live basket, or the placeholder basket when the
// endpoint is unreachable or the payload is malformed.
func (c *Client) Fetch() []Quote {
	req, err := http.NewRequest(http.MethodGet, c.URL, nil)
	if err != nil {
		return fallbackQuotes()
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	res, err := c.HTTP.Do(req)
	if err != nil {
		slog.Warn("stock fetch failed", "error", err)
		return fallbackQuotes()
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		slog.Warn("stock fetch unexpected status", "status", res.StatusCode)
		return fallbackQuotes()
	}

	var payload quotePayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		slog.Warn("stock payload decode failed", "error", err)
		return fallbackQuotes()
	}
	if len(payload.MsgArray) == 0 {
		return fallbackQuotes()
	}

	quotes := make([]Quote, 0, len(payload.MsgArray))
	for _, stock := range payload.MsgArray {
		current := firstPrice(stock.Z, stock.O, stock.Y)
		previous := stock.Y
		if previous == "" {
			previous = "--"
		}

		changePercent, priceChange := computeChange(current, previous)

		price := current
		if price == "-" {
			price = previous
		}
		volume := stock.V
		if volume == "" {
			volume = "--"
		}

		quotes = append(quotes, Quote{
			ID:            stock.C,
			Name:          stock.N,
			Price:         price,
			Change:        previous,
			ChangePercent: changePercent,
			Volume:        volume,
			PriceChange:   priceChange,
		})
	}
	return quotes
}

func firstPrice(candidates ...string) string {
	for _, v := range candidates {
		if v != "" {
			return v
		}
	}
	return "--"
}

// computeChange derives percent and absolute change versus the previous
// close. Moves below 0.001% or 0.01 currency units count as flat.
func computeChange(current, previous string) (changePercent, priceChange string) {
	changePercent, priceChange = "--", "--"
	if current == "--" || previous == "--" || current == "-" || previous == "-" {
		return changePercent, priceChange
	}
	cur, errC := strconv.ParseFloat(current, 64)
	prev, errP := strconv.ParseFloat(previous, 64)
	if errC != nil || errP != nil || prev <= 0 {
		return changePercent, priceChange
	}

	change := (cur - prev) / prev * 100
	if math.Abs(change) < 0.001 {
		changePercent = "0.00"
	} else {
		changePercent = fmt.Sprintf("%.2f", change)
	}

	diff := cur - prev
	if math.Abs(diff) < 0.01 {
		priceChange = "0.00"
	} else {
		priceChange = fmt.Sprintf("%.2f", diff)
	}
	return changePercent, priceChange
}

func fallbackQuotes() []Quote {
	placeholder := func(id, name string) Quote {
		return Quote{
			ID: id, Name: name,
			Price: "--", Change: "--", ChangePercent: "--", Volume: "--", PriceChange: "--",
		}
	}
	return []Quote{
		placeholder("0050", "元大台灣50"),
		placeholder("2330", "台積電"),
		placeholder("2317", "鴻海"),
		placeholder("1216", "統一"),
		placeholder("6547", "高端疫苗"),
		placeholder("6180", "橘子"),
	}
}
