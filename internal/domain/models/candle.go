package models

import (
	"fmt"
	"time"
)

// Candle is one persisted 1-minute OHLCV record. (Symbol, OpenTime) is its
// identity; OpenTime is minute-aligned.
type Candle struct {
	Symbol              string    `json:"symbol"`
	OpenTime            time.Time `json:"open_time"`
	Open                float64   `json:"open_price"`
	High                float64   `json:"high_price"`
	Low                 float64   `json:"low_price"`
	Close               float64   `json:"close_price"`
	BaseVolume          float64   `json:"base_volume"`
	CloseTime           time.Time `json:"close_time"`
	QuoteAssetVolume    float64   `json:"quote_asset_volume"`
	NumTrades           int64     `json:"num_trades"`
	TakerBuyBaseVolume  float64   `json:"taker_buy_base_volume"`
	TakerBuyQuoteVolume float64   `json:"taker_buy_quote_volume"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

// Merge reconciles a re-ingested candle with the stored one for the same
// (symbol, open_time): close and base volume are replaced by the incoming
// snapshot, the high/low range only widens, everything else keeps its
// first-write value. The conflict clause in the Postgres store mirrors
// this rule exactly.
func Merge(existing, incoming Candle) Candle {
	out := existing
	out.Close = incoming.Close
	if incoming.High > out.High {
		out.High = incoming.High
	}
	if incoming.Low < out.Low {
		out.Low = incoming.Low
	}
	out.BaseVolume = incoming.BaseVolume
	out.UpdatedAt = time.Now()
	return out
}

// Candlestick is the transport projection returned by the read API.
type Candlestick struct {
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// ToCandlestick projects the candle for a response. The time label is the
// bucket open time rendered in the server's local zone as HH:MM.
func (c Candle) ToCandlestick() Candlestick {
	local := c.OpenTime.Local()
	return Candlestick{
		Time:   fmt.Sprintf("%02d:%02d", local.Hour(), local.Minute()),
		Open:   c.Open,
		High:   c.High,
		Low:    c.Low,
		Close:  c.Close,
		Volume: c.BaseVolume,
	}
}
