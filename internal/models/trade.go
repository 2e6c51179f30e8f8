package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction is the side of an executed trade.
type Direction string

// Trade directions.
const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Trade is one executed order recorded by the ledger.
type Trade struct {
	ID         uuid.UUID       `json:"id"`
	Time       time.Time       `json:"time"`
	Figi       string          `json:"figi"`
	Direction  Direction       `json:"direction"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	Commission decimal.Decimal `json:"commission"`
	Currency   string          `json:"currency"`
}

// Position is the current holding in one instrument. AveragePrice is the
// volume-weighted average entry price of the open quantity.
type Position struct {
	Figi         string          `json:"figi"`
	Currency     string          `json:"currency"`
	Quantity     int64           `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
}

// CashInjection is one scheduled contribution credited to the account.
type CashInjection struct {
	Time     time.Time       `json:"time"`
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}
