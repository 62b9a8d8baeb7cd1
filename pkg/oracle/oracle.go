package oracle

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ErrUnsupportedToken is returned when a token is not in the price table.
var ErrUnsupportedToken = errors.New("unsupported payment token")

// Quote is one token price point.
type Quote struct {
	Symbol   string
	Decimals int32
	PriceUSD decimal.Decimal
	Source   string
}

// PriceOracle resolves a payment token to its USD price.
type PriceOracle interface {
	// Quote returns the price point for the token, or ErrUnsupportedToken.
	Quote(token common.Address) (*Quote, error)
}
