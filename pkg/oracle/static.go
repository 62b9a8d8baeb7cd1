package oracle

import (
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// tokenEntry is one row of the YAML price table.
type tokenEntry struct {
	Symbol   string `yaml:"symbol"`
	Decimals int32  `yaml:"decimals" default:"18"`
	PriceUSD string `yaml:"price_usd"`
}

type tokenFile struct {
	Tokens map[string]tokenEntry `yaml:"tokens"`
}

// StaticOracle serves prices from an operator-maintained YAML table. Prices
// are loaded once at startup.
type StaticOracle struct {
	quotes map[common.Address]*Quote
}

// NewStaticOracle loads the token price table from path
func NewStaticOracle(path string, logger *zap.Logger) (*StaticOracle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var file tokenFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}

	quotes := make(map[common.Address]*Quote, len(file.Tokens))
	for addr, entry := range file.Tokens {
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid token address %q in token file", addr)
		}
		if err := defaults.Set(&entry); err != nil {
			return nil, fmt.Errorf("failed to apply token defaults: %w", err)
		}

		price, err := decimal.NewFromString(entry.PriceUSD)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q for token %s: %w", entry.PriceUSD, addr, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("negative price for token %s", addr)
		}

		quotes[common.HexToAddress(addr)] = &Quote{
			Symbol:   strings.ToUpper(entry.Symbol),
			Decimals: entry.Decimals,
			PriceUSD: price,
			Source:   "static",
		}
	}

	logger.Info("Loaded token price table",
		zap.String("path", path),
		zap.Int("tokens", len(quotes)))

	return &StaticOracle{quotes: quotes}, nil
}

// Quote implements PriceOracle
func (o *StaticOracle) Quote(token common.Address) (*Quote, error) {
	q, ok := o.quotes[token]
	if !ok {
		return nil, ErrUnsupportedToken
	}
	return q, nil
}
