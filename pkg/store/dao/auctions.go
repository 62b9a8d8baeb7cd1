package dao

import "time"

// AuctionDao is a data access object that maps directly to the 'auctions' table in PostgreSQL.
type AuctionDao struct {
	tableName       struct{}          `bun:"table:auctions"` // nolint
	AuctionID       int64             `json:"auction_id" bun:",pk"`
	NFTID           string            `json:"nft_id" bun:"nft_id,notnull,type:varchar(128)"`
	StartTime       time.Time         `json:"start_time" bun:",notnull"`
	EndTime         time.Time         `json:"end_time" bun:",notnull"`
	DurationSec     int64             `json:"duration_sec" bun:",notnull,use_zero"`
	ExtensionSec    int64             `json:"extension_sec" bun:",notnull,use_zero"`
	TriggerSec      int64             `json:"trigger_sec" bun:",notnull,use_zero"`
	AllowedTokens   []string          `json:"allowed_tokens" bun:"allowed_tokens,type:jsonb"`
	MinPrices       map[string]string `json:"min_prices" bun:"min_prices,type:jsonb"`
	Status          string            `json:"status" bun:",notnull,type:varchar(20)"`
	Winner          *string           `json:"winner,omitempty" bun:"winner,type:varchar(42)"`
	WinningToken    *string           `json:"winning_token,omitempty" bun:"winning_token,type:varchar(42)"`
	WinningAmount   *string           `json:"winning_amount,omitempty" bun:"winning_amount,type:numeric(78,0)"`
	WinningUSDValue *string           `json:"winning_usd_value,omitempty" bun:"winning_usd_value,type:numeric(78,0)"`
	CreatedAt       time.Time         `json:"created_at" bun:",notnull,nullzero,default:current_timestamp"`
	UpdatedAt       time.Time         `json:"updated_at" bun:",notnull,nullzero,default:current_timestamp"`
}
