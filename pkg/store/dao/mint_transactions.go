package dao

import "time"

// MintTransactionDao is a data access object that maps directly to the 'mint_transactions' table in PostgreSQL.
type MintTransactionDao struct {
	tableName   struct{}   `bun:"table:mint_transactions"` // nolint
	ID          string     `json:"id" bun:",pk,type:varchar(36)"`
	NFTID       string     `json:"nft_id" bun:"nft_id,notnull,type:varchar(128)"`
	AuctionID   int64      `json:"auction_id" bun:",notnull"`
	Recipient   string     `json:"recipient" bun:",notnull,type:varchar(42)"`
	Attempts    int        `json:"attempts" bun:",notnull,use_zero,default:0"`
	Status      string     `json:"status" bun:",notnull,type:varchar(20)"`
	TxHash      *string    `json:"tx_hash,omitempty" bun:"tx_hash,type:varchar(66)"`
	BlockNumber *int64     `json:"block_number,omitempty" bun:"block_number"`
	GasUsed     *int64     `json:"gas_used,omitempty" bun:"gas_used"`
	LastError   *string    `json:"last_error,omitempty" bun:"last_error,type:text"`
	CreatedAt   time.Time  `json:"created_at" bun:",notnull,nullzero,default:current_timestamp"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty" bun:"claimed_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty" bun:"submitted_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty" bun:"confirmed_at"`
}
