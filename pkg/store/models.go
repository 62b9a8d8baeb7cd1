package store

import (
	"time"
)

// AuctionStatus represents the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionStatusPending   AuctionStatus = "pending"
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusEnded     AuctionStatus = "ended"
	AuctionStatusCompleted AuctionStatus = "completed"
)

// NFTStatus represents the lifecycle state of a token to be minted
type NFTStatus string

const (
	NFTStatusPending       NFTStatus = "pending"
	NFTStatusAuctioning    NFTStatus = "auctioning"
	NFTStatusAuctionEnded  NFTStatus = "auction_ended"
	NFTStatusMinted        NFTStatus = "minted"
	NFTStatusFailed        NFTStatus = "failed"
)

// MintStatus represents the current state of a destination-chain mint
type MintStatus string

const (
	MintStatusPending    MintStatus = "pending"
	MintStatusProcessing MintStatus = "processing"
	MintStatusSubmitted  MintStatus = "submitted"
	MintStatusConfirmed  MintStatus = "confirmed"
	MintStatusFailed     MintStatus = "failed"
)

// EventLog records one observed source-chain log. The (TxHash, LogIndex)
// pair is the natural key and the sole idempotency guard against
// reprocessing the same log after a re-poll or restart.
type EventLog struct {
	ID          int64             `json:"id"`
	EventType   string            `json:"event_type"`
	Contract    string            `json:"contract"`
	TxHash      string            `json:"tx_hash"`
	LogIndex    uint64            `json:"log_index"`
	BlockNumber int64             `json:"block_number"`
	Payload     map[string]string `json:"payload"`
	Processed   bool              `json:"processed"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Auction mirrors one on-chain auction instance locally
type Auction struct {
	AuctionID       int64             `json:"auction_id"`
	NFTID           string            `json:"nft_id"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"`
	DurationSec     int64             `json:"duration_sec"`
	ExtensionSec    int64             `json:"extension_sec"`
	TriggerSec      int64             `json:"trigger_sec"`
	AllowedTokens   []string          `json:"allowed_tokens"`
	MinPrices       map[string]string `json:"min_prices"`
	Status          AuctionStatus     `json:"status"`
	Winner          *string           `json:"winner,omitempty"`
	WinningToken    *string           `json:"winning_token,omitempty"`
	WinningAmount   *string           `json:"winning_amount,omitempty"`
	WinningUSDValue *string           `json:"winning_usd_value,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NFT represents one token to be minted on the destination chain
type NFT struct {
	ID          string    `json:"id"`
	TokenID     int64     `json:"token_id"`
	ContentHash string    `json:"content_hash"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      NFTStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MintTransaction is the unit of retryable settlement work. Exactly one
// confirmed mint transaction may exist per NFT; the conditional claim
// enforces this under concurrent executors.
type MintTransaction struct {
	ID          string     `json:"id"`
	NFTID       string     `json:"nft_id"`
	AuctionID   int64      `json:"auction_id"`
	Recipient   string     `json:"recipient"`
	Attempts    int        `json:"attempts"`
	Status      MintStatus `json:"status"`
	TxHash      *string    `json:"tx_hash,omitempty"`
	BlockNumber *int64     `json:"block_number,omitempty"`
	GasUsed     *int64     `json:"gas_used,omitempty"`
	LastError   *string    `json:"last_error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}
