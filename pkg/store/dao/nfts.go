package dao

import "time"

// NFTDao is a data access object that maps directly to the 'nfts' table in PostgreSQL.
type NFTDao struct {
	tableName   struct{}  `bun:"table:nfts"` // nolint
	ID          string    `json:"id" bun:",pk,type:varchar(128)"`
	TokenID     int64     `json:"token_id" bun:",notnull,use_zero"`
	ContentHash string    `json:"content_hash" bun:",notnull,type:varchar(128)"`
	Name        string    `json:"name" bun:",notnull,type:varchar(255)"`
	Description string    `json:"description" bun:"description,type:text"`
	Status      string    `json:"status" bun:",notnull,type:varchar(20)"`
	CreatedAt   time.Time `json:"created_at" bun:",notnull,nullzero,default:current_timestamp"`
	UpdatedAt   time.Time `json:"updated_at" bun:",notnull,nullzero,default:current_timestamp"`
}
