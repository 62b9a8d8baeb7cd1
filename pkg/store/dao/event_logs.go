package dao

import "time"

// EventLogDao is a data access object that maps directly to the 'event_logs' table in PostgreSQL.
type EventLogDao struct {
	tableName   struct{}          `bun:"table:event_logs"` // nolint
	ID          int64             `json:"id" bun:",pk,autoincrement"`
	EventType   string            `json:"event_type" bun:",notnull,type:varchar(64)"`
	Contract    string            `json:"contract" bun:",notnull,type:varchar(42)"`
	TxHash      string            `json:"tx_hash" bun:",notnull,type:varchar(66)"`
	LogIndex    uint64            `json:"log_index" bun:",notnull,use_zero"`
	BlockNumber int64             `json:"block_number" bun:",notnull"`
	Payload     map[string]string `json:"payload" bun:"payload,type:jsonb"`
	Processed   bool              `json:"processed" bun:",notnull,use_zero,default:false"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty" bun:"processed_at"`
	CreatedAt   time.Time         `json:"created_at" bun:",notnull,nullzero,default:current_timestamp"`
}
