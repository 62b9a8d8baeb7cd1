package settlerdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/artblox/auction-settler/pkg/pgutil/migrations"
	"github.com/artblox/auction-settler/pkg/store/dao"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating event_logs table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.EventLogDao{}); err != nil {
			return err
		}
		// The unique natural key backs the ON CONFLICT dedup insert
		if err := mghelper.CreateUniqueIndex(ctx, db, "event_logs", "idx_event_logs_tx_hash_log_index", "tx_hash", "log_index"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &dao.EventLogDao{}, "block_number", "processed")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping event_logs table...")
		return mghelper.DropTables(ctx, db, &dao.EventLogDao{})
	})
}
