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
		log.Println("creating mint_transactions table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.MintTransactionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &dao.MintTransactionDao{}, "status", "nft_id", "created_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping mint_transactions table...")
		return mghelper.DropTables(ctx, db, &dao.MintTransactionDao{})
	})
}
