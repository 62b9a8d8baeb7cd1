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
		log.Println("creating nfts table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.NFTDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &dao.NFTDao{}, "status", "token_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping nfts table...")
		return mghelper.DropTables(ctx, db, &dao.NFTDao{})
	})
}
