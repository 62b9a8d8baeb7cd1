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
		log.Println("creating auctions table...")
		if err := mghelper.CreateSchema(ctx, db, &dao.AuctionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &dao.AuctionDao{}, "status", "end_time", "nft_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping auctions table...")
		return mghelper.DropTables(ctx, db, &dao.AuctionDao{})
	})
}
