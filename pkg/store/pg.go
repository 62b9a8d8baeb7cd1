package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/artblox/auction-settler/pkg/store/dao"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	ErrNotFound = errors.New("record not found")
)

// Store is the postgres-backed durable store shared by all settlement loops
type Store struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the settlement store
func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying bun handle for migrations and tests
func (s *Store) DB() *bun.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// Event logs
// =============================================================================

// CreateEventLog inserts an event log row keyed by (tx_hash, log_index).
// Returns false when the row already exists; the conflict target is the
// unique index created by the migrations.
func (s *Store) CreateEventLog(ctx context.Context, log *EventLog) (bool, error) {
	d := toEventLogDao(log)

	res, err := s.db.NewInsert().
		Model(d).
		On("CONFLICT (tx_hash, log_index) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to create event log: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	log.ID = d.ID
	return true, nil
}

// GetEventLog retrieves an event log by its natural key. Returns nil when
// no matching row exists.
func (s *Store) GetEventLog(ctx context.Context, txHash string, logIndex uint64) (*EventLog, error) {
	d := new(dao.EventLogDao)
	err := s.db.NewSelect().
		Model(d).
		Where("tx_hash = ?", txHash).
		Where("log_index = ?", logIndex).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get event log: %w", err)
	}
	return toEventLog(d), nil
}

// MarkEventLogProcessed flips the processed flag on an event log row
func (s *Store) MarkEventLogProcessed(ctx context.Context, id int64) error {
	_, err := s.db.NewUpdate().
		Model((*dao.EventLogDao)(nil)).
		Set("processed = TRUE").
		Set("processed_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark event log processed: %w", err)
	}
	return nil
}

// HighestObservedBlock returns the highest block number among recorded
// event logs, or 0 when no events have been recorded yet.
func (s *Store) HighestObservedBlock(ctx context.Context) (int64, error) {
	var block int64
	err := s.db.NewSelect().
		Model((*dao.EventLogDao)(nil)).
		ColumnExpr("COALESCE(MAX(block_number), 0)").
		Scan(ctx, &block)
	if err != nil {
		return 0, fmt.Errorf("failed to get highest observed block: %w", err)
	}
	return block, nil
}

// =============================================================================
// Auctions
// =============================================================================

// CreateAuction inserts a new auction row
func (s *Store) CreateAuction(ctx context.Context, auction *Auction) error {
	_, err := s.db.NewInsert().
		Model(toAuctionDao(auction)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

// GetAuction retrieves an auction by its on-chain id. Returns nil when no
// matching row exists.
func (s *Store) GetAuction(ctx context.Context, auctionID int64) (*Auction, error) {
	d := new(dao.AuctionDao)
	err := s.db.NewSelect().
		Model(d).
		Where("auction_id = ?", auctionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return toAuction(d), nil
}

// SettleWinParams carries everything recorded when a winning bid event
// settles an auction
type SettleWinParams struct {
	EventLogID int64
	AuctionID  int64
	NFTID      string
	Winner     string
	Token      string
	Amount     string
	USDValue   string
	Mint       *MintTransaction
}

// SettleAuctionWin applies the full effect of an auction-won event in one
// transaction: the auction moves to ended with the winner recorded, the
// NFT moves to auction_ended, one pending mint transaction is created and
// the event log row is marked processed. Status guards in the WHERE
// clauses keep every transition forward-only.
func (s *Store) SettleAuctionWin(ctx context.Context, p SettleWinParams) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*dao.AuctionDao)(nil)).
			Set("status = ?", string(AuctionStatusEnded)).
			Set("winner = ?", p.Winner).
			Set("winning_token = ?", p.Token).
			Set("winning_amount = ?", p.Amount).
			Set("winning_usd_value = ?", p.USDValue).
			Set("updated_at = NOW()").
			Where("auction_id = ?", p.AuctionID).
			Where("status IN (?)", bun.In([]string{string(AuctionStatusPending), string(AuctionStatusActive), string(AuctionStatusEnded)})).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to record auction win: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("auction %d not settleable: %w", p.AuctionID, ErrNotFound)
		}

		if _, err := tx.NewInsert().
			Model(toMintTransactionDao(p.Mint)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create mint transaction: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*dao.NFTDao)(nil)).
			Set("status = ?", string(NFTStatusAuctionEnded)).
			Set("updated_at = NOW()").
			Where("id = ?", p.NFTID).
			Where("status IN (?)", bun.In([]string{string(NFTStatusPending), string(NFTStatusAuctioning)})).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to update nft status: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*dao.EventLogDao)(nil)).
			Set("processed = TRUE").
			Set("processed_at = NOW()").
			Where("id = ?", p.EventLogID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to mark event log processed: %w", err)
		}

		return nil
	})
}

// ExpireAuctions closes every auction whose end time has elapsed and that
// is still pending or active. Idempotent: already-ended rows never match.
func (s *Store) ExpireAuctions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.NewUpdate().
		Model((*dao.AuctionDao)(nil)).
		Set("status = ?", string(AuctionStatusEnded)).
		Set("updated_at = NOW()").
		Where("end_time < ?", cutoff).
		Where("status IN (?)", bun.In([]string{string(AuctionStatusPending), string(AuctionStatusActive)})).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to expire auctions: %w", err)
	}
	return res.RowsAffected()
}

// =============================================================================
// NFTs
// =============================================================================

// CreateNFT inserts a new NFT row
func (s *Store) CreateNFT(ctx context.Context, nft *NFT) error {
	_, err := s.db.NewInsert().
		Model(toNFTDao(nft)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create nft: %w", err)
	}
	return nil
}

// GetNFT retrieves an NFT by id
func (s *Store) GetNFT(ctx context.Context, id string) (*NFT, error) {
	d := new(dao.NFTDao)
	err := s.db.NewSelect().
		Model(d).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get nft: %w", err)
	}
	return toNFT(d), nil
}

// =============================================================================
// Mint transactions
// =============================================================================

// CreateMintTransaction inserts a new mint transaction row
func (s *Store) CreateMintTransaction(ctx context.Context, mint *MintTransaction) error {
	_, err := s.db.NewInsert().
		Model(toMintTransactionDao(mint)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create mint transaction: %w", err)
	}
	return nil
}

// GetMintTransaction retrieves a mint transaction by id
func (s *Store) GetMintTransaction(ctx context.Context, id string) (*MintTransaction, error) {
	d := new(dao.MintTransactionDao)
	err := s.db.NewSelect().
		Model(d).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get mint transaction: %w", err)
	}
	return toMintTransaction(d), nil
}

// GetPendingMints selects the oldest pending mint transactions whose
// attempt counter is still below the configured maximum
func (s *Store) GetPendingMints(ctx context.Context, limit, maxAttempts int) ([]*MintTransaction, error) {
	var daos []dao.MintTransactionDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(MintStatusPending)).
		Where("attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending mints: %w", err)
	}
	mints := make([]*MintTransaction, len(daos))
	for i := range daos {
		mints[i] = toMintTransaction(&daos[i])
	}
	return mints, nil
}

// GetSubmittedMints returns mint transactions stuck in submitted state,
// oldest first, for the reconciliation pass
func (s *Store) GetSubmittedMints(ctx context.Context) ([]*MintTransaction, error) {
	var daos []dao.MintTransactionDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(MintStatusSubmitted)).
		Order("submitted_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get submitted mints: %w", err)
	}
	mints := make([]*MintTransaction, len(daos))
	for i := range daos {
		mints[i] = toMintTransaction(&daos[i])
	}
	return mints, nil
}

// GetStaleProcessingMints returns mint transactions claimed before cutoff
// that never reached submitted state. This happens when the claiming process
// dies, or the submission record fails, between claim and submit; without a
// sweep such rows would sit in processing forever.
func (s *Store) GetStaleProcessingMints(ctx context.Context, cutoff time.Time) ([]*MintTransaction, error) {
	var daos []dao.MintTransactionDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(MintStatusProcessing)).
		Where("claimed_at < ?", cutoff).
		Order("claimed_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale processing mints: %w", err)
	}
	mints := make([]*MintTransaction, len(daos))
	for i := range daos {
		mints[i] = toMintTransaction(&daos[i])
	}
	return mints, nil
}

// ListMintTransactions retrieves the most recent mint transactions
func (s *Store) ListMintTransactions(ctx context.Context, limit int) ([]*MintTransaction, error) {
	var daos []dao.MintTransactionDao
	err := s.db.NewSelect().
		Model(&daos).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mint transactions: %w", err)
	}
	mints := make([]*MintTransaction, len(daos))
	for i := range daos {
		mints[i] = toMintTransaction(&daos[i])
	}
	return mints, nil
}

// CountPendingMints returns the number of mint transactions awaiting execution
func (s *Store) CountPendingMints(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().
		Model((*dao.MintTransactionDao)(nil)).
		Where("status = ?", string(MintStatusPending)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending mints: %w", err)
	}
	return count, nil
}

// ClaimMint transitions a mint transaction from pending to processing and
// increments its attempt counter in a single conditional update. Returns
// false when the row was not in pending state, meaning another executor
// instance won the claim. This compare-and-swap is the only cross-instance
// synchronization point in the system.
func (s *Store) ClaimMint(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*dao.MintTransactionDao)(nil)).
		Set("status = ?", string(MintStatusProcessing)).
		Set("attempts = attempts + 1").
		Set("claimed_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(MintStatusPending)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to claim mint: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// MarkMintSubmitted records the destination transaction hash after a
// successful submission
func (s *Store) MarkMintSubmitted(ctx context.Context, id, txHash string) error {
	res, err := s.db.NewUpdate().
		Model((*dao.MintTransactionDao)(nil)).
		Set("status = ?", string(MintStatusSubmitted)).
		Set("tx_hash = ?", txHash).
		Set("submitted_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(MintStatusProcessing)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark mint submitted: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("mint %s not in processing state: %w", id, ErrNotFound)
	}
	return nil
}

// FinalizeMint records a confirmed receipt and flips the paired NFT and
// auction in the same transaction: mint confirmed, NFT minted, auction
// completed
func (s *Store) FinalizeMint(ctx context.Context, id string, blockNumber, gasUsed int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		mint := new(dao.MintTransactionDao)
		if err := tx.NewSelect().
			Model(mint).
			Where("id = ?", id).
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to load mint transaction: %w", err)
		}

		res, err := tx.NewUpdate().
			Model((*dao.MintTransactionDao)(nil)).
			Set("status = ?", string(MintStatusConfirmed)).
			Set("block_number = ?", blockNumber).
			Set("gas_used = ?", gasUsed).
			Set("confirmed_at = NOW()").
			Where("id = ?", id).
			Where("status IN (?)", bun.In([]string{string(MintStatusProcessing), string(MintStatusSubmitted)})).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to confirm mint: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("mint %s not confirmable: %w", id, ErrNotFound)
		}

		if _, err := tx.NewUpdate().
			Model((*dao.NFTDao)(nil)).
			Set("status = ?", string(NFTStatusMinted)).
			Set("updated_at = NOW()").
			Where("id = ?", mint.NFTID).
			Where("status = ?", string(NFTStatusAuctionEnded)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to mark nft minted: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*dao.AuctionDao)(nil)).
			Set("status = ?", string(AuctionStatusCompleted)).
			Set("updated_at = NOW()").
			Where("auction_id = ?", mint.AuctionID).
			Where("status = ?", string(AuctionStatusEnded)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to complete auction: %w", err)
		}

		return nil
	})
}

// ReleaseMint returns a mint transaction to pending with the error
// recorded, making it eligible for the next executor tick
func (s *Store) ReleaseMint(ctx context.Context, id, errMsg string) error {
	_, err := s.db.NewUpdate().
		Model((*dao.MintTransactionDao)(nil)).
		Set("status = ?", string(MintStatusPending)).
		Set("last_error = ?", errMsg).
		Where("id = ?", id).
		Where("status IN (?)", bun.In([]string{string(MintStatusProcessing), string(MintStatusSubmitted)})).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to release mint: %w", err)
	}
	return nil
}

// FailMint marks a mint transaction and its NFT as permanently failed after
// the retry budget is exhausted. Manual operator intervention is required
// from here.
func (s *Store) FailMint(ctx context.Context, id, errMsg string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		mint := new(dao.MintTransactionDao)
		if err := tx.NewSelect().
			Model(mint).
			Where("id = ?", id).
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to load mint transaction: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*dao.MintTransactionDao)(nil)).
			Set("status = ?", string(MintStatusFailed)).
			Set("last_error = ?", errMsg).
			Where("id = ?", id).
			Where("status IN (?)", bun.In([]string{string(MintStatusProcessing), string(MintStatusSubmitted)})).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to fail mint: %w", err)
		}

		if _, err := tx.NewUpdate().
			Model((*dao.NFTDao)(nil)).
			Set("status = ?", string(NFTStatusFailed)).
			Set("updated_at = NOW()").
			Where("id = ?", mint.NFTID).
			Where("status != ?", string(NFTStatusMinted)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to mark nft failed: %w", err)
		}

		return nil
	})
}
