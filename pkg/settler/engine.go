// Package settler contains the settlement worker: the event listener, the
// mint executor, the auction expiry sweep and the receipt reconciliation
// pass. The loops never talk to each other directly; all coordination goes
// through the shared store so any loop can crash and resume safely.
package settler

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/artblox/auction-settler/pkg/config"
	"github.com/artblox/auction-settler/pkg/ethereum"
	"github.com/artblox/auction-settler/pkg/store"
)

// SourceChainClient defines the interface for source chain reads
type SourceChainClient interface {
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
	FilterAuctionSettled(ctx context.Context, fromBlock, toBlock uint64) ([]*ethereum.AuctionSettledEvent, error)
}

// DestinationChainClient defines the interface for destination chain writes
type DestinationChainClient interface {
	SubmitMint(ctx context.Context, recipient gethcommon.Address, tokenID *big.Int, tokenURI string) (gethcommon.Hash, error)
	SubmitMintBatch(ctx context.Context, recipients []gethcommon.Address, tokenIDs []*big.Int, tokenURIs []string) (gethcommon.Hash, error)
	WaitForReceipt(ctx context.Context, txHash gethcommon.Hash) (*types.Receipt, error)
	GetReceipt(ctx context.Context, txHash gethcommon.Hash) (*types.Receipt, error)
}

// SettlementStore defines the store operations the settlement loops consume
type SettlementStore interface {
	CreateEventLog(ctx context.Context, log *store.EventLog) (bool, error)
	GetEventLog(ctx context.Context, txHash string, logIndex uint64) (*store.EventLog, error)
	MarkEventLogProcessed(ctx context.Context, id int64) error
	HighestObservedBlock(ctx context.Context) (int64, error)

	GetAuction(ctx context.Context, auctionID int64) (*store.Auction, error)
	SettleAuctionWin(ctx context.Context, p store.SettleWinParams) error
	ExpireAuctions(ctx context.Context, cutoff time.Time) (int64, error)

	GetNFT(ctx context.Context, id string) (*store.NFT, error)

	GetPendingMints(ctx context.Context, limit, maxAttempts int) ([]*store.MintTransaction, error)
	GetSubmittedMints(ctx context.Context) ([]*store.MintTransaction, error)
	GetStaleProcessingMints(ctx context.Context, cutoff time.Time) ([]*store.MintTransaction, error)
	CountPendingMints(ctx context.Context) (int, error)
	ClaimMint(ctx context.Context, id string) (bool, error)
	MarkMintSubmitted(ctx context.Context, id, txHash string) error
	FinalizeMint(ctx context.Context, id string, blockNumber, gasUsed int64) error
	ReleaseMint(ctx context.Context, id, errMsg string) error
	FailMint(ctx context.Context, id, errMsg string) error
}

// Engine orchestrates the settlement loops
type Engine struct {
	config *config.SettlementConfig
	source SourceChainClient
	dest   DestinationChainClient
	store  SettlementStore
	logger *zap.Logger

	lastBlock uint64
	ready     atomic.Bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewEngine creates a new settlement engine
func NewEngine(
	cfg *config.SettlementConfig,
	source SourceChainClient,
	dest DestinationChainClient,
	st SettlementStore,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		config: cfg,
		source: source,
		dest:   dest,
		store:  st,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start initializes the listener cursor, runs the startup reconciliation
// pass and launches the settlement loops.
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Starting settlement engine")

	if err := e.loadCursor(ctx); err != nil {
		return fmt.Errorf("failed to load listener cursor: %w", err)
	}

	// Resolve transactions stuck in submitted state before picking up new
	// work, so a crash between submission and confirmation cannot strand a
	// mint forever.
	if err := e.reconcileTick(ctx); err != nil {
		e.logger.Warn("Startup reconciliation failed (will retry periodically)", zap.Error(err))
	}

	e.wg.Add(4)
	go e.listenLoop(ctx)
	go e.executeLoop(ctx)
	go e.sweepLoop(ctx)
	go e.reconcileLoop(ctx)

	e.logger.Info("Settlement engine started",
		zap.Uint64("start_block", e.lastBlock),
		zap.Duration("listen_interval", e.config.ListenInterval),
		zap.Duration("execute_interval", e.config.ExecuteInterval),
		zap.Duration("sweep_interval", e.config.SweepInterval))
	return nil
}

// Stop stops the settlement engine and waits for in-flight work to finish
func (e *Engine) Stop() {
	e.logger.Info("Stopping settlement engine")
	close(e.stopCh)
	e.wg.Wait()
	e.logger.Info("Settlement engine stopped")
}

// IsReady reports whether the listener has completed at least one
// successful tick since startup
func (e *Engine) IsReady() bool {
	return e.ready.Load()
}

// loadCursor determines the listener start block: the highest block among
// recorded event logs, or the chain head on a cold start. Cold start
// intentionally skips history.
func (e *Engine) loadCursor(ctx context.Context) error {
	block, err := e.store.HighestObservedBlock(ctx)
	if err != nil {
		return err
	}
	if block > 0 {
		e.lastBlock = uint64(block)
		e.logger.Info("Resuming from last observed block", zap.Uint64("block", e.lastBlock))
		return nil
	}

	head, err := e.source.GetLatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain head: %w", err)
	}
	e.lastBlock = head
	e.logger.Info("Cold start, skipping history", zap.Uint64("block", e.lastBlock))
	return nil
}
