package settler

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/artblox/auction-settler/pkg/config"
	"github.com/artblox/auction-settler/pkg/ethereum"
	"github.com/artblox/auction-settler/pkg/store"
)

func testSettlementConfig() *config.SettlementConfig {
	return &config.SettlementConfig{
		ListenInterval:  time.Second,
		ExecuteInterval: time.Second,
		SweepInterval:   time.Second,
		ReceiptTimeout:  time.Second,
		MaxMintAttempts: 3,
		MintBatchSize:   5,
		MintFunction:    "single",
		MetadataBaseURI: "ipfs://",
		ReconcileGrace:  5 * time.Minute,
	}
}

func newTestEngine(cfg *config.SettlementConfig, source *MockSourceClient, dest *MockDestClient, st *MockStore) *Engine {
	return NewEngine(cfg, source, dest, st, zap.NewNop())
}

func testEvent(auctionID int64, txHash string, logIndex uint, block uint64) *ethereum.AuctionSettledEvent {
	return &ethereum.AuctionSettledEvent{
		AuctionID:   big.NewInt(auctionID),
		Winner:      gethcommon.HexToAddress("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"),
		Token:       gethcommon.HexToAddress("0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB"),
		Amount:      big.NewInt(1000000),
		USDValue:    big.NewInt(1000000000000000000),
		Contract:    gethcommon.HexToAddress("0xCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCCC"),
		BlockNumber: block,
		TxHash:      gethcommon.HexToHash(txHash),
		LogIndex:    logIndex,
	}
}

func testAuction(auctionID int64) *store.Auction {
	return &store.Auction{
		AuctionID: auctionID,
		NFTID:     "nft-1",
		Status:    store.AuctionStatusActive,
		EndTime:   time.Now().Add(time.Hour),
	}
}

func TestLoadCursorResumes(t *testing.T) {
	st := &MockStore{
		HighestObservedBlockFunc: func(ctx context.Context) (int64, error) {
			return 1200, nil
		},
	}
	e := newTestEngine(testSettlementConfig(), &MockSourceClient{}, &MockDestClient{}, st)

	if err := e.loadCursor(context.Background()); err != nil {
		t.Fatalf("loadCursor() error: %v", err)
	}
	if e.lastBlock != 1200 {
		t.Errorf("lastBlock = %d, want 1200", e.lastBlock)
	}
}

func TestLoadCursorColdStart(t *testing.T) {
	source := &MockSourceClient{
		GetLatestBlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 5000, nil
		},
	}
	e := newTestEngine(testSettlementConfig(), source, &MockDestClient{}, &MockStore{})

	if err := e.loadCursor(context.Background()); err != nil {
		t.Fatalf("loadCursor() error: %v", err)
	}
	if e.lastBlock != 5000 {
		t.Errorf("lastBlock = %d, want chain head 5000 on cold start", e.lastBlock)
	}
}

func TestListenTickNoNewBlocks(t *testing.T) {
	filtered := false
	source := &MockSourceClient{
		GetLatestBlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 100, nil
		},
		FilterAuctionSettledFunc: func(ctx context.Context, from, to uint64) ([]*ethereum.AuctionSettledEvent, error) {
			filtered = true
			return nil, nil
		},
	}
	e := newTestEngine(testSettlementConfig(), source, &MockDestClient{}, &MockStore{})
	e.lastBlock = 100

	if err := e.listenTick(context.Background()); err != nil {
		t.Fatalf("listenTick() error: %v", err)
	}
	if filtered {
		t.Error("filtered logs although head did not advance")
	}
	if !e.IsReady() {
		t.Error("engine not ready after a successful tick")
	}
}

func TestListenTickSettlesEvent(t *testing.T) {
	var gotFrom, gotTo uint64
	source := &MockSourceClient{
		GetLatestBlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 110, nil
		},
		FilterAuctionSettledFunc: func(ctx context.Context, from, to uint64) ([]*ethereum.AuctionSettledEvent, error) {
			gotFrom, gotTo = from, to
			return []*ethereum.AuctionSettledEvent{testEvent(42, "0x01", 3, 105)}, nil
		},
	}

	var settled *store.SettleWinParams
	st := &MockStore{
		GetAuctionFunc: func(ctx context.Context, auctionID int64) (*store.Auction, error) {
			return testAuction(auctionID), nil
		},
		CreateEventLogFunc: func(ctx context.Context, log *store.EventLog) (bool, error) {
			log.ID = 7
			return true, nil
		},
		SettleAuctionWinFunc: func(ctx context.Context, p store.SettleWinParams) error {
			settled = &p
			return nil
		},
	}

	e := newTestEngine(testSettlementConfig(), source, &MockDestClient{}, st)
	e.lastBlock = 100

	if err := e.listenTick(context.Background()); err != nil {
		t.Fatalf("listenTick() error: %v", err)
	}

	if gotFrom != 101 || gotTo != 110 {
		t.Errorf("filtered range (%d, %d], want (100, 110]", gotFrom-1, gotTo)
	}
	if e.lastBlock != 110 {
		t.Errorf("lastBlock = %d, want 110", e.lastBlock)
	}
	if settled == nil {
		t.Fatal("SettleAuctionWin was not called")
	}
	if settled.AuctionID != 42 {
		t.Errorf("settled auction id = %d, want 42", settled.AuctionID)
	}
	if settled.EventLogID != 7 {
		t.Errorf("settled event log id = %d, want 7", settled.EventLogID)
	}
	if settled.NFTID != "nft-1" {
		t.Errorf("settled nft id = %s, want nft-1", settled.NFTID)
	}
	if settled.Mint == nil {
		t.Fatal("no mint transaction enqueued")
	}
	if settled.Mint.Status != store.MintStatusPending {
		t.Errorf("mint status = %s, want pending", settled.Mint.Status)
	}
	if want := testEvent(42, "0x01", 3, 105).Winner.Hex(); settled.Mint.Recipient != want {
		t.Errorf("mint recipient = %s, want %s", settled.Mint.Recipient, want)
	}
}

func TestListenTickSkipsDuplicateEvent(t *testing.T) {
	source := &MockSourceClient{
		GetLatestBlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 110, nil
		},
		FilterAuctionSettledFunc: func(ctx context.Context, from, to uint64) ([]*ethereum.AuctionSettledEvent, error) {
			return []*ethereum.AuctionSettledEvent{testEvent(42, "0x01", 3, 105)}, nil
		},
	}

	settleCalls := 0
	createCalls := 0
	st := &MockStore{
		GetEventLogFunc: func(ctx context.Context, txHash string, logIndex uint64) (*store.EventLog, error) {
			return &store.EventLog{ID: 1, TxHash: txHash, LogIndex: logIndex}, nil
		},
		CreateEventLogFunc: func(ctx context.Context, log *store.EventLog) (bool, error) {
			createCalls++
			return true, nil
		},
		SettleAuctionWinFunc: func(ctx context.Context, p store.SettleWinParams) error {
			settleCalls++
			return nil
		},
	}

	e := newTestEngine(testSettlementConfig(), source, &MockDestClient{}, st)
	e.lastBlock = 100

	if err := e.listenTick(context.Background()); err != nil {
		t.Fatalf("listenTick() error: %v", err)
	}
	if createCalls != 0 {
		t.Errorf("CreateEventLog called %d times for a duplicate, want 0", createCalls)
	}
	if settleCalls != 0 {
		t.Errorf("SettleAuctionWin called %d times for a duplicate, want 0", settleCalls)
	}
	if e.lastBlock != 110 {
		t.Errorf("lastBlock = %d, want 110 (duplicates still advance the cursor)", e.lastBlock)
	}
}

func TestListenTickUnknownAuctionSkips(t *testing.T) {
	source := &MockSourceClient{
		GetLatestBlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 110, nil
		},
		FilterAuctionSettledFunc: func(ctx context.Context, from, to uint64) ([]*ethereum.AuctionSettledEvent, error) {
			return []*ethereum.AuctionSettledEvent{testEvent(99, "0x02", 0, 105)}, nil
		},
	}

	created := false
	processed := false
	st := &MockStore{
		GetAuctionFunc: func(ctx context.Context, auctionID int64) (*store.Auction, error) {
			return nil, nil
		},
		CreateEventLogFunc: func(ctx context.Context, log *store.EventLog) (bool, error) {
			created = true
			log.ID = 11
			return true, nil
		},
		MarkEventLogProcessedFunc: func(ctx context.Context, id int64) error {
			if id != 11 {
				t.Errorf("marked event log %d processed, want 11", id)
			}
			processed = true
			return nil
		},
	}

	e := newTestEngine(testSettlementConfig(), source, &MockDestClient{}, st)
	e.lastBlock = 100

	if err := e.listenTick(context.Background()); err != nil {
		t.Fatalf("listenTick() error: %v", err)
	}
	if !created || !processed {
		t.Error("unknown-auction event must be recorded and marked processed for permanent skip")
	}
	if e.lastBlock != 110 {
		t.Errorf("lastBlock = %d, want 110", e.lastBlock)
	}
}

func TestListenTickUnknownAuctionRetries(t *testing.T) {
	cfg := testSettlementConfig()
	cfg.RetryUnknownAuction = true

	source := &MockSourceClient{
		GetLatestBlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 110, nil
		},
		FilterAuctionSettledFunc: func(ctx context.Context, from, to uint64) ([]*ethereum.AuctionSettledEvent, error) {
			return []*ethereum.AuctionSettledEvent{testEvent(99, "0x02", 0, 105)}, nil
		},
	}

	created := false
	st := &MockStore{
		GetAuctionFunc: func(ctx context.Context, auctionID int64) (*store.Auction, error) {
			return nil, nil
		},
		CreateEventLogFunc: func(ctx context.Context, log *store.EventLog) (bool, error) {
			created = true
			return true, nil
		},
	}

	e := newTestEngine(cfg, source, &MockDestClient{}, st)
	e.lastBlock = 100

	if err := e.listenTick(context.Background()); err == nil {
		t.Fatal("expected listenTick to abort on unknown auction in retry mode")
	}
	if created {
		t.Error("event log must not be written before aborting in retry mode")
	}
	if e.lastBlock != 100 {
		t.Errorf("lastBlock = %d, want 100 (cursor must not advance)", e.lastBlock)
	}
}

func TestListenTickStoreErrorKeepsCursor(t *testing.T) {
	source := &MockSourceClient{
		GetLatestBlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 110, nil
		},
		FilterAuctionSettledFunc: func(ctx context.Context, from, to uint64) ([]*ethereum.AuctionSettledEvent, error) {
			return []*ethereum.AuctionSettledEvent{testEvent(42, "0x01", 3, 105)}, nil
		},
	}

	storeDown := true
	settleCalls := 0
	st := &MockStore{
		GetAuctionFunc: func(ctx context.Context, auctionID int64) (*store.Auction, error) {
			if storeDown {
				return nil, errors.New("store unavailable")
			}
			return testAuction(auctionID), nil
		},
		CreateEventLogFunc: func(ctx context.Context, log *store.EventLog) (bool, error) {
			log.ID = 7
			return true, nil
		},
		SettleAuctionWinFunc: func(ctx context.Context, p store.SettleWinParams) error {
			settleCalls++
			return nil
		},
	}

	e := newTestEngine(testSettlementConfig(), source, &MockDestClient{}, st)
	e.lastBlock = 100

	if err := e.listenTick(context.Background()); err == nil {
		t.Fatal("expected listenTick to fail while the store is unavailable")
	}
	if e.lastBlock != 100 {
		t.Fatalf("lastBlock = %d, want 100 (cursor must not advance past an unhandled event)", e.lastBlock)
	}
	if settleCalls != 0 {
		t.Fatalf("SettleAuctionWin called %d times while the store was down, want 0", settleCalls)
	}

	// Once the store recovers the re-fetched range settles the event.
	storeDown = false
	if err := e.listenTick(context.Background()); err != nil {
		t.Fatalf("listenTick() after recovery error: %v", err)
	}
	if settleCalls != 1 {
		t.Errorf("SettleAuctionWin called %d times after recovery, want 1", settleCalls)
	}
	if e.lastBlock != 110 {
		t.Errorf("lastBlock = %d, want 110 after the range was handled", e.lastBlock)
	}
}

func TestListenTickChainErrorKeepsCursor(t *testing.T) {
	source := &MockSourceClient{
		GetLatestBlockNumberFunc: func(ctx context.Context) (uint64, error) {
			return 110, nil
		},
		FilterAuctionSettledFunc: func(ctx context.Context, from, to uint64) ([]*ethereum.AuctionSettledEvent, error) {
			return nil, context.DeadlineExceeded
		},
	}

	e := newTestEngine(testSettlementConfig(), source, &MockDestClient{}, &MockStore{})
	e.lastBlock = 100

	if err := e.listenTick(context.Background()); err == nil {
		t.Fatal("expected error from failed log fetch")
	}
	if e.lastBlock != 100 {
		t.Errorf("lastBlock = %d, want 100 after RPC failure", e.lastBlock)
	}
}
