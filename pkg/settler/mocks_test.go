package settler

import (
	"context"
	"math/big"
	"time"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/artblox/auction-settler/pkg/ethereum"
	"github.com/artblox/auction-settler/pkg/store"
)

// MockSourceClient is a mock implementation of SourceChainClient
type MockSourceClient struct {
	GetLatestBlockNumberFunc func(ctx context.Context) (uint64, error)
	FilterAuctionSettledFunc func(ctx context.Context, fromBlock, toBlock uint64) ([]*ethereum.AuctionSettledEvent, error)
}

func (m *MockSourceClient) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	if m.GetLatestBlockNumberFunc != nil {
		return m.GetLatestBlockNumberFunc(ctx)
	}
	return 0, nil
}

func (m *MockSourceClient) FilterAuctionSettled(ctx context.Context, fromBlock, toBlock uint64) ([]*ethereum.AuctionSettledEvent, error) {
	if m.FilterAuctionSettledFunc != nil {
		return m.FilterAuctionSettledFunc(ctx, fromBlock, toBlock)
	}
	return nil, nil
}

// MockDestClient is a mock implementation of DestinationChainClient
type MockDestClient struct {
	SubmitMintFunc      func(ctx context.Context, recipient gethcommon.Address, tokenID *big.Int, tokenURI string) (gethcommon.Hash, error)
	SubmitMintBatchFunc func(ctx context.Context, recipients []gethcommon.Address, tokenIDs []*big.Int, tokenURIs []string) (gethcommon.Hash, error)
	WaitForReceiptFunc  func(ctx context.Context, txHash gethcommon.Hash) (*types.Receipt, error)
	GetReceiptFunc      func(ctx context.Context, txHash gethcommon.Hash) (*types.Receipt, error)
}

func (m *MockDestClient) SubmitMint(ctx context.Context, recipient gethcommon.Address, tokenID *big.Int, tokenURI string) (gethcommon.Hash, error) {
	if m.SubmitMintFunc != nil {
		return m.SubmitMintFunc(ctx, recipient, tokenID, tokenURI)
	}
	return gethcommon.Hash{}, nil
}

func (m *MockDestClient) SubmitMintBatch(ctx context.Context, recipients []gethcommon.Address, tokenIDs []*big.Int, tokenURIs []string) (gethcommon.Hash, error) {
	if m.SubmitMintBatchFunc != nil {
		return m.SubmitMintBatchFunc(ctx, recipients, tokenIDs, tokenURIs)
	}
	return gethcommon.Hash{}, nil
}

func (m *MockDestClient) WaitForReceipt(ctx context.Context, txHash gethcommon.Hash) (*types.Receipt, error) {
	if m.WaitForReceiptFunc != nil {
		return m.WaitForReceiptFunc(ctx, txHash)
	}
	return nil, nil
}

func (m *MockDestClient) GetReceipt(ctx context.Context, txHash gethcommon.Hash) (*types.Receipt, error) {
	if m.GetReceiptFunc != nil {
		return m.GetReceiptFunc(ctx, txHash)
	}
	return nil, nil
}

// MockStore is a mock implementation of SettlementStore
type MockStore struct {
	CreateEventLogFunc        func(ctx context.Context, log *store.EventLog) (bool, error)
	GetEventLogFunc           func(ctx context.Context, txHash string, logIndex uint64) (*store.EventLog, error)
	MarkEventLogProcessedFunc func(ctx context.Context, id int64) error
	HighestObservedBlockFunc  func(ctx context.Context) (int64, error)
	GetAuctionFunc            func(ctx context.Context, auctionID int64) (*store.Auction, error)
	SettleAuctionWinFunc      func(ctx context.Context, p store.SettleWinParams) error
	ExpireAuctionsFunc        func(ctx context.Context, cutoff time.Time) (int64, error)
	GetNFTFunc                func(ctx context.Context, id string) (*store.NFT, error)
	GetPendingMintsFunc       func(ctx context.Context, limit, maxAttempts int) ([]*store.MintTransaction, error)
	GetSubmittedMintsFunc     func(ctx context.Context) ([]*store.MintTransaction, error)
	GetStaleProcessingFunc    func(ctx context.Context, cutoff time.Time) ([]*store.MintTransaction, error)
	CountPendingMintsFunc     func(ctx context.Context) (int, error)
	ClaimMintFunc             func(ctx context.Context, id string) (bool, error)
	MarkMintSubmittedFunc     func(ctx context.Context, id, txHash string) error
	FinalizeMintFunc          func(ctx context.Context, id string, blockNumber, gasUsed int64) error
	ReleaseMintFunc           func(ctx context.Context, id, errMsg string) error
	FailMintFunc              func(ctx context.Context, id, errMsg string) error
}

func (m *MockStore) CreateEventLog(ctx context.Context, log *store.EventLog) (bool, error) {
	if m.CreateEventLogFunc != nil {
		return m.CreateEventLogFunc(ctx, log)
	}
	return true, nil
}

func (m *MockStore) GetEventLog(ctx context.Context, txHash string, logIndex uint64) (*store.EventLog, error) {
	if m.GetEventLogFunc != nil {
		return m.GetEventLogFunc(ctx, txHash, logIndex)
	}
	return nil, nil
}

func (m *MockStore) MarkEventLogProcessed(ctx context.Context, id int64) error {
	if m.MarkEventLogProcessedFunc != nil {
		return m.MarkEventLogProcessedFunc(ctx, id)
	}
	return nil
}

func (m *MockStore) HighestObservedBlock(ctx context.Context) (int64, error) {
	if m.HighestObservedBlockFunc != nil {
		return m.HighestObservedBlockFunc(ctx)
	}
	return 0, nil
}

func (m *MockStore) GetAuction(ctx context.Context, auctionID int64) (*store.Auction, error) {
	if m.GetAuctionFunc != nil {
		return m.GetAuctionFunc(ctx, auctionID)
	}
	return nil, nil
}

func (m *MockStore) SettleAuctionWin(ctx context.Context, p store.SettleWinParams) error {
	if m.SettleAuctionWinFunc != nil {
		return m.SettleAuctionWinFunc(ctx, p)
	}
	return nil
}

func (m *MockStore) ExpireAuctions(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.ExpireAuctionsFunc != nil {
		return m.ExpireAuctionsFunc(ctx, cutoff)
	}
	return 0, nil
}

func (m *MockStore) GetNFT(ctx context.Context, id string) (*store.NFT, error) {
	if m.GetNFTFunc != nil {
		return m.GetNFTFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) GetPendingMints(ctx context.Context, limit, maxAttempts int) ([]*store.MintTransaction, error) {
	if m.GetPendingMintsFunc != nil {
		return m.GetPendingMintsFunc(ctx, limit, maxAttempts)
	}
	return nil, nil
}

func (m *MockStore) GetSubmittedMints(ctx context.Context) ([]*store.MintTransaction, error) {
	if m.GetSubmittedMintsFunc != nil {
		return m.GetSubmittedMintsFunc(ctx)
	}
	return nil, nil
}

func (m *MockStore) GetStaleProcessingMints(ctx context.Context, cutoff time.Time) ([]*store.MintTransaction, error) {
	if m.GetStaleProcessingFunc != nil {
		return m.GetStaleProcessingFunc(ctx, cutoff)
	}
	return nil, nil
}

func (m *MockStore) CountPendingMints(ctx context.Context) (int, error) {
	if m.CountPendingMintsFunc != nil {
		return m.CountPendingMintsFunc(ctx)
	}
	return 0, nil
}

func (m *MockStore) ClaimMint(ctx context.Context, id string) (bool, error) {
	if m.ClaimMintFunc != nil {
		return m.ClaimMintFunc(ctx, id)
	}
	return true, nil
}

func (m *MockStore) MarkMintSubmitted(ctx context.Context, id, txHash string) error {
	if m.MarkMintSubmittedFunc != nil {
		return m.MarkMintSubmittedFunc(ctx, id, txHash)
	}
	return nil
}

func (m *MockStore) FinalizeMint(ctx context.Context, id string, blockNumber, gasUsed int64) error {
	if m.FinalizeMintFunc != nil {
		return m.FinalizeMintFunc(ctx, id, blockNumber, gasUsed)
	}
	return nil
}

func (m *MockStore) ReleaseMint(ctx context.Context, id, errMsg string) error {
	if m.ReleaseMintFunc != nil {
		return m.ReleaseMintFunc(ctx, id, errMsg)
	}
	return nil
}

func (m *MockStore) FailMint(ctx context.Context, id, errMsg string) error {
	if m.FailMintFunc != nil {
		return m.FailMintFunc(ctx, id, errMsg)
	}
	return nil
}
