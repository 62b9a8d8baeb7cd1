package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/artblox/auction-settler/internal/metrics"
	"github.com/artblox/auction-settler/pkg/config"
)

// Auction house ABI, reduced to the pieces the worker consumes.
const auctionHouseABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "auctionId", "type": "uint256"},
			{"indexed": true, "name": "winner", "type": "address"},
			{"indexed": false, "name": "token", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"},
			{"indexed": false, "name": "valueInUSD", "type": "uint256"}
		],
		"name": "AuctionSettled",
		"type": "event"
	}
]`

// Client represents a read-only client for the source chain auction house.
type Client struct {
	config          *config.ChainConfig
	client          *ethclient.Client
	contractAddress common.Address
	contractABI     abi.ABI
	logger          *zap.Logger
}

// NewClient creates a new source chain client
func NewClient(cfg *config.ChainConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source chain RPC: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(auctionHouseABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse auction house ABI: %w", err)
	}

	contractAddress := common.HexToAddress(cfg.Contract)

	logger.Info("Connected to source chain",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("auction_contract", contractAddress.Hex()))

	return &Client{
		config:          cfg,
		client:          client,
		contractAddress: contractAddress,
		contractABI:     parsedABI,
		logger:          logger,
	}, nil
}

// Close closes the underlying RPC connection
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// GetLatestBlockNumber gets the latest block number
func (c *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// FilterAuctionSettled fetches AuctionSettled logs emitted by the auction
// house contract in the inclusive block range [fromBlock, toBlock], in
// ascending block and log index order.
func (c *Client) FilterAuctionSettled(ctx context.Context, fromBlock, toBlock uint64) ([]*AuctionSettledEvent, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{c.contractAddress},
		Topics:    [][]common.Hash{{c.contractABI.Events["AuctionSettled"].ID}},
	}

	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to filter auction logs: %w", err)
	}

	return c.collectAuctionSettled(logs), nil
}

// collectAuctionSettled decodes a batch of raw logs. A log that fails to
// decode is recorded and dropped so one malformed log cannot stall the
// cursor on the rest of the range.
func (c *Client) collectAuctionSettled(logs []types.Log) []*AuctionSettledEvent {
	events := make([]*AuctionSettledEvent, 0, len(logs))
	for i := range logs {
		event, err := c.parseAuctionSettled(&logs[i])
		if err != nil {
			c.logger.Error("Skipping undecodable auction log",
				zap.String("tx_hash", logs[i].TxHash.Hex()),
				zap.Uint("log_index", logs[i].Index),
				zap.Uint64("block_number", logs[i].BlockNumber),
				zap.Error(err))
			metrics.ErrorsTotal.WithLabelValues("listener", "decode").Inc()
			continue
		}
		events = append(events, event)
	}
	return events
}

func (c *Client) parseAuctionSettled(log *types.Log) (*AuctionSettledEvent, error) {
	if len(log.Topics) < 3 {
		return nil, fmt.Errorf("invalid AuctionSettled event %s/%d: insufficient topics", log.TxHash.Hex(), log.Index)
	}

	var data struct {
		Token      common.Address
		Amount     *big.Int
		ValueInUSD *big.Int
	}
	if err := c.contractABI.UnpackIntoInterface(&data, "AuctionSettled", log.Data); err != nil {
		return nil, fmt.Errorf("failed to decode AuctionSettled event %s/%d: %w", log.TxHash.Hex(), log.Index, err)
	}

	return &AuctionSettledEvent{
		AuctionID:   new(big.Int).SetBytes(log.Topics[1].Bytes()),
		Winner:      common.BytesToAddress(log.Topics[2].Bytes()),
		Token:       data.Token,
		Amount:      data.Amount,
		USDValue:    data.ValueInUSD,
		Contract:    log.Address,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		LogIndex:    log.Index,
	}, nil
}
