package minter

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/artblox/auction-settler/pkg/config"
)

// NFT contract ABI, reduced to the mint entry points.
const nftContractABI = `[
	{
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "tokenId", "type": "uint256"},
			{"name": "uri", "type": "string"}
		],
		"name": "mint",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "recipients", "type": "address[]"},
			{"name": "tokenIds", "type": "uint256[]"},
			{"name": "uris", "type": "string[]"}
		],
		"name": "batchMint",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Client represents a write-capable client for the destination chain NFT
// contract.
type Client struct {
	config          *config.ChainConfig
	client          *ethclient.Client
	privateKey      *ecdsa.PrivateKey
	address         common.Address
	contractAddress common.Address
	contract        *bind.BoundContract
	logger          *zap.Logger
}

// NewClient creates a new destination chain client
func NewClient(cfg *config.ChainConfig, logger *zap.Logger) (*Client, error) {
	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to destination chain RPC: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to load minter private key: %w", err)
	}
	address := crypto.PubkeyToAddress(privateKey.PublicKey)

	parsedABI, err := abi.JSON(strings.NewReader(nftContractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse NFT contract ABI: %w", err)
	}

	contractAddress := common.HexToAddress(cfg.Contract)
	contract := bind.NewBoundContract(contractAddress, parsedABI, client, client, client)

	logger.Info("Connected to destination chain",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("nft_contract", contractAddress.Hex()),
		zap.String("minter_address", address.Hex()))

	return &Client{
		config:          cfg,
		client:          client,
		privateKey:      privateKey,
		address:         address,
		contractAddress: contractAddress,
		contract:        contract,
		logger:          logger,
	}, nil
}

// Close closes the underlying RPC connection
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Address returns the minter account address
func (c *Client) Address() common.Address {
	return c.address
}

// GetTransactor returns a transaction signer for the minter account
func (c *Client) GetTransactor(ctx context.Context) (*bind.TransactOpts, error) {
	chainID := big.NewInt(c.config.ChainID)

	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	auth.Nonce = big.NewInt(int64(nonce))
	auth.GasLimit = c.config.GasLimit
	auth.Context = ctx

	if c.config.MaxGasPrice != "" {
		maxGasPrice := new(big.Int)
		maxGasPrice.SetString(c.config.MaxGasPrice, 10)

		gasPrice, err := c.client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}

		if gasPrice.Cmp(maxGasPrice) > 0 {
			c.logger.Warn("Suggested gas price exceeds maximum",
				zap.String("suggested", gasPrice.String()),
				zap.String("max", maxGasPrice.String()))
			auth.GasPrice = maxGasPrice
		} else {
			auth.GasPrice = gasPrice
		}
	}

	return auth, nil
}

// SubmitMint submits a single mint transaction
func (c *Client) SubmitMint(ctx context.Context, recipient common.Address, tokenID *big.Int, tokenURI string) (common.Hash, error) {
	auth, err := c.GetTransactor(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx, err := c.contract.Transact(auth, "mint", recipient, tokenID, tokenURI)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to submit mint transaction: %w", err)
	}

	c.logger.Info("Mint transaction submitted",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("recipient", recipient.Hex()),
		zap.String("token_id", tokenID.String()))

	return tx.Hash(), nil
}

// SubmitMintBatch submits one transaction minting several tokens
func (c *Client) SubmitMintBatch(ctx context.Context, recipients []common.Address, tokenIDs []*big.Int, tokenURIs []string) (common.Hash, error) {
	if len(recipients) != len(tokenIDs) || len(recipients) != len(tokenURIs) {
		return common.Hash{}, fmt.Errorf("batch mint argument length mismatch: %d/%d/%d", len(recipients), len(tokenIDs), len(tokenURIs))
	}

	auth, err := c.GetTransactor(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	tx, err := c.contract.Transact(auth, "batchMint", recipients, tokenIDs, tokenURIs)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to submit batch mint transaction: %w", err)
	}

	c.logger.Info("Batch mint transaction submitted",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Int("count", len(recipients)))

	return tx.Hash(), nil
}

// WaitForReceipt blocks until the transaction is mined or ctx expires
func (c *Client) WaitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	tx, _, err := c.client.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up transaction %s: %w", txHash.Hex(), err)
	}

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for receipt of %s: %w", txHash.Hex(), err)
	}
	return receipt, nil
}

// GetReceipt fetches the receipt for a transaction, or nil if it is not
// mined yet.
func (c *Client) GetReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	receipt, err := c.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get receipt of %s: %w", txHash.Hex(), err)
	}
	return receipt, nil
}
