package ethereum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AuctionSettledEvent represents a settled auction log from the auction house
// contract on the source chain.
type AuctionSettledEvent struct {
	AuctionID   *big.Int
	Winner      common.Address
	Token       common.Address
	Amount      *big.Int
	USDValue    *big.Int
	Contract    common.Address
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
}
