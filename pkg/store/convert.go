package store

import (
	"github.com/artblox/auction-settler/pkg/store/dao"
)

func toEventLogDao(e *EventLog) *dao.EventLogDao {
	return &dao.EventLogDao{
		ID:          e.ID,
		EventType:   e.EventType,
		Contract:    e.Contract,
		TxHash:      e.TxHash,
		LogIndex:    e.LogIndex,
		BlockNumber: e.BlockNumber,
		Payload:     e.Payload,
		Processed:   e.Processed,
		ProcessedAt: e.ProcessedAt,
		CreatedAt:   e.CreatedAt,
	}
}

func toEventLog(d *dao.EventLogDao) *EventLog {
	return &EventLog{
		ID:          d.ID,
		EventType:   d.EventType,
		Contract:    d.Contract,
		TxHash:      d.TxHash,
		LogIndex:    d.LogIndex,
		BlockNumber: d.BlockNumber,
		Payload:     d.Payload,
		Processed:   d.Processed,
		ProcessedAt: d.ProcessedAt,
		CreatedAt:   d.CreatedAt,
	}
}

func toAuctionDao(a *Auction) *dao.AuctionDao {
	return &dao.AuctionDao{
		AuctionID:       a.AuctionID,
		NFTID:           a.NFTID,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		DurationSec:     a.DurationSec,
		ExtensionSec:    a.ExtensionSec,
		TriggerSec:      a.TriggerSec,
		AllowedTokens:   a.AllowedTokens,
		MinPrices:       a.MinPrices,
		Status:          string(a.Status),
		Winner:          a.Winner,
		WinningToken:    a.WinningToken,
		WinningAmount:   a.WinningAmount,
		WinningUSDValue: a.WinningUSDValue,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAuction(d *dao.AuctionDao) *Auction {
	return &Auction{
		AuctionID:       d.AuctionID,
		NFTID:           d.NFTID,
		StartTime:       d.StartTime,
		EndTime:         d.EndTime,
		DurationSec:     d.DurationSec,
		ExtensionSec:    d.ExtensionSec,
		TriggerSec:      d.TriggerSec,
		AllowedTokens:   d.AllowedTokens,
		MinPrices:       d.MinPrices,
		Status:          AuctionStatus(d.Status),
		Winner:          d.Winner,
		WinningToken:    d.WinningToken,
		WinningAmount:   d.WinningAmount,
		WinningUSDValue: d.WinningUSDValue,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func toNFTDao(n *NFT) *dao.NFTDao {
	return &dao.NFTDao{
		ID:          n.ID,
		TokenID:     n.TokenID,
		ContentHash: n.ContentHash,
		Name:        n.Name,
		Description: n.Description,
		Status:      string(n.Status),
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func toNFT(d *dao.NFTDao) *NFT {
	return &NFT{
		ID:          d.ID,
		TokenID:     d.TokenID,
		ContentHash: d.ContentHash,
		Name:        d.Name,
		Description: d.Description,
		Status:      NFTStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toMintTransactionDao(m *MintTransaction) *dao.MintTransactionDao {
	return &dao.MintTransactionDao{
		ID:          m.ID,
		NFTID:       m.NFTID,
		AuctionID:   m.AuctionID,
		Recipient:   m.Recipient,
		Attempts:    m.Attempts,
		Status:      string(m.Status),
		TxHash:      m.TxHash,
		BlockNumber: m.BlockNumber,
		GasUsed:     m.GasUsed,
		LastError:   m.LastError,
		CreatedAt:   m.CreatedAt,
		ClaimedAt:   m.ClaimedAt,
		SubmittedAt: m.SubmittedAt,
		ConfirmedAt: m.ConfirmedAt,
	}
}

func toMintTransaction(d *dao.MintTransactionDao) *MintTransaction {
	return &MintTransaction{
		ID:          d.ID,
		NFTID:       d.NFTID,
		AuctionID:   d.AuctionID,
		Recipient:   d.Recipient,
		Attempts:    d.Attempts,
		Status:      MintStatus(d.Status),
		TxHash:      d.TxHash,
		BlockNumber: d.BlockNumber,
		GasUsed:     d.GasUsed,
		LastError:   d.LastError,
		CreatedAt:   d.CreatedAt,
		ClaimedAt:   d.ClaimedAt,
		SubmittedAt: d.SubmittedAt,
		ConfirmedAt: d.ConfirmedAt,
	}
}
