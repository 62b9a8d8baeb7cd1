package settler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artblox/auction-settler/internal/metrics"
	"github.com/artblox/auction-settler/pkg/ethereum"
	"github.com/artblox/auction-settler/pkg/store"
)

const eventTypeAuctionSettled = "auction_settled"

// errUnknownAuction marks a settled-auction event whose auction row has not
// been created by the admin flow yet.
var errUnknownAuction = errors.New("auction not found for event")

func (e *Engine) listenLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.ListenInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.stopCh:
			return
		case <-ticker.C:
			if err := e.listenTick(ctx); err != nil {
				e.logger.Error("Listener tick failed", zap.Error(err))
				metrics.ErrorsTotal.WithLabelValues("listener", "tick").Inc()
			}
		}
	}
}

// listenTick scans the half-open block range (lastBlock, head] for settled
// auction events. The cursor only advances after every log in the range has
// been handled or explicitly skipped, so an RPC failure simply re-fetches
// the same range next tick.
func (e *Engine) listenTick(ctx context.Context) error {
	head, err := e.source.GetLatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain head: %w", err)
	}
	if head <= e.lastBlock {
		e.ready.Store(true)
		return nil
	}

	events, err := e.source.FilterAuctionSettled(ctx, e.lastBlock+1, head)
	if err != nil {
		return fmt.Errorf("failed to fetch auction events: %w", err)
	}

	for _, event := range events {
		if err := e.handleAuctionSettled(ctx, event); err != nil {
			if !errors.Is(err, errUnknownAuction) {
				metrics.EventsObserved.WithLabelValues(eventTypeAuctionSettled, "error").Inc()
			}
			// The cursor must stay put so the range is re-fetched next
			// tick. Replays are safe: anything already written durably is
			// skipped by the dedup check. Advancing here would drop the
			// settlement forever on a transient store error.
			return fmt.Errorf("failed to handle event %s/%d: %w", event.TxHash.Hex(), event.LogIndex, err)
		}
	}

	e.lastBlock = head
	metrics.LastProcessedBlock.Set(float64(head))
	e.ready.Store(true)
	return nil
}

// handleAuctionSettled converts one settled-auction log into durable state:
// the event log row, the auction's winner fields, the NFT transition and
// one pending mint transaction, all in a single store transaction.
func (e *Engine) handleAuctionSettled(ctx context.Context, event *ethereum.AuctionSettledEvent) error {
	txHash := event.TxHash.Hex()

	existing, err := e.store.GetEventLog(ctx, txHash, uint64(event.LogIndex))
	if err != nil {
		return err
	}
	if existing != nil {
		// Already handled, even if a downstream step previously failed.
		// Never retried, to avoid enqueueing a second mint.
		metrics.EventsObserved.WithLabelValues(eventTypeAuctionSettled, "duplicate").Inc()
		return nil
	}

	auctionID := event.AuctionID.Int64()
	auction, err := e.store.GetAuction(ctx, auctionID)
	if err != nil {
		return err
	}
	if auction == nil {
		metrics.EventsObserved.WithLabelValues(eventTypeAuctionSettled, "unknown_auction").Inc()
		if e.config.RetryUnknownAuction {
			return fmt.Errorf("auction %d: %w", auctionID, errUnknownAuction)
		}
		// Record the log so it is never revisited, and leave a trail for
		// the operator: the auction must be created by the admin flow
		// before it can settle.
		e.logger.Error("Observed settlement for unknown auction",
			zap.Int64("auction_id", auctionID),
			zap.String("tx_hash", txHash))
		eventLog := e.newEventLog(event)
		if _, err := e.store.CreateEventLog(ctx, eventLog); err != nil {
			return err
		}
		return e.store.MarkEventLogProcessed(ctx, eventLog.ID)
	}

	eventLog := e.newEventLog(event)
	inserted, err := e.store.CreateEventLog(ctx, eventLog)
	if err != nil {
		return err
	}
	if !inserted {
		// Lost a race with another listener instance.
		metrics.EventsObserved.WithLabelValues(eventTypeAuctionSettled, "duplicate").Inc()
		return nil
	}

	mint := &store.MintTransaction{
		ID:        uuid.NewString(),
		NFTID:     auction.NFTID,
		AuctionID: auctionID,
		Recipient: event.Winner.Hex(),
		Status:    store.MintStatusPending,
	}

	err = e.store.SettleAuctionWin(ctx, store.SettleWinParams{
		EventLogID: eventLog.ID,
		AuctionID:  auctionID,
		NFTID:      auction.NFTID,
		Winner:     event.Winner.Hex(),
		Token:      event.Token.Hex(),
		Amount:     event.Amount.String(),
		USDValue:   event.USDValue.String(),
		Mint:       mint,
	})
	if err != nil {
		return fmt.Errorf("failed to settle auction %d: %w", auctionID, err)
	}

	metrics.EventsObserved.WithLabelValues(eventTypeAuctionSettled, "settled").Inc()
	e.logger.Info("Auction settled",
		zap.Int64("auction_id", auctionID),
		zap.String("winner", event.Winner.Hex()),
		zap.String("amount", event.Amount.String()),
		zap.String("mint_id", mint.ID))
	return nil
}

func (e *Engine) newEventLog(event *ethereum.AuctionSettledEvent) *store.EventLog {
	return &store.EventLog{
		EventType:   eventTypeAuctionSettled,
		Contract:    event.Contract.Hex(),
		TxHash:      event.TxHash.Hex(),
		LogIndex:    uint64(event.LogIndex),
		BlockNumber: int64(event.BlockNumber),
		Payload: map[string]string{
			"auction_id": event.AuctionID.String(),
			"winner":     event.Winner.Hex(),
			"token":      event.Token.Hex(),
			"amount":     event.Amount.String(),
			"usd_value":  event.USDValue.String(),
		},
	}
}
