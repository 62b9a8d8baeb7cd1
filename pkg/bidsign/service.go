// Package bidsign implements the bid attestation service: it prices a bid in
// USD via the configured oracle and returns a signature the auction house
// contract accepts alongside the bid.
package bidsign

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/artblox/auction-settler/internal/metrics"
	apperrors "github.com/artblox/auction-settler/pkg/app/errors"
	"github.com/artblox/auction-settler/pkg/oracle"
	"github.com/artblox/auction-settler/pkg/signer"
)

// SignBidRequest is the sign-bid request body
type SignBidRequest struct {
	AuctionID int64  `json:"auction_id" validate:"required,gt=0"`
	Bidder    string `json:"bidder" validate:"required"`
	Token     string `json:"token" validate:"required"`
	Amount    string `json:"amount" validate:"required"`
}

// SignBidResponse is the sign-bid response body
type SignBidResponse struct {
	AuctionID   int64     `json:"auction_id"`
	Bidder      string    `json:"bidder"`
	Token       string    `json:"token"`
	Amount      string    `json:"amount"`
	USDValue    string    `json:"usd_value"`
	Price       string    `json:"price"`
	PriceSource string    `json:"price_source"`
	Signature   string    `json:"signature"`
	SignedAt    time.Time `json:"signed_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service prices and signs bids
type Service struct {
	signer   *signer.Signer
	oracle   oracle.PriceOracle
	validity time.Duration
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new bid signing service
func NewService(s *signer.Signer, o oracle.PriceOracle, validity time.Duration, logger *zap.Logger) *Service {
	return &Service{
		signer:   s,
		oracle:   o,
		validity: validity,
		validate: validator.New(),
		logger:   logger,
	}
}

// SignBid validates the request, computes the bid's USD value and returns a
// signed attestation. Errors are ServiceErrors carrying the HTTP category.
func (s *Service) SignBid(req *SignBidRequest) (*SignBidResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.BadRequestError(err, "missing or invalid request fields")
	}
	if !common.IsHexAddress(req.Bidder) {
		return nil, apperrors.BadRequestError(nil, "bidder is not a valid address")
	}
	if !common.IsHexAddress(req.Token) {
		return nil, apperrors.BadRequestError(nil, "token is not a valid address")
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		return nil, apperrors.BadRequestError(nil, "amount is not a base-10 integer")
	}
	if amount.Sign() <= 0 {
		return nil, apperrors.BadRequestError(nil, "amount must be positive")
	}

	token := common.HexToAddress(req.Token)
	quote, err := s.oracle.Quote(token)
	if err != nil {
		if errors.Is(err, oracle.ErrUnsupportedToken) {
			return nil, apperrors.NotSupportedError(err, "payment token is not supported")
		}
		return nil, apperrors.DependencyFailureError(err, "price lookup failed")
	}

	usdValue := usdFixedPoint(amount, quote)

	signature, err := s.signer.SignBid(big.NewInt(req.AuctionID), common.HexToAddress(req.Bidder), token, amount, usdValue)
	if err != nil {
		return nil, apperrors.GeneralError(fmt.Errorf("failed to sign bid: %w", err))
	}

	now := time.Now().UTC()
	metrics.BidsSigned.WithLabelValues(quote.Symbol).Inc()

	s.logger.Info("Signed bid",
		zap.Int64("auction_id", req.AuctionID),
		zap.String("bidder", req.Bidder),
		zap.String("token_symbol", quote.Symbol),
		zap.String("amount", amount.String()),
		zap.String("usd_value", usdValue.String()))

	return &SignBidResponse{
		AuctionID:   req.AuctionID,
		Bidder:      req.Bidder,
		Token:       req.Token,
		Amount:      amount.String(),
		USDValue:    usdValue.String(),
		Price:       quote.PriceUSD.String(),
		PriceSource: quote.Source,
		Signature:   hexutil.Encode(signature),
		SignedAt:    now,
		ExpiresAt:   now.Add(s.validity),
	}, nil
}

// usdFixedPoint converts a raw token amount to its USD value as an 18
// decimal fixed-point integer, matching the uint256 the contract verifies.
func usdFixedPoint(amount *big.Int, quote *oracle.Quote) *big.Int {
	value := decimal.NewFromBigInt(amount, -quote.Decimals).Mul(quote.PriceUSD)
	return value.Shift(18).Truncate(0).BigInt()
}
