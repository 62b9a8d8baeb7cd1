package settler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/artblox/auction-settler/pkg/app/errors"
	apphttp "github.com/artblox/auction-settler/pkg/app/http"
	"github.com/artblox/auction-settler/pkg/store"
)

const defaultMintListLimit = 50

// MintReader is the read-only store surface exposed over HTTP
type MintReader interface {
	GetMintTransaction(ctx context.Context, id string) (*store.MintTransaction, error)
	ListMintTransactions(ctx context.Context, limit int) ([]*store.MintTransaction, error)
}

// Handler exposes settlement progress for operators
type Handler struct {
	engine        *Engine
	mints         MintReader
	signerAddress string
	logger        *zap.Logger
}

// NewHandler creates a new settlement handler
func NewHandler(engine *Engine, mints MintReader, signerAddress string, logger *zap.Logger) *Handler {
	return &Handler{
		engine:        engine,
		mints:         mints,
		signerAddress: signerAddress,
		logger:        logger,
	}
}

// Register mounts the mint visibility routes on the router
func (h *Handler) Register(r chi.Router) {
	r.Get("/mints", apphttp.HandleError(h.listMints))
	r.Get("/mints/{id}", apphttp.HandleError(h.getMint))
}

// Health reports process health and the bid attestation address
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"signer": h.signerAddress,
	})
}

// Ready returns 503 until the listener has completed its first tick
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	if !h.engine.IsReady() {
		apphttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) listMints(w http.ResponseWriter, r *http.Request) error {
	limit := defaultMintListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return apperrors.BadRequestError(err, "limit must be a positive integer")
		}
		limit = parsed
	}

	mints, err := h.mints.ListMintTransactions(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list mint transactions", zap.Error(err))
		return apperrors.GeneralError(err)
	}

	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"mints": mints})
	return nil
}

func (h *Handler) getMint(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	mint, err := h.mints.GetMintTransaction(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.ResourceNotFoundError(err, "mint transaction not found")
		}
		h.logger.Error("Failed to get mint transaction", zap.String("mint_id", id), zap.Error(err))
		return apperrors.GeneralError(err)
	}

	apphttp.WriteJSON(w, http.StatusOK, mint)
	return nil
}
