package bidsign

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/artblox/auction-settler/pkg/app/errors"
	apphttp "github.com/artblox/auction-settler/pkg/app/http"
)

// Handler exposes the bid signing service over HTTP
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new bid signing handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the sign-bid route on the router
func (h *Handler) Register(r chi.Router) {
	r.Post("/sign-bid", apphttp.HandleError(h.signBid))
}

func (h *Handler) signBid(w http.ResponseWriter, r *http.Request) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read request")
	}

	var req SignBidRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return apperrors.BadRequestError(err, "invalid JSON")
	}

	resp, err := h.service.SignBid(&req)
	if err != nil {
		h.logger.Warn("Sign bid request rejected", zap.Error(err))
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}
