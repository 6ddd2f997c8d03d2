// Package handler exposes snapshots and reward optimization over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FACorreiaa/card-reward-tracker/internal/domain/rewards"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/spend"
	"github.com/FACorreiaa/card-reward-tracker/internal/domain/taxonomy"
	"github.com/FACorreiaa/card-reward-tracker/pkg/money"
)

// HoldingStore manages which cards a user pays with.
type HoldingStore interface {
	GetHoldings(ctx context.Context, userID uuid.UUID) (rewards.Holdings, error)
	SetHolding(ctx context.Context, userID uuid.UUID, cardID rewards.CardID, bucket *taxonomy.Bucket, isDefault bool) error
}

// RewardsHandler handles snapshot and optimizer endpoints.
type RewardsHandler struct {
	rewards   *rewards.Service
	snapshots rewards.SnapshotStore
	holdings  HoldingStore
	currency  string
	logger    *slog.Logger
}

// NewRewardsHandler creates a rewards handler. Currency only affects display
// strings in responses; all stored amounts are currency-agnostic decimals.
func NewRewardsHandler(svc *rewards.Service, snapshots rewards.SnapshotStore, holdings HoldingStore, currency string, logger *slog.Logger) *RewardsHandler {
	return &RewardsHandler{
		rewards:   svc,
		snapshots: snapshots,
		holdings:  holdings,
		currency:  currency,
		logger:    logger,
	}
}

// GetSnapshot handles GET /v1/users/{userID}/snapshots/{month}.
func (h *RewardsHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := h.pathParams(w, r)
	if !ok {
		return
	}

	snapshot, err := h.snapshots.Get(r.Context(), userID, month)
	if errors.Is(err, spend.ErrSnapshotNotFound) {
		respondError(w, http.StatusNotFound, "no snapshot for this month")
		return
	}
	if err != nil {
		h.logger.Error("failed to load snapshot", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"snapshot":      snapshot,
		"total":         snapshot.Total(),
		"total_display": money.NewFromDecimal(snapshot.Total(), h.currency).Display(),
	})
}

// Optimize handles POST /v1/users/{userID}/optimize/{month}.
func (h *RewardsHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := h.pathParams(w, r)
	if !ok {
		return
	}

	result, err := h.rewards.Optimize(r.Context(), userID, month)
	if err != nil {
		h.logger.Error("optimization failed",
			slog.String("user_id", userID.String()),
			slog.String("month", month.String()),
			slog.Any("error", err),
		)
		respondError(w, http.StatusInternalServerError, "optimization failed")
		return
	}

	respondJSON(w, http.StatusOK, h.decorate(result))
}

// GetResult handles GET /v1/users/{userID}/results/{month}.
func (h *RewardsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	userID, month, ok := h.pathParams(w, r)
	if !ok {
		return
	}

	result, err := h.rewards.GetResult(r.Context(), userID, month)
	if errors.Is(err, rewards.ErrResultNotFound) {
		respondError(w, http.StatusNotFound, "no result for this month, run optimize first")
		return
	}
	if err != nil {
		h.logger.Error("failed to load result", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to load result")
		return
	}

	respondJSON(w, http.StatusOK, h.decorate(result))
}

type setCardRequest struct {
	CardID    string  `json:"card_id"`
	Bucket    *string `json:"bucket,omitempty"`
	IsDefault bool    `json:"is_default"`
}

// SetCard handles POST /v1/users/{userID}/cards. A request with a bucket pins
// the card to that bucket; is_default marks it as the card for everything
// else.
func (h *RewardsHandler) SetCard(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req setCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.CardID == "" {
		respondError(w, http.StatusBadRequest, "card_id is required")
		return
	}

	var bucket *taxonomy.Bucket
	if req.Bucket != nil {
		b := taxonomy.Bucket(*req.Bucket)
		if !b.Valid() {
			respondError(w, http.StatusBadRequest, "unknown bucket")
			return
		}
		bucket = &b
	}

	if err := h.holdings.SetHolding(r.Context(), userID, rewards.CardID(req.CardID), bucket, req.IsDefault); err != nil {
		h.logger.Error("failed to save card holding", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to save card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCards handles GET /v1/users/{userID}/cards.
func (h *RewardsHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	holdings, err := h.holdings.GetHoldings(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load card holdings", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to load cards")
		return
	}
	respondJSON(w, http.StatusOK, holdings)
}

// decorate attaches formatted totals alongside the raw result.
func (h *RewardsHandler) decorate(result rewards.Result) map[string]any {
	return map[string]any{
		"result":               result,
		"total_missed_display": money.NewFromDecimal(result.TotalMissed, h.currency).Display(),
	}
}

func (h *RewardsHandler) pathParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, spend.MonthKey, bool) {
	userID, err := uuid.Parse(r.PathValue("userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, "", false
	}

	month, err := spend.ParseMonth(r.PathValue("month"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "month must look like 2025-03")
		return uuid.Nil, "", false
	}
	return userID, month, true
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
