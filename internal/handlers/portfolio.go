package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type assetRequest struct {
	Ticker       string `json:"ticker"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	CurrentPrice string `json:"current_price"`
}

func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var priceMinor int64
	if req.CurrentPrice != "" {
		parsed, err := parseAmountMinor(req.CurrentPrice)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_price")
			return
		}
		priceMinor = parsed
	}
	asset, err := h.portfolio.CreateAsset(r.Context(), services.AssetInput{
		UserID:            userID,
		Ticker:            req.Ticker,
		Name:              req.Name,
		Type:              models.AssetType(req.Type),
		CurrentPriceMinor: priceMinor,
	})
	if err != nil {
		respondPortfolioError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, asset)
}

func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	positions, err := h.portfolio.Positions(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load positions")
		return
	}
	respondJSON(w, http.StatusOK, positions)
}

type investmentRequest struct {
	Type     string `json:"type"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Fees     string `json:"fees"`
	Date     string `json:"date"`
}

func (h *Handler) RecordInvestment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req investmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	quantity := decimal.Zero
	if req.Quantity != "" {
		parsed, err := decimal.NewFromString(req.Quantity)
		if err != nil || parsed.IsNegative() {
			respondError(w, http.StatusBadRequest, "invalid_quantity")
			return
		}
		quantity = parsed
	}
	priceMinor, err := parseAmountMinor(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price")
		return
	}
	var feesMinor int64
	if req.Fees != "" {
		parsed, err := parseAmountMinor(req.Fees)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_fees")
			return
		}
		feesMinor = parsed
	}
	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date")
			return
		}
		date = parsed
	}
	record, err := h.portfolio.RecordTransaction(r.Context(), services.InvestmentInput{
		UserID:     userID,
		AssetID:    chi.URLParam(r, "id"),
		Type:       models.InvestmentType(req.Type),
		Quantity:   quantity,
		PriceMinor: priceMinor,
		FeesMinor:  feesMinor,
		Date:       date,
	})
	if err != nil {
		respondPortfolioError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, record)
}

func (h *Handler) AssetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	history, err := h.portfolio.AssetHistory(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondPortfolioError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

type assetPriceRequest struct {
	CurrentPrice string `json:"current_price"`
}

func (h *Handler) UpdateAssetPrice(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req assetPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	priceMinor, err := parseAmountMinor(req.CurrentPrice)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price")
		return
	}
	if err := h.portfolio.UpdatePrice(r.Context(), userID, chi.URLParam(r, "id"), priceMinor); err != nil {
		respondPortfolioError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": chi.URLParam(r, "id")})
}

func respondPortfolioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrAssetNotFound):
		respondError(w, http.StatusNotFound, "asset not found")
	case errors.Is(err, services.ErrMissingTicker),
		errors.Is(err, services.ErrInvalidAssetType),
		errors.Is(err, services.ErrInvalidInvestmentType),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrEarningsWithQuantity):
		respondError(w, http.StatusBadRequest, err.Error())
	case services.IsConflict(err):
		respondError(w, http.StatusConflict, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "portfolio operation failed")
	}
}
