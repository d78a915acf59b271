package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"events-marketplace-web/internal/models"
)

// Discount types the marketplace API hands back for a valid promo code.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// PromoVerdict is the interpreted answer of the promo validation endpoint.
type PromoVerdict struct {
	Valid  bool
	Reason string
	Promo  *PromoCode
}

// PromoCode describes an accepted code and its discount descriptor.
type PromoCode struct {
	ID            string
	Code          string
	DiscountValue int
	DiscountType  string
}

// PromoService validates promo codes against the marketplace API.
type PromoService struct {
	client  *http.Client
	baseURL string
}

// NewPromoService creates a new promo validation client.
func NewPromoService(baseURL string) *PromoService {
	return &PromoService{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

type promoCheckRequest struct {
	PromoCode string `json:"promo_code"`
	EventID   string `json:"event_id"`
}

type promoCheckResponse struct {
	IsValid   bool              `json:"is_valid"`
	Reason    string            `json:"reason,omitempty"`
	PromoCode *promoCodePayload `json:"promo_code,omitempty"`
}

type promoCodePayload struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	DiscountValue int    `json:"discount_value"`
	DiscountType  string `json:"discount_type"`
}

// CheckPromoCode asks the marketplace API whether a code applies to the
// given event. A semantic rejection is a Valid=false verdict, not an error;
// errors are transport or server failures.
func (s *PromoService) CheckPromoCode(ctx context.Context, code, eventID string) (*PromoVerdict, error) {
	payload, err := json.Marshal(promoCheckRequest{PromoCode: code, EventID: eventID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal promo check request: %w", err)
	}

	url := s.baseURL + "/promo/check"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create promo check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send promo check request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read promo check response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("promo check failed (status %d): %s", resp.StatusCode, string(body))
	}

	var checkResp promoCheckResponse
	if err := json.Unmarshal(body, &checkResp); err != nil {
		return nil, fmt.Errorf("failed to decode promo check response: %w", err)
	}

	verdict := &PromoVerdict{Valid: checkResp.IsValid, Reason: checkResp.Reason}
	if checkResp.PromoCode != nil {
		verdict.Promo = &PromoCode{
			ID:            checkResp.PromoCode.ID,
			Code:          checkResp.PromoCode.Code,
			DiscountValue: checkResp.PromoCode.DiscountValue,
			DiscountType:  checkResp.PromoCode.DiscountType,
		}
	}
	return verdict, nil
}

// NewPromoApplication turns a verdict into a concrete discount against the
// subtotal as it stands right now. The computed amount is frozen for the
// rest of checkout: it is not recomputed if the selection changes, only a
// remove-and-reapply picks up a new subtotal.
func NewPromoApplication(verdict *PromoVerdict, subtotal int) (*models.PromoApplication, error) {
	if !verdict.Valid || verdict.Promo == nil {
		reason := verdict.Reason
		if reason == "" {
			reason = "This promo code is not valid."
		}
		return nil, &models.PromoError{Reason: reason}
	}

	var discount int
	switch verdict.Promo.DiscountType {
	case DiscountPercentage:
		discount = subtotal * verdict.Promo.DiscountValue / 100
	case DiscountFixed:
		discount = verdict.Promo.DiscountValue
	default:
		return nil, &models.PromoError{Reason: "This promo code is not valid."}
	}

	return &models.PromoApplication{
		ID:             verdict.Promo.ID,
		Code:           verdict.Promo.Code,
		DiscountAmount: discount,
	}, nil
}

// TotalAfterDiscount applies a frozen promo discount to a subtotal. The
// result never goes negative.
func TotalAfterDiscount(subtotal int, promo *models.PromoApplication) int {
	if promo == nil {
		return subtotal
	}
	total := subtotal - promo.DiscountAmount
	if total < 0 {
		total = 0
	}
	return total
}
