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

// OrderClient submits order-creation requests to the marketplace API.
type OrderClient struct {
	client  *http.Client
	baseURL string
}

// NewOrderClient creates a new order client.
func NewOrderClient(baseURL string) *OrderClient {
	return &OrderClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

type orderAPIError struct {
	Message string `json:"message"`
}

// CreateOrder posts the order and interprets the response into a tagged
// outcome: either the processor wants the browser redirected to finish the
// payment, or the order completed inline.
func (c *OrderClient) CreateOrder(ctx context.Context, orderReq *models.OrderCreateRequest) (*models.OrderOutcome, error) {
	payload, err := json.Marshal(orderReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	url := c.baseURL + "/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send order request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr orderAPIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("order creation failed (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("order creation failed (status %d): %s", resp.StatusCode, string(body))
	}

	var orderResp models.OrderCreateResponse
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	return &models.OrderOutcome{
		PaymentMethod:    orderResp.PaymentMethod,
		RequiresRedirect: orderResp.PaymentResponse.RedirectURL != "",
		RedirectURL:      orderResp.PaymentResponse.RedirectURL,
	}, nil
}
