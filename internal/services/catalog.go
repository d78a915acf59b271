package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"events-marketplace-web/internal/models"
)

// CatalogService reads event detail from the marketplace API. It is the
// price source at checkout; this app never stores catalog data.
type CatalogService struct {
	client  *http.Client
	baseURL string
}

// NewCatalogService creates a new catalog client.
func NewCatalogService(baseURL string) *CatalogService {
	return &CatalogService{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// GetEvent fetches one event with its lineups and ticket types.
func (s *CatalogService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	url := fmt.Sprintf("%s/events/%s", s.baseURL, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create event request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read event response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, models.ErrEventNotFound
	default:
		return nil, fmt.Errorf("event request failed (status %d): %s", resp.StatusCode, string(body))
	}

	var event models.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event response: %w", err)
	}
	return &event, nil
}
