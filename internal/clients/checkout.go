package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CheckoutClient calls the external function that creates a hosted Stripe
// Checkout session for a price id and returns its redirect URL.
type CheckoutClient struct {
	functionURL string
	httpClient  *http.Client
}

func NewCheckoutClient(functionURL string) *CheckoutClient {
	return &CheckoutClient{
		functionURL: functionURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type checkoutRequest struct {
	PriceID       string `json:"price_id"`
	CustomerEmail string `json:"customer_email,omitempty"`
	ClientRefID   string `json:"client_reference_id,omitempty"`
	SuccessURL    string `json:"success_url"`
	CancelURL     string `json:"cancel_url"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (c *CheckoutClient) CreateSession(ctx context.Context, priceID, customerEmail, clientRefID, successURL, cancelURL string) (string, error) {
	if c.functionURL == "" {
		return "", fmt.Errorf("checkout function url is not configured")
	}

	body, err := json.Marshal(checkoutRequest{
		PriceID:       priceID,
		CustomerEmail: customerEmail,
		ClientRefID:   clientRefID,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
	})
	if err != nil {
		return "", fmt.Errorf("marshal checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.functionURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post checkout request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("checkout function returned %d: %s", resp.StatusCode, string(payload))
	}

	var parsed checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode checkout response: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("checkout function returned no session url")
	}

	return parsed.URL, nil
}
