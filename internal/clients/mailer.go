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

// MailSettings is forwarded verbatim to the mail function; it carries the
// sender identity the function signs outgoing mail with.
type MailSettings struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
}

// MailItem is one outgoing email in a dispatch batch.
type MailItem struct {
	Settings      MailSettings `json:"settings"`
	To            string       `json:"to"`
	Subject       string       `json:"subject"`
	HTML          string       `json:"html"`
	InvoicePDFURL string       `json:"invoice_pdf_url,omitempty"`
}

// MailerClient posts email batches to the external dispatch function. There
// is no local queuing or retry; the function owns delivery.
type MailerClient struct {
	functionURL string
	apiKey      string
	httpClient  *http.Client
}

func NewMailerClient(functionURL, apiKey string) *MailerClient {
	return &MailerClient{
		functionURL: functionURL,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *MailerClient) SendBatch(ctx context.Context, items []MailItem) error {
	if c.functionURL == "" {
		return fmt.Errorf("mail function url is not configured")
	}
	if len(items) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string]any{"emails": items})
	if err != nil {
		return fmt.Errorf("marshal mail batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.functionURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post mail batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail function returned %d: %s", resp.StatusCode, string(payload))
	}

	return nil
}
