// Package gateway talks to the external PIX payment provider.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOrionPayURL = "https://payapi.orion.moe/api/v1"
	DefaultTimeout     = 30 * time.Second
	maxErrorBody       = 2048
)

// ChargeRequest is what the provider needs to issue a PIX charge.
type ChargeRequest struct {
	Amount float64 `json:"amount"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
}

// Charge is the provider's answer to a successful charge request.
type Charge struct {
	PixCode       string
	QRCode        string
	TransactionID string
}

// StatusError is returned when the provider answers with anything but 200.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("orionpay returned status %d: %s", e.StatusCode, e.Body)
}

// OrionPayClient is an HTTP client for the OrionPay PIX API.
type OrionPayClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOrionPayClient creates a client; an empty baseURL or zero timeout use the defaults.
func NewOrionPayClient(baseURL, apiKey string, timeout time.Duration) *OrionPayClient {
	if baseURL == "" {
		baseURL = DefaultOrionPayURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OrionPayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chargeBody struct {
	PixCode string `json:"pixCode"`
	QRCode  string `json:"qrCode"`
	ID      string `json:"id"`
}

// CreatePixCharge requests a new PIX charge. The response may wrap the charge in a
// "data" envelope or return it flat.
func (c *OrionPayClient) CreatePixCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pix/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build charge request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call orionpay: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read orionpay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope struct {
		Data *chargeBody `json:"data"`
		chargeBody
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode orionpay response: %w", err)
	}

	charge := envelope.chargeBody
	if envelope.Data != nil {
		charge = *envelope.Data
	}

	return &Charge{
		PixCode:       charge.PixCode,
		QRCode:        charge.QRCode,
		TransactionID: charge.ID,
	}, nil
}
