package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sliramanoel/venda/internal/model"
)

// Webhook event names sent by OrionPay
const (
	EventPaymentSuccess  = "payment.success"
	EventPurchaseCreated = "purchase.created"

	webhookActor = "webhook:orionpay"
)

// WebhookService reconciles provider notifications with orders
type WebhookService interface {
	HandleOrionPay(ctx context.Context, body []byte, signature string) (*WebhookResult, error)
}

// WebhookResult is the acknowledgement returned to the provider
type WebhookResult struct {
	Received bool   `json:"received"`
	Event    string `json:"event"`
}

// WebhookOptions configures signature checking
type WebhookOptions struct {
	Secret           string
	RequireSignature bool
	Now              func() time.Time
}

type webhookServiceImpl struct {
	store            OrderStore
	secret           string
	requireSignature bool
	now              func() time.Time
}

// NewWebhookService creates a WebhookService over store
func NewWebhookService(store OrderStore, opts WebhookOptions) WebhookService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &webhookServiceImpl{
		store:            store,
		secret:           opts.Secret,
		requireSignature: opts.RequireSignature,
		now:              opts.Now,
	}
}

type webhookEnvelope struct {
	Event json.RawMessage `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type paymentEventData struct {
	TransactionID string
	BuyerEmail    string
	PurchaseID    string
}

// HandleOrionPay verifies and applies a notification. Unmatched payments are logged and
// acknowledged so the provider does not retry them forever. Only a body that is not JSON
// at all is rejected; unexpected shapes are acknowledged without state change.
func (s *webhookServiceImpl) HandleOrionPay(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if err := s.verify(body, strings.TrimSpace(signature)); err != nil {
		log.Printf("[WEBHOOK] rejected notification: %v", err)
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrInvalidPayload)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		log.Printf("[WEBHOOK] body is not an object, acknowledging: %v", err)
	}
	event := jsonText(envelope.Event)
	log.Printf("[WEBHOOK] received %q", event)

	switch event {
	case EventPaymentSuccess:
		if err := s.applyPayment(ctx, decodePaymentData(envelope.Data), envelope.Data); err != nil {
			return nil, err
		}
	case EventPurchaseCreated:
		log.Printf("[WEBHOOK] purchase created: %s", decodePaymentData(envelope.Data).PurchaseID)
	default:
		log.Printf("[WEBHOOK] ignoring event %q", event)
	}

	return &WebhookResult{Received: true, Event: event}, nil
}

// decodePaymentData reads the ids the provider sends, accepting numbers as well as
// strings. Anything other than an object yields empty data.
func decodePaymentData(raw json.RawMessage) paymentEventData {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return paymentEventData{}
	}
	return paymentEventData{
		TransactionID: jsonText(fields["transactionId"]),
		BuyerEmail:    jsonText(fields["buyerEmail"]),
		PurchaseID:    jsonText(fields["purchaseId"]),
	}
}

// jsonText renders a JSON string or number as text; other values give "".
func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	}
	return ""
}

// verify checks the hex HMAC-SHA256 of the raw body. Without a secret, or without a
// signature while signatures are optional, the check is skipped.
func (s *webhookServiceImpl) verify(body []byte, signature string) error {
	if s.secret == "" {
		return nil
	}
	if signature == "" {
		if s.requireSignature {
			return fmt.Errorf("%w: missing signature", ErrInvalidSignature)
		}
		return nil
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}

func (s *webhookServiceImpl) applyPayment(ctx context.Context, data paymentEventData, raw json.RawMessage) error {
	order, err := s.resolveOrder(ctx, data)
	if errors.Is(err, ErrOrderNotFound) {
		log.Printf("[WEBHOOK] no order for transaction %q (buyer %q), acknowledging", data.TransactionID, data.BuyerEmail)
		return nil
	}
	if err != nil {
		return err
	}

	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	changed, err := s.store.MarkPaid(WithActor(ctx, webhookActor), order.ID, raw, s.now().UTC())
	if err != nil {
		return err
	}
	if changed {
		log.Printf("[WEBHOOK] order %s marked as paid", order.OrderNumber)
	} else {
		log.Printf("[WEBHOOK] order %s already %s, ignoring repeated payment", order.OrderNumber, order.Status)
	}
	return nil
}

// resolveOrder matches by transaction id first, then falls back to the buyer's most
// recent pending order.
func (s *webhookServiceImpl) resolveOrder(ctx context.Context, data paymentEventData) (*model.Order, error) {
	if data.TransactionID != "" {
		order, err := s.store.FindByTransactionID(ctx, data.TransactionID)
		if !errors.Is(err, ErrOrderNotFound) {
			return order, err
		}
	}

	email := strings.ToLower(strings.TrimSpace(data.BuyerEmail))
	if email == "" {
		return nil, ErrOrderNotFound
	}
	return s.store.FindLatestPendingByEmail(ctx, email)
}
