package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/sliramanoel/venda/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func attachTransaction(t *testing.T, store OrderStore, order *model.Order, txID string) {
	t.Helper()
	err := store.SavePaymentArtifact(context.Background(), order.ID, model.PaymentArtifact{
		PixCode:       "000201",
		TransactionID: txID,
		ExpiresAt:     time.Now().Add(time.Hour),
	}, time.Now())
	require.NoError(t, err)
}

func TestWebhookPaymentByTransactionID(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	attachTransaction(t, store, order, "tx-abc")

	paidAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewWebhookService(store, WebhookOptions{Now: fixedClock(paidAt)})

	body := []byte(`{"event":"payment.success","data":{"transactionId":"tx-abc","amount":194}}`)
	result, err := svc.HandleOrionPay(context.Background(), body, "")
	require.NoError(t, err)
	assert.Equal(t, &WebhookResult{Received: true, Event: EventPaymentSuccess}, result)

	stored, err := store.FindByRef(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, stored.Status)
	assert.True(t, stored.PaidAt.Equal(paidAt))
	assert.JSONEq(t, `{"transactionId":"tx-abc","amount":194}`, string(stored.PaymentData))
}

func TestWebhookRedeliveryIsNoOp(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	attachTransaction(t, store, order, "tx-abc")
	ctx := context.Background()

	firstPaid := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewWebhookService(store, WebhookOptions{Now: fixedClock(firstPaid)}).(*webhookServiceImpl)
	body := []byte(`{"event":"payment.success","data":{"transactionId":"tx-abc"}}`)

	_, err := svc.HandleOrionPay(ctx, body, "")
	require.NoError(t, err)

	_, err = NewOrderService(store).UpdateStatus(ctx, order.ID, model.OrderStatusShipped)
	require.NoError(t, err)

	svc.now = fixedClock(firstPaid.Add(time.Hour))
	result, err := svc.HandleOrionPay(ctx, body, "")
	require.NoError(t, err)
	assert.True(t, result.Received)

	stored, err := store.FindByRef(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, stored.Status)
	assert.True(t, stored.PaidAt.Equal(firstPaid))
}

func TestWebhookFallsBackToLatestPendingOrderByEmail(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	svc := NewOrderService(store).(*orderServiceImpl)
	ctx := context.Background()

	svc.now = fixedClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	older, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)
	svc.now = fixedClock(time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC))
	newer, err := svc.CreateOrder(ctx, validOrderRequest())
	require.NoError(t, err)

	hooks := NewWebhookService(store, WebhookOptions{})
	body := []byte(`{"event":"payment.success","data":{"transactionId":"unknown","buyerEmail":" JOAO.SILVA@gmail.com "}}`)
	_, err = hooks.HandleOrionPay(ctx, body, "")
	require.NoError(t, err)

	got, err := store.FindByRef(ctx, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, got.Status)

	got, err = store.FindByRef(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
}

func TestWebhookUnmatchedPaymentIsAcknowledged(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	svc := NewWebhookService(store, WebhookOptions{})

	body := []byte(`{"event":"payment.success","data":{"transactionId":"nope","buyerEmail":"someone.else@gmail.com"}}`)
	result, err := svc.HandleOrionPay(context.Background(), body, "")
	require.NoError(t, err)
	assert.True(t, result.Received)

	stored, err := store.FindByRef(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
}

func TestWebhookOtherEventsAreAcknowledged(t *testing.T) {
	svc := NewWebhookService(NewOrderStore(newTestDB(t)), WebhookOptions{})

	for _, body := range []string{
		`{"event":"purchase.created","data":{"purchaseId":"p-1"}}`,
		`{"event":"refund.created","data":null}`,
		`{"event":"payment.success"}`,
	} {
		result, err := svc.HandleOrionPay(context.Background(), []byte(body), "")
		require.NoError(t, err, body)
		assert.True(t, result.Received)
	}
}

func TestWebhookSignature(t *testing.T) {
	body := []byte(`{"event":"purchase.created","data":{}}`)
	store := NewOrderStore(newTestDB(t))

	tests := []struct {
		name      string
		opts      WebhookOptions
		signature string
		wantErr   error
	}{
		{"no secret skips check", WebhookOptions{}, "garbage", nil},
		{"valid signature", WebhookOptions{Secret: "s3cret"}, sign("s3cret", body), nil},
		{"uppercase hex", WebhookOptions{Secret: "s3cret"}, strings.ToUpper(sign("s3cret", body)), nil},
		{"wrong signature", WebhookOptions{Secret: "s3cret"}, sign("other", body), ErrInvalidSignature},
		{"unsigned allowed", WebhookOptions{Secret: "s3cret"}, "", nil},
		{"unsigned required", WebhookOptions{Secret: "s3cret", RequireSignature: true}, "", ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWebhookService(store, tt.opts).HandleOrionPay(context.Background(), body, tt.signature)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWebhookMalformedBody(t *testing.T) {
	svc := NewWebhookService(NewOrderStore(newTestDB(t)), WebhookOptions{})

	_, err := svc.HandleOrionPay(context.Background(), []byte(`{not json`), "")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = svc.HandleOrionPay(context.Background(), []byte(`{"event":"payment.success",`), "")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestWebhookUnexpectedShapesAreAcknowledged(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	svc := NewWebhookService(store, WebhookOptions{})

	for _, body := range []string{
		`{"event":"refund.created","data":[1,2]}`,
		`{"event":"payment.success","data":"text"}`,
		`{"event":"payment.success","data":[1,2]}`,
		`{"event":"purchase.created","data":{"purchaseId":991}}`,
		`{"event":42}`,
		`[1,2]`,
	} {
		t.Run(body, func(t *testing.T) {
			result, err := svc.HandleOrionPay(context.Background(), []byte(body), "")
			require.NoError(t, err)
			assert.True(t, result.Received)
		})
	}

	stored, err := store.FindByRef(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, stored.Status)
}

func TestWebhookNumericTransactionID(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	attachTransaction(t, store, order, "12345")
	svc := NewWebhookService(store, WebhookOptions{})

	result, err := svc.HandleOrionPay(context.Background(), []byte(`{"event":"payment.success","data":{"transactionId":12345}}`), "")
	require.NoError(t, err)
	assert.Equal(t, EventPaymentSuccess, result.Event)

	stored, err := store.FindByRef(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, stored.Status)
}
