package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sliramanoel/venda/internal/gateway"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/pix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	charge *gateway.Charge
	err    error
	calls  int
	last   gateway.ChargeRequest
}

func (g *fakeGateway) CreatePixCharge(_ context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	g.calls++
	g.last = req
	if g.err != nil {
		return nil, g.err
	}
	return g.charge, nil
}

type stubRenderer struct{ calls int }

func (r *stubRenderer) Render(payload string) (string, error) {
	r.calls++
	return "data:image/png;base64,stub", nil
}

type staticMerchant string

func (m staticMerchant) MerchantName(context.Context) string { return string(m) }

var paymentNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestPaymentService(store OrderStore, opts PaymentOptions) *paymentServiceImpl {
	if opts.Renderer == nil {
		opts.Renderer = &stubRenderer{}
	}
	if opts.Now == nil {
		opts.Now = fixedClock(paymentNow)
	}
	return NewPaymentService(store, opts).(*paymentServiceImpl)
}

func TestGeneratePixPaymentLocally(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	svc := newTestPaymentService(store, PaymentOptions{
		Settings: model.PaymentSettings{TestMode: true},
		Merchant: staticMerchant("Loja Açaí"),
	})

	artifact, err := svc.GeneratePixPayment(context.Background(), order.ID)
	require.NoError(t, err)

	assert.True(t, artifact.TestMode)
	assert.Equal(t, "PIX-TEST-"+strings.ToUpper(strings.ReplaceAll(order.ID, "-", "")), artifact.TransactionID)
	assert.Equal(t, "data:image/png;base64,stub", artifact.QRCode)
	assert.True(t, artifact.ExpiresAt.Equal(paymentNow.Add(30*time.Minute)))

	fields, err := pix.Decode(artifact.PixCode)
	require.NoError(t, err)
	name, ok := pix.Lookup(fields, "59")
	require.True(t, ok)
	assert.Equal(t, "Loja Açaí", name)
	amount, _ := pix.Lookup(fields, "54")
	assert.Equal(t, "194.00", amount)

	stored, err := store.FindByRef(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PixCode)
	assert.Equal(t, artifact.PixCode, *stored.PixCode)
	require.NotNil(t, stored.PixTestMode)
	assert.True(t, *stored.PixTestMode)
}

// localZoneStore returns orders with timestamps in a non-UTC location, as pgx does for
// timestamptz columns.
type localZoneStore struct {
	OrderStore
}

func (s localZoneStore) FindByRef(ctx context.Context, ref string) (*model.Order, error) {
	order, err := s.OrderStore.FindByRef(ctx, ref)
	if err == nil && order.PixExpiration != nil {
		local := order.PixExpiration.In(time.FixedZone("BRT", -3*60*60))
		order.PixExpiration = &local
	}
	return order, err
}

func TestGeneratePixPaymentIsIdempotentWithinWindow(t *testing.T) {
	store := localZoneStore{OrderStore: NewOrderStore(newTestDB(t))}
	order := createTestOrder(t, store)
	gw := &fakeGateway{charge: &gateway.Charge{PixCode: "000201gateway", QRCode: "data:image/png;base64,gw", TransactionID: "tx-123"}}
	svc := newTestPaymentService(store, PaymentOptions{
		Settings: model.PaymentSettings{Gateway: "orionpay", APIKey: "key", ExpirationMinutes: 10},
		Gateway:  gw,
	})

	first, err := svc.GeneratePixPayment(context.Background(), order.OrderNumber)
	require.NoError(t, err)

	svc.now = fixedClock(paymentNow.Add(9 * time.Minute))
	second, err := svc.GeneratePixPayment(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, gw.calls)
	assert.Equal(t, first.PixCode, second.PixCode)
	assert.Equal(t, first.QRCode, second.QRCode)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, first.TestMode, second.TestMode)
	assert.True(t, first.ExpiresAt.Equal(second.ExpiresAt))

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestGeneratePixPaymentRegeneratesAfterExpiry(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	gw := &fakeGateway{charge: &gateway.Charge{PixCode: "000201gateway", TransactionID: "tx-123"}}
	svc := newTestPaymentService(store, PaymentOptions{
		Settings: model.PaymentSettings{APIKey: "key", ExpirationMinutes: 10},
		Gateway:  gw,
	})

	_, err := svc.GeneratePixPayment(context.Background(), order.ID)
	require.NoError(t, err)

	later := paymentNow.Add(11 * time.Minute)
	svc.now = fixedClock(later)
	again, err := svc.GeneratePixPayment(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, gw.calls)
	assert.True(t, again.ExpiresAt.Equal(later.Add(10*time.Minute)))
}

func TestGeneratePixPaymentViaGateway(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	renderer := &stubRenderer{}
	gw := &fakeGateway{charge: &gateway.Charge{PixCode: "000201gateway"}}
	svc := newTestPaymentService(store, PaymentOptions{
		Settings: model.PaymentSettings{APIKey: "key"},
		Gateway:  gw,
		Renderer: renderer,
	})

	artifact, err := svc.GeneratePixPayment(context.Background(), order.ID)
	require.NoError(t, err)

	assert.False(t, artifact.TestMode)
	assert.Equal(t, "000201gateway", artifact.PixCode)
	assert.Equal(t, 1, renderer.calls, "missing gateway QR is rendered locally")
	assert.True(t, strings.HasPrefix(artifact.TransactionID, "PIX-TEST-"))
	assert.Equal(t, order.Email, gw.last.Email)
	assert.InDelta(t, order.TotalPrice, gw.last.Amount, 0.001)
}

func TestGeneratePixPaymentFallsBackToTestMode(t *testing.T) {
	cases := map[string]*fakeGateway{
		"gateway error":  {err: errors.New("connection refused")},
		"status error":   {err: &gateway.StatusError{StatusCode: 502, Body: "bad gateway"}},
		"empty pix code": {charge: &gateway.Charge{TransactionID: "tx-1"}},
	}

	for name, gw := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewOrderStore(newTestDB(t))
			order := createTestOrder(t, store)
			svc := newTestPaymentService(store, PaymentOptions{
				Settings:  model.PaymentSettings{APIKey: "key"},
				Gateway:   gw,
				Generator: pix.Generator{MerchantName: "NeuroVita"},
			})

			artifact, err := svc.GeneratePixPayment(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, gw.calls)
			assert.True(t, artifact.TestMode)
			_, err = pix.Decode(artifact.PixCode)
			assert.NoError(t, err)
		})
	}
}

func TestGeneratePixPaymentSkipsGatewayInTestMode(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	gw := &fakeGateway{charge: &gateway.Charge{PixCode: "000201gateway"}}
	svc := newTestPaymentService(store, PaymentOptions{
		Settings: model.PaymentSettings{APIKey: "key", TestMode: true},
		Gateway:  gw,
	})

	artifact, err := svc.GeneratePixPayment(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Zero(t, gw.calls)
	assert.True(t, artifact.TestMode)
}

func TestGeneratePixPaymentUnknownOrder(t *testing.T) {
	svc := newTestPaymentService(NewOrderStore(newTestDB(t)), PaymentOptions{})

	_, err := svc.GeneratePixPayment(context.Background(), "NV-20240101-AAAAAA")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCheckPixStatus(t *testing.T) {
	store := NewOrderStore(newTestDB(t))
	order := createTestOrder(t, store)
	svc := newTestPaymentService(store, PaymentOptions{Settings: model.PaymentSettings{TestMode: true}})
	ctx := context.Background()

	status, err := svc.CheckPixStatus(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, status.IsPaid)
	assert.Nil(t, status.PixCode)

	artifact, err := svc.GeneratePixPayment(ctx, order.ID)
	require.NoError(t, err)
	_, err = store.MarkPaid(ctx, order.ID, []byte(`{}`), paymentNow)
	require.NoError(t, err)

	status, err = svc.CheckPixStatus(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.True(t, status.IsPaid)
	assert.Equal(t, model.OrderStatusPaid, status.Status)
	require.NotNil(t, status.TransactionID)
	assert.Equal(t, artifact.TransactionID, *status.TransactionID)

	_, err = svc.CheckPixStatus(ctx, "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
