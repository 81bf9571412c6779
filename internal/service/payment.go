package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sliramanoel/venda/internal/gateway"
	"github.com/sliramanoel/venda/internal/model"
	"github.com/sliramanoel/venda/internal/pix"
)

const testTransactionPrefix = "PIX-TEST-"

// PixGateway issues PIX charges at an external provider
type PixGateway interface {
	CreatePixCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
}

// MerchantNamer supplies the merchant name printed on local charges
type MerchantNamer interface {
	MerchantName(ctx context.Context) string
}

// PaymentService generates and reports PIX payments for orders
type PaymentService interface {
	GeneratePixPayment(ctx context.Context, ref string) (*model.PaymentArtifact, error)
	CheckPixStatus(ctx context.Context, ref string) (*model.PaymentStatus, error)
}

// PaymentOptions wires the collaborators of the payment service.
// Gateway and Merchant may be nil.
type PaymentOptions struct {
	Settings  model.PaymentSettings
	Gateway   PixGateway
	Generator pix.Generator
	Renderer  pix.QRRenderer
	Merchant  MerchantNamer
	Now       func() time.Time
}

type paymentServiceImpl struct {
	store     OrderStore
	settings  model.PaymentSettings
	gateway   PixGateway
	generator pix.Generator
	renderer  pix.QRRenderer
	merchant  MerchantNamer
	now       func() time.Time
}

// NewPaymentService creates a PaymentService over store
func NewPaymentService(store OrderStore, opts PaymentOptions) PaymentService {
	if opts.Renderer == nil {
		opts.Renderer = pix.NewPNGRenderer(pix.DefaultQRSize)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &paymentServiceImpl{
		store:     store,
		settings:  opts.Settings,
		gateway:   opts.Gateway,
		generator: opts.Generator,
		renderer:  opts.Renderer,
		merchant:  opts.Merchant,
		now:       opts.Now,
	}
}

// GeneratePixPayment returns the order's PIX charge. A stored charge that has not expired
// is returned as is; otherwise a new one is obtained from the gateway, or generated locally
// in test mode when the gateway is disabled or fails. Only ErrOrderNotFound is expected.
func (s *paymentServiceImpl) GeneratePixPayment(ctx context.Context, ref string) (*model.PaymentArtifact, error) {
	order, err := s.store.FindByRef(ctx, strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if order.HasActivePix(now) {
		artifact, _ := order.Artifact()
		return &artifact, nil
	}

	artifact, ok := s.chargeViaGateway(ctx, order)
	if !ok {
		artifact = s.chargeLocally(ctx, order)
	}
	artifact.ExpiresAt = now.Add(s.settings.Expiration()).Truncate(time.Second)

	if err := s.store.SavePaymentArtifact(ctx, order.ID, artifact, now); err != nil {
		return nil, fmt.Errorf("failed to persist PIX payment: %w", err)
	}

	log.Printf("[PIX] generated charge for order %s (tx=%s, testMode=%t)", order.OrderNumber, artifact.TransactionID, artifact.TestMode)
	return &artifact, nil
}

func (s *paymentServiceImpl) chargeViaGateway(ctx context.Context, order *model.Order) (model.PaymentArtifact, bool) {
	if s.gateway == nil || !s.settings.UsesGateway() {
		return model.PaymentArtifact{}, false
	}

	charge, err := s.gateway.CreatePixCharge(ctx, gateway.ChargeRequest{
		Amount: order.TotalPrice,
		Email:  order.Email,
		Name:   order.Name,
	})
	if err != nil {
		log.Printf("[PIX] gateway %s failed for order %s, falling back to test mode: %v", s.settings.Gateway, order.OrderNumber, err)
		return model.PaymentArtifact{}, false
	}
	if charge.PixCode == "" {
		log.Printf("[PIX] gateway %s returned no PIX code for order %s, falling back to test mode", s.settings.Gateway, order.OrderNumber)
		return model.PaymentArtifact{}, false
	}

	artifact := model.PaymentArtifact{
		PixCode:       charge.PixCode,
		QRCode:        charge.QRCode,
		TransactionID: charge.TransactionID,
	}
	if artifact.QRCode == "" {
		artifact.QRCode = s.renderQR(order, charge.PixCode)
	}
	if artifact.TransactionID == "" {
		artifact.TransactionID = syntheticTransactionID(order.ID)
	}
	return artifact, true
}

func (s *paymentServiceImpl) chargeLocally(ctx context.Context, order *model.Order) model.PaymentArtifact {
	gen := s.generator
	if s.merchant != nil {
		if name := s.merchant.MerchantName(ctx); name != "" {
			gen.MerchantName = name
		}
	}

	code := gen.Payload(order.ID, order.TotalPrice)
	return model.PaymentArtifact{
		PixCode:       code,
		QRCode:        s.renderQR(order, code),
		TransactionID: syntheticTransactionID(order.ID),
		TestMode:      true,
	}
}

// renderQR never fails the payment; a missing image only degrades the payment page.
func (s *paymentServiceImpl) renderQR(order *model.Order, code string) string {
	qr, err := s.renderer.Render(code)
	if err != nil {
		log.Printf("[PIX] QR rendering failed for order %s: %v", order.OrderNumber, err)
		return ""
	}
	return qr
}

func syntheticTransactionID(orderID string) string {
	return testTransactionPrefix + strings.ToUpper(strings.ReplaceAll(orderID, "-", ""))
}

// CheckPixStatus reports the payment state of an order
func (s *paymentServiceImpl) CheckPixStatus(ctx context.Context, ref string) (*model.PaymentStatus, error) {
	order, err := s.store.FindByRef(ctx, strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	return &model.PaymentStatus{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		IsPaid:        order.Status == model.OrderStatusPaid,
		PixCode:       order.PixCode,
		TransactionID: order.TransactionID,
	}, nil
}
