package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/enums"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

type stubWhatsApp struct {
	messages  []string
	templates []string
	err       error
}

func (s *stubWhatsApp) Send(ctx context.Context, mobile, message string) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *stubWhatsApp) SendTemplate(ctx context.Context, mobile, templateName string) error {
	if s.err != nil {
		return s.err
	}
	s.templates = append(s.templates, templateName)
	return nil
}

type stubEmail struct {
	subjects []string
	bodies   []string
	err      error
}

func (s *stubEmail) Send(ctx context.Context, to, subject, html string) error {
	if s.err != nil {
		return s.err
	}
	s.subjects = append(s.subjects, subject)
	s.bodies = append(s.bodies, html)
	return nil
}

func sampleOrder() *models.Order {
	coupon := "SAVE10"
	return &models.Order{
		ID:                12,
		PatientName:       "Asha",
		PatientPhone:      "9876543210",
		ShipStreet:        "12 MG Road",
		ShipCity:          "Bengaluru",
		ShipPincode:       "560001",
		Subtotal:          decimal.NewFromInt(1800),
		CouponCode:        &coupon,
		Discount:          decimal.NewFromInt(180),
		ShippingCharge:    decimal.NewFromInt(50),
		AdditionalCharge:  decimal.NewFromInt(30),
		Amount:            decimal.NewFromInt(1700),
		PaymentOption:     enums.PaymentOptionCOD,
		TransactionNumber: "PH-12",
		Items: []models.OrderItem{
			{ProductName: "Paracetamol 500mg", Quantity: 2, LineTotal: decimal.NewFromInt(60)},
			{ProductName: "Vitamin D3", Quantity: 1, LineTotal: decimal.NewFromInt(1740)},
		},
	}
}

func newNotificationService(t *testing.T, wa *stubWhatsApp, em *stubEmail) Service {
	t.Helper()
	svc, err := NewService(wa, em, nil, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return svc
}

func TestOrderSummaryMessage(t *testing.T) {
	msg := OrderSummaryMessage(sampleOrder())

	assert.Contains(t, msg, "PH-12")
	assert.Contains(t, msg, "Paracetamol 500mg x2")
	assert.Contains(t, msg, "Discount: Rs 180.00")
	assert.Contains(t, msg, "COD fee: Rs 30.00")
	assert.Contains(t, msg, "Total: Rs 1700.00 (COD)")
	assert.Contains(t, msg, "12 MG Road")
}

func TestReceiptHTML(t *testing.T) {
	html, err := ReceiptHTML(sampleOrder())
	require.NoError(t, err)

	assert.Contains(t, html, "Order PH-12 confirmed")
	assert.Contains(t, html, "Paracetamol 500mg")
	assert.Contains(t, html, "SAVE10")
	assert.Contains(t, html, "1700.00")
	assert.True(t, strings.Contains(html, "<table"), "receipt renders as an HTML table")
}

func TestOrderPlacedSendsBothChannels(t *testing.T) {
	wa := &stubWhatsApp{}
	em := &stubEmail{}
	svc := newNotificationService(t, wa, em)

	email := "asha@example.com"
	err := svc.OrderPlaced(context.Background(), sampleOrder(), &email)
	require.NoError(t, err)

	require.Len(t, wa.messages, 1)
	require.Len(t, em.subjects, 1)
	assert.Contains(t, em.subjects[0], "PH-12")
}

func TestOrderPlacedSkipsEmailWhenAbsent(t *testing.T) {
	wa := &stubWhatsApp{}
	em := &stubEmail{}
	svc := newNotificationService(t, wa, em)

	require.NoError(t, svc.OrderPlaced(context.Background(), sampleOrder(), nil))
	assert.Empty(t, em.subjects)
}

func TestOrderPlacedCollectsFailuresIndependently(t *testing.T) {
	wa := &stubWhatsApp{err: errors.New("gateway down")}
	em := &stubEmail{}
	svc := newNotificationService(t, wa, em)

	email := "asha@example.com"
	err := svc.OrderPlaced(context.Background(), sampleOrder(), &email)

	require.Error(t, err, "errors are reported for observability")
	require.Len(t, em.subjects, 1, "email still goes out when whatsapp fails")
}

func TestPrescriptionUploadedTemplate(t *testing.T) {
	wa := &stubWhatsApp{}
	svc := newNotificationService(t, wa, &stubEmail{})

	require.NoError(t, svc.PrescriptionUploaded(context.Background(), "9876543210"))
	require.Len(t, wa.templates, 1)
	assert.Equal(t, "prescription_uploaded", wa.templates[0])
}
