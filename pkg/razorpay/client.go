package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	rzpsdk "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/medbasket/medbasket-backend/pkg/config"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

var (
	errKeyIDRequired  = errors.New("razorpay key id is required")
	errSecretRequired = errors.New("razorpay key secret is required")
	errLoggerRequired = errors.New("razorpay logger is required")
)

// Order is the gateway order handle returned to the client so it can drive
// the payment UI.
type Order struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
}

// Client wraps the Razorpay SDK with centralized logging and error mapping.
type Client struct {
	sdk       *rzpsdk.Client
	keySecret string
	currency  string
	logger    *logger.Logger
}

// Gateway is the surface the order workflow depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*Order, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

// NewClient initializes the Razorpay wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errSecretRequired
	}
	currency := strings.TrimSpace(cfg.Currency)
	if currency == "" {
		currency = "INR"
	}

	c := &Client{
		sdk:       rzpsdk.NewClient(keyID, keySecret),
		keySecret: keySecret,
		currency:  currency,
		logger:    logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

// CreateOrder registers an order with the gateway. The amount is converted to
// the gateway's minor unit (paise).
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, receipt string) (*Order, error) {
	paise := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if paise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount_paise": paise,
		"currency":     c.currency,
		"receipt":      receipt,
	})

	body, err := c.sdk.Order.Create(map[string]interface{}{
		"amount":   paise,
		"currency": c.currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "create gateway order")
	}

	order := &Order{
		ID:          stringField(body, "id"),
		AmountPaise: intField(body, "amount"),
		Currency:    stringField(body, "currency"),
		Receipt:     stringField(body, "receipt"),
	}
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "gateway returned no order id")
	}

	c.log(ctx, "response", "create_order", map[string]any{"gateway_order_id": order.ID})
	return order, nil
}

// VerifySignature checks the checkout callback signature: an HMAC-SHA256 of
// "<order_id>|<payment_id>" keyed by the API secret.
func (c *Client) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	logCtx := c.logger.WithFields(ctx, logFields)
	c.logger.Info(logCtx, fmt.Sprintf("razorpay.%s", op))
}

func stringField(body map[string]interface{}, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

func intField(body map[string]interface{}, key string) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
