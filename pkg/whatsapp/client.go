package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/medbasket/medbasket-backend/pkg/config"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

// Sender delivers WhatsApp/SMS messages through the transactional gateway.
type Sender interface {
	Send(ctx context.Context, mobile, message string) error
	SendTemplate(ctx context.Context, mobile, templateName string) error
}

// Client talks to the messaging gateway's REST API. The gateway is a plain
// key-authenticated HTTP service, so this wraps net/http directly.
type Client struct {
	baseURL   string
	authKey   string
	senderID  string
	countryCC string
	http      *http.Client
	logger    *logger.Logger
}

// NewClient builds the gateway client. An empty base URL or key yields a
// disabled client whose sends fail with a dependency error; the workflow
// treats those as best-effort misses.
func NewClient(cfg config.WhatsAppConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errors.New("whatsapp logger is required")
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		authKey:   cfg.AuthKey,
		senderID:  cfg.SenderID,
		countryCC: cfg.CountryCC,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    logg,
	}, nil
}

type gatewayResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Send delivers a free-form message to the given mobile number.
func (c *Client) Send(ctx context.Context, mobile, message string) error {
	params := url.Values{}
	params.Set("mobile", mobile)
	params.Set("country_code", c.countryCC)
	params.Set("sms", message)
	params.Set("sender", c.senderID)
	return c.call(ctx, "send", params)
}

// SendTemplate delivers a pre-approved template by name.
func (c *Client) SendTemplate(ctx context.Context, mobile, templateName string) error {
	params := url.Values{}
	params.Set("mobile", mobile)
	params.Set("country_code", c.countryCC)
	params.Set("tid", templateName)
	params.Set("sender", c.senderID)
	return c.call(ctx, "request", params)
}

func (c *Client) call(ctx context.Context, endpoint string, params url.Values) error {
	if c.baseURL == "" || c.authKey == "" {
		return pkgerrors.New(pkgerrors.CodeDependency, "messaging gateway is not configured")
	}
	params.Set("authkey", c.authKey)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build gateway request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call messaging gateway")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("messaging gateway returned %d", resp.StatusCode))
	}

	var body gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && strings.EqualFold(body.Status, "error") {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("messaging gateway error: %s", body.Message))
	}

	logCtx := c.logger.WithFields(ctx, map[string]any{"mobile": maskMobile(params), "endpoint": endpoint})
	c.logger.Info(logCtx, "message dispatched")
	return nil
}

func maskMobile(params url.Values) string {
	m := params.Get("mobile")
	if len(m) > 4 {
		return strings.Repeat("*", len(m)-4) + m[len(m)-4:]
	}
	return m
}
