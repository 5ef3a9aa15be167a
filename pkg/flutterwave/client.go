package flutterwave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tommiesfashion/storefront-backend/pkg/config"
	pkgerrors "github.com/tommiesfashion/storefront-backend/pkg/errors"
	"github.com/tommiesfashion/storefront-backend/pkg/logger"
)

const (
	paymentsPath  = "/payments"
	statusSuccess = "success"

	txRefPrefix = "TOMMIES"
)

var (
	errSecretKeyRequired   = errors.New("flutterwave secret key is required")
	errRedirectURLRequired = errors.New("flutterwave redirect url is required")
	errLoggerRequired      = errors.New("flutterwave logger is required")
)

// Customer identifies the paying user on the hosted payment page.
type Customer struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Customizations controls the hosted page title and description.
type Customizations struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PaymentRequest is the payload submitted to the payment initiation endpoint.
type PaymentRequest struct {
	TxRef          string          `json:"tx_ref"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	RedirectURL    string          `json:"redirect_url"`
	Customer       Customer        `json:"customer"`
	Customizations Customizations  `json:"customizations"`
}

// PaymentLink is the provider-hosted checkout URL tied to a tx_ref.
type PaymentLink struct {
	TxRef string
	Link  string
}

type paymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

// Client exposes payment link initiation with centralized auth, logging, and error mapping.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	currency    string
	redirectURL string
	logger      *logger.Logger
}

// NewClient initializes the Flutterwave wrapper and validates the credentials.
func NewClient(cfg config.FlutterwaveConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}
	redirectURL := strings.TrimSpace(cfg.RedirectURL)
	if redirectURL == "" {
		return nil, errRedirectURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:   secretKey,
		currency:    cfg.Currency,
		redirectURL: redirectURL,
		logger:      logg,
	}, nil
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// RedirectURL reports the configured post-payment redirect target.
func (c *Client) RedirectURL() string {
	if c == nil {
		return ""
	}
	return c.redirectURL
}

// NewTxRef returns a unique transaction reference for an initiation attempt.
func NewTxRef() string {
	return fmt.Sprintf("%s-%s", txRefPrefix, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// InitiatePayment submits the payment request and returns the hosted payment link.
func (c *Client) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentLink, error) {
	if strings.TrimSpace(req.TxRef) == "" {
		req.TxRef = NewTxRef()
	}
	if req.Currency == "" {
		req.Currency = c.currency
	}
	if req.RedirectURL == "" {
		req.RedirectURL = c.redirectURL
	}

	c.log(ctx, "request", "initiate_payment", map[string]any{
		"tx_ref":   req.TxRef,
		"amount":   req.Amount.String(),
		"currency": req.Currency,
	})

	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding payment request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+paymentsPath, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building payment request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log(ctx, "error", "initiate_payment", map[string]any{"tx_ref": req.TxRef, "error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flutterwave initiate payment failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.log(ctx, "error", "initiate_payment", map[string]any{"tx_ref": req.TxRef, "error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading flutterwave response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log(ctx, "error", "initiate_payment", map[string]any{
			"tx_ref": req.TxRef,
			"status": resp.StatusCode,
			"error":  providerMessage(payload),
		})
		return nil, pkgerrors.Wrap(
			domainCodeForStatus(resp.StatusCode),
			fmt.Errorf("flutterwave status %d: %s", resp.StatusCode, providerMessage(payload)),
			"flutterwave initiate payment failed",
		)
	}

	var parsed paymentResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding flutterwave response")
	}
	if parsed.Status != statusSuccess || parsed.Data.Link == "" {
		c.log(ctx, "error", "initiate_payment", map[string]any{
			"tx_ref": req.TxRef,
			"error":  parsed.Message,
		})
		return nil, pkgerrors.Wrap(
			pkgerrors.CodeDependency,
			fmt.Errorf("flutterwave status %q: %s", parsed.Status, parsed.Message),
			"flutterwave declined payment initiation",
		)
	}

	c.log(ctx, "response", "initiate_payment", map[string]any{"tx_ref": req.TxRef})
	return &PaymentLink{TxRef: req.TxRef, Link: parsed.Data.Link}, nil
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
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("flutterwave %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("flutterwave %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "token", "email", "phone", "card"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func providerMessage(payload []byte) string {
	var parsed paymentResponse
	if err := json.Unmarshal(payload, &parsed); err != nil || parsed.Message == "" {
		return strings.TrimSpace(string(payload))
	}
	return parsed.Message
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
