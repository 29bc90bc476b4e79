package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mandibazaar/mandi-backend/pkg/config"
	"github.com/mandibazaar/mandi-backend/pkg/enums"
	"github.com/mandibazaar/mandi-backend/pkg/logger"
)

var (
	errKeyIDRequired  = errors.New("gateway key id is required")
	errSecretRequired = errors.New("gateway key secret is required")
)

// Client wraps the hosted payment gateway's REST API. Amounts cross the wire
// in paise, the gateway's smallest currency unit.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
}

// Order is the gateway-side order created before the buyer pays.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// NewClient validates the credentials and returns a gateway client.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errSecretRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, "payment gateway client initialized")
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		keyID:      keyID,
		keySecret:  keySecret,
	}, nil
}

// CreateOrder registers an order with the gateway and returns its handle.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal, currency enums.Currency, receipt string) (*Order, error) {
	body := map[string]any{
		"amount":   ToPaise(amount),
		"currency": currency.String(),
		"receipt":  receipt,
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decoding gateway order: %w", err)
	}
	return &order, nil
}

// VerifySignature checks the HMAC-SHA256 signature the gateway sends back with
// a completed payment. The signed message is "<orderID>|<paymentID>".
func (c *Client) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return VerifySignature(c.keySecret, gatewayOrderID, gatewayPaymentID, signature)
}

// VerifySignature computes the expected hex digest and compares it in constant
// time.
func VerifySignature(secret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ToPaise converts a rupee amount into the gateway's integer paise unit.
func ToPaise(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromPaise converts an integer paise amount back into rupees.
func FromPaise(paise int64) decimal.Decimal {
	return decimal.NewFromInt(paise).Div(decimal.NewFromInt(100))
}
