package intasend

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Config holds IntaSend integration settings.
type Config struct {
	PublicKey     string
	WebhookSecret string
	BaseURL       string // our own base URL, used for redirect targets
}

// CheckoutParams is everything the frontend needs to open the IntaSend
// checkout widget for a pending payment.
type CheckoutParams struct {
	PublicKey   string `json:"public_key"`
	Amount      int64  `json:"amount"` // cents
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	Host        string `json:"host"`
	RedirectURL string `json:"redirect_url"`
	APIRef      string `json:"api_ref"`
	Comment     string `json:"comment"`
}

// Client builds provider-facing checkout parameters. The actual checkout
// UI and capture run on IntaSend's side; settlement comes back through
// the signed webhook.
type Client struct {
	cfg Config
}

// NewClient creates an IntaSend client.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg}
}

// WebhookSecret returns the shared webhook secret.
func (c *Client) WebhookSecret() string {
	return c.cfg.WebhookSecret
}

// BuildCheckout assembles checkout parameters for a pending payment. The
// payment id doubles as the api_ref correlation key the webhook reports
// back with.
func (c *Client) BuildCheckout(paymentID uuid.UUID, amountCents int64, currency, email, username string, credits int64) CheckoutParams {
	return CheckoutParams{
		PublicKey:   c.cfg.PublicKey,
		Amount:      amountCents,
		Currency:    currency,
		Email:       email,
		FirstName:   username,
		Host:        c.cfg.BaseURL,
		RedirectURL: c.cfg.BaseURL + "/payments/success",
		APIRef:      paymentID.String(),
		Comment:     fmt.Sprintf("Purchase %d credits", credits),
	}
}
