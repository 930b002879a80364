// Package psp is the HTTP client for the external payment provider. Checkout
// creation returns a hosted-payment redirect URL; the webhook flow queries
// the payment back and matches it to an order through a signed external
// reference.
package psp

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shirtso/shirtso/internal/domain"
)

type Gateway struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewGateway(token string) *Gateway {
	base := os.Getenv("PSP_API_URL")
	if base == "" {
		base = "https://api.pay.shirtso.dev"
	}
	return &Gateway{
		token:      token,
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type pspItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency"`
}

type pspSessionReq struct {
	Items             []pspItem         `json:"items"`
	Payer             map[string]string `json:"payer,omitempty"`
	BackURLs          map[string]string `json:"back_urls,omitempty"`
	NotificationURL   string            `json:"notification_url,omitempty"`
	ExternalReference string            `json:"external_reference,omitempty"`
}

type pspSessionResp struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

type pspPaymentResp struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	ExternalReference string `json:"external_reference"`
}

func signExternal(orderID string) string {
	key := os.Getenv("SECRET_KEY")
	if key == "" {
		key = "dev"
	}
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(orderID))
	return hex.EncodeToString(h.Sum(nil))[:24]
}

// VerifyExternalRef splits "orderID|sig" and checks the signature.
func VerifyExternalRef(ext string) (string, bool) {
	parts := strings.Split(ext, "|")
	if len(parts) != 2 {
		return "", false
	}
	orderID, sig := parts[0], parts[1]
	return orderID, hmac.Equal([]byte(signExternal(orderID)), []byte(sig))
}

func (g *Gateway) CreateCheckout(ctx context.Context, o *domain.Order) (string, error) {
	if g.token == "" {
		return "", errors.New("missing PSP token (PSP_ACCESS_TOKEN)")
	}
	if o == nil {
		return "", errors.New("nil order")
	}
	currency := o.Currency
	if currency == "" {
		currency = "EUR"
	}
	items := make([]pspItem, 0, len(o.Items)+2)
	for _, it := range o.Items {
		title := it.Name
		if it.Size != "" {
			title = fmt.Sprintf("%s (%s)", it.Name, it.Size)
		}
		items = append(items, pspItem{Title: title, Quantity: it.Qty, UnitPrice: it.UnitPrice, Currency: currency})
	}
	if o.ShippingCost > 0 {
		items = append(items, pspItem{Title: "Shipping", Quantity: 1, UnitPrice: o.ShippingCost, Currency: currency})
	}
	if o.DiscountAmount > 0 {
		items = append(items, pspItem{Title: "Discount", Quantity: 1, UnitPrice: -o.DiscountAmount, Currency: currency})
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	extRef := fmt.Sprintf("%s|%s", o.ID.String(), signExternal(o.ID.String()))
	payload := pspSessionReq{
		Items: items,
		Payer: map[string]string{"email": o.Email},
		BackURLs: map[string]string{
			"success": baseURL + "/pay/" + o.ID.String(),
			"pending": baseURL + "/pay/" + o.ID.String(),
			"failure": baseURL + "/pay/" + o.ID.String(),
		},
		NotificationURL:   baseURL + "/webhooks/psp",
		ExternalReference: extRef,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal psp session: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/checkout/sessions", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")
	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("psp connection: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		var pspErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &pspErr) == nil && pspErr.Message != "" {
			if res.StatusCode == 401 || res.StatusCode == 403 {
				return "", fmt.Errorf("psp credentials rejected (status %d): %s", res.StatusCode, pspErr.Message)
			}
			return "", fmt.Errorf("psp session (status %d): %s", res.StatusCode, pspErr.Message)
		}
		return "", fmt.Errorf("psp session status %d: %s", res.StatusCode, string(body))
	}
	var session pspSessionResp
	if err := json.NewDecoder(res.Body).Decode(&session); err != nil {
		return "", err
	}
	if session.ID == "" || session.RedirectURL == "" {
		return "", errors.New("incomplete psp response")
	}
	o.PSPSessionID = session.ID
	return session.RedirectURL, nil
}

func (g *Gateway) PaymentInfo(ctx context.Context, paymentID string) (string, string, error) {
	if g.token == "" || paymentID == "" {
		return "", "", errors.New("missing psp params")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(res.Body)
		return "", "", fmt.Errorf("psp payment status %d: %s", res.StatusCode, string(b))
	}
	var pr pspPaymentResp
	if err := json.NewDecoder(res.Body).Decode(&pr); err != nil {
		return "", "", err
	}
	return pr.Status, pr.ExternalReference, nil
}
