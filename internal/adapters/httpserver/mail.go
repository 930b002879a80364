package httpserver

import (
	"bytes"
	"fmt"
	"net/smtp"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/shirtso/shirtso/internal/domain"
)

// sendOrderEmail notifies the shop inbox about a payment result. Missing
// SMTP configuration downgrades to a warning; order processing never waits
// on mail.
func sendOrderEmail(o *domain.Order, success bool) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	to := os.Getenv("ORDER_NOTIFY_EMAIL")
	if to == "" {
		to = "orders@shirtso.dev"
	}
	if host == "" || port == "" || user == "" || pass == "" {
		log.Warn().Msg("SMTP not configured, skipping order mail")
		return nil
	}
	statusTxt := "PAYMENT FAILED"
	if success {
		statusTxt = "PAYMENT APPROVED"
	}
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Subject: Order %s #%s\r\n", statusTxt, o.ID.String())
	_, _ = fmt.Fprintf(&buf, "From: %s\r\n", user)
	_, _ = fmt.Fprintf(&buf, "To: %s\r\n", to)
	buf.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	_, _ = fmt.Fprintf(&buf, "Status: %s\n", statusTxt)
	_, _ = fmt.Fprintf(&buf, "Order: %s\n", o.ID)
	_, _ = fmt.Fprintf(&buf, "Name: %s\nEmail: %s\nPhone: %s\n", o.Name, o.Email, o.Phone)
	if o.ShippingMethod == "pickup" {
		buf.WriteString("Pickup at store\n")
	} else {
		_, _ = fmt.Fprintf(&buf, "Ship (%s) to: %s, %s %s, %s\n", o.ShippingMethod, o.Address, o.PostalCode, o.City, o.Country)
	}
	buf.WriteString("Items:\n")
	for _, it := range o.Items {
		_, _ = fmt.Fprintf(&buf, "- %s (%s) x%d %.2f %s\n", it.Name, it.Size, it.Qty, it.UnitPrice, o.Currency)
	}
	if o.DiscountAmount > 0 {
		_, _ = fmt.Fprintf(&buf, "Promo %s: -%.2f\n", o.PromoCode, o.DiscountAmount)
	}
	_, _ = fmt.Fprintf(&buf, "Total: %.2f %s (shipping %.2f)\n", o.Total, o.Currency, o.ShippingCost)

	auth := smtp.PlainAuth("", user, pass, host)
	if err := smtp.SendMail(host+":"+port, auth, user, []string{to}, buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("order mail send")
		return err
	}
	return nil
}
