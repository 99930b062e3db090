package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/luciagrant/mercadito-backend/pkg/config"
	"github.com/luciagrant/mercadito-backend/pkg/db/models"
	"github.com/luciagrant/mercadito-backend/pkg/errors"
)

// Builder renders order summaries for the WhatsApp handoff at the end of
// checkout. The storefront never talks to WhatsApp itself; it hands the
// customer a prefilled wa.me link.
type Builder struct {
	number    string
	storeName string
}

// NewBuilder validates the configured destination number.
func NewBuilder(cfg config.CheckoutConfig) (*Builder, error) {
	number := strings.TrimSpace(strings.TrimPrefix(cfg.WhatsAppNumber, "+"))
	if number == "" {
		return nil, errors.New(errors.CodeInternal, "whatsapp number is required")
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return nil, errors.New(errors.CodeInternal, "whatsapp number must be digits only")
		}
	}
	storeName := strings.TrimSpace(cfg.StoreName)
	if storeName == "" {
		storeName = "Mercadito"
	}
	return &Builder{number: number, storeName: storeName}, nil
}

// Summary renders the human-readable order recap sent as the first message.
func (b *Builder) Summary(order *models.Order) string {
	if order == nil {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hola %s, soy %s.\n", b.storeName, order.CustomerName)
	fmt.Fprintf(&sb, "Pedido #%d\n\n", order.OrderNumber)

	for _, line := range order.Lines {
		fmt.Fprintf(&sb, "• %d x %s", line.Qty, line.ProductName)
		if variant := variantLabel(line); variant != "" {
			fmt.Fprintf(&sb, " (%s)", variant)
		}
		fmt.Fprintf(&sb, " — %s\n", Money(line.LineTotalCents, string(order.Currency)))
	}

	fmt.Fprintf(&sb, "\nSubtotal: %s\n", Money(order.SubtotalCents, string(order.Currency)))
	if order.ShippingCents != nil {
		fmt.Fprintf(&sb, "Envío: %s\n", Money(*order.ShippingCents, string(order.Currency)))
	} else {
		sb.WriteString("Envío: por cotizar\n")
	}
	fmt.Fprintf(&sb, "Total: %s\n", Money(order.TotalCents, string(order.Currency)))

	if order.ShippingAddr != nil && *order.ShippingAddr != "" {
		fmt.Fprintf(&sb, "\nEntrega: %s\n", *order.ShippingAddr)
	}
	if order.Notes != nil && *order.Notes != "" {
		fmt.Fprintf(&sb, "Notas: %s\n", *order.Notes)
	}

	return sb.String()
}

// Link builds the wa.me URL with the summary prefilled.
func (b *Builder) Link(order *models.Order) string {
	text := url.QueryEscape(b.Summary(order))
	return fmt.Sprintf("https://wa.me/%s?text=%s", b.number, text)
}

// Money formats integer cents as a currency string, e.g. "$1,234.50 MXN".
func Money(cents int, currency string) string {
	amount := decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100))
	whole := amount.IntPart()
	frac := amount.Sub(decimal.NewFromInt(whole)).Abs().Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	sign := ""
	if cents < 0 {
		sign = "-"
		whole = -whole
	}
	return fmt.Sprintf("%s$%s.%02d %s", sign, groupThousands(whole), frac, currency)
}

func groupThousands(n int64) string {
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	return strings.Join(parts, ",")
}

func variantLabel(line models.OrderLine) string {
	var parts []string
	for _, v := range []*string{line.Color, line.Size, line.Material} {
		if v != nil && *v != "" {
			parts = append(parts, *v)
		}
	}
	return strings.Join(parts, ", ")
}
