package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"xrpl-wallet/internal/core/domain"
)

// Output formats accepted by NewPrinter.
const (
	FormatText = "text"
	FormatKV   = "kv"
)

// Printer renders user-facing results. Diagnostics go to the logger instead.
type Printer struct {
	w      io.Writer
	format string
}

// NewPrinter writes to w in format ("text" or "kv").
func NewPrinter(w io.Writer, format string) (*Printer, error) {
	switch format {
	case "", FormatText:
		format = FormatText
	case FormatKV:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &Printer{w: w, format: format}, nil
}

func (p *Printer) kv(pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(p.w, "%s=%s\n", pairs[i], pairs[i+1])
	}
}

func (p *Printer) text(lines ...string) {
	fmt.Fprintln(p.w, strings.Join(lines, "\n"))
}

// Wallet prints the wallet address.
func (p *Printer) Wallet(w *domain.WalletIdentity) {
	if p.format == FormatKV {
		p.kv("address", w.Address, "algorithm", string(w.Algorithm))
		return
	}
	p.text("", "Wallet address: "+w.Address)
}

// Seed prints the family seed. Only called on explicit request.
func (p *Printer) Seed(w *domain.WalletIdentity) {
	if p.format == FormatKV {
		p.kv("seed", w.Seed())
		return
	}
	p.text("Seed (keep this secret): " + w.Seed())
}

// Balance prints a balance snapshot, with activation instructions when needed.
func (p *Printer) Balance(s *domain.BalanceSnapshot) {
	if p.format == FormatKV {
		p.kv(
			"balance", domain.FormatXRP(s.Balance),
			"drops", fmt.Sprint(s.Drops),
			"activated", fmt.Sprint(s.Activated),
		)
		return
	}
	if !s.Activated {
		p.text(
			"",
			"The account is not activated yet. Send it at least "+domain.MinimumActivationXRP.String()+" test XRP from the faucet:",
			"Link: "+domain.FaucetPage,
			"Wallet address: "+s.Address,
			"",
		)
	}
	p.text("Current balance: " + s.Balance.String() + " XRP")
}

// Insufficient prints the funding instructions shown when no payment is made.
func (p *Printer) Insufficient(address string, threshold decimal.Decimal) {
	if p.format == FormatKV {
		p.kv("payment", "skipped", "reason", "insufficient_balance", "threshold", threshold.String(), "faucet", domain.FaucetPage)
		return
	}
	p.text(
		"",
		"Insufficient balance to make the payment (more than "+threshold.String()+" XRP required).",
		"Use the testnet faucet to get test XRP:",
		domain.FaucetPage,
		"Your wallet address: "+address,
	)
}

// PaymentStarted announces a payment.
func (p *Printer) PaymentStarted(amount decimal.Decimal, destination string) {
	if p.format == FormatKV {
		p.kv("payment", "started", "amount", amount.String(), "destination", destination)
		return
	}
	p.text("", fmt.Sprintf("Sending %s XRP to %s", amount.String(), destination))
}

// PaymentSucceeded prints the validated transaction hash.
func (p *Printer) PaymentSucceeded(o *domain.PaymentOutcome) {
	if p.format == FormatKV {
		p.kv("payment", "success", "hash", o.Hash, "result", o.Result, "ledger_index", fmt.Sprint(o.LedgerIndex))
		return
	}
	p.text("Payment complete! Hash: " + o.Hash)
}

// PaymentFailed prints a failed payment result.
func (p *Printer) PaymentFailed(r domain.PaymentResult) {
	if p.format == FormatKV {
		pairs := []string{"payment", string(r.Kind)}
		if r.Code != "" {
			pairs = append(pairs, "result", r.Code)
		}
		if r.Hash != "" {
			pairs = append(pairs, "hash", r.Hash)
		}
		p.kv(pairs...)
		return
	}
	line := "Payment failed (" + string(r.Kind) + ")"
	if r.Code != "" {
		line += ": " + r.Code
	}
	lines := []string{line}
	if r.Hash != "" {
		lines = append(lines, "Transaction hash: "+r.Hash+" (query it before retrying)")
	}
	p.text(lines...)
}

// Funded prints a faucet grant.
func (p *Printer) Funded(g *domain.FaucetGrant) {
	if p.format == FormatKV {
		p.kv("funded", g.Address, "amount", g.Amount.String(), "hash", g.Hash)
		return
	}
	p.text(fmt.Sprintf("Faucet sent %s XRP to %s (hash %s)", g.Amount.String(), g.Address, g.Hash))
}

// Token prints an API token.
func (p *Printer) Token(token string, expiresAt time.Time) {
	if p.format == FormatKV {
		p.kv("token", token, "expires_at", expiresAt.UTC().Format(time.RFC3339))
		return
	}
	p.text(token, "expires "+expiresAt.UTC().Format(time.RFC3339))
}
