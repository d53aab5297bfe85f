// internal/adapters/out/mail/refund_review_notifier.go
package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	receiptdom "pokemint/internal/domain/receipt"
)

// EmailClient abstracts the mail transport (SendGrid in production).
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// RefundReviewNotifier tells an operator that a wallet paid the pack fee
// but received no NFT. It implements usecase.RefundReviewNotifier.
// Nothing is refunded; the mail only lists what to check.
type RefundReviewNotifier struct {
	client      EmailClient
	fromAddress string
	operator    string
	explorerURL string // e.g. "https://explorer.solana.com/tx/%s?cluster=devnet"
}

func NewRefundReviewNotifier(client EmailClient, fromAddress, operator, explorerURL string) *RefundReviewNotifier {
	return &RefundReviewNotifier{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
		operator:    strings.TrimSpace(operator),
		explorerURL: strings.TrimSpace(explorerURL),
	}
}

// Enabled reports whether notices are actually sent.
func (n *RefundReviewNotifier) Enabled() bool {
	return n != nil && n.client != nil && n.fromAddress != "" && n.operator != ""
}

// NotifyRefundReview mails the operator. It is a no-op when not Enabled.
func (n *RefundReviewNotifier) NotifyRefundReview(ctx context.Context, r receiptdom.MintReceipt) error {
	if !n.Enabled() {
		return nil
	}
	subject := fmt.Sprintf("[pokemint] fee charged without NFT: receipt %s", r.ID)
	return n.client.Send(ctx, n.fromAddress, n.operator, subject, n.body(r))
}

func (n *RefundReviewNotifier) body(r receiptdom.MintReceipt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A pack fee was transferred but the mint did not complete.\n\n")
	fmt.Fprintf(&b, "Receipt:      %s\n", r.ID)
	fmt.Fprintf(&b, "Wallet:       %s\n", r.Wallet)
	fmt.Fprintf(&b, "Collectible:  %s (shining=%t)\n", r.Collectible, r.Shining)
	fmt.Fprintf(&b, "Fee:          %d lamports to %s\n", r.FeeLamports, r.Treasury)
	fmt.Fprintf(&b, "Fee tx:       %s\n", n.txLink(r.FeeSignature))
	fmt.Fprintf(&b, "Failed stage: %s\n", r.FailureStage)
	fmt.Fprintf(&b, "Reason:       %s\n", r.FailureReason)
	fmt.Fprintf(&b, "At:           %s\n", r.UpdatedAt.UTC().Format(time.RFC3339))
	if len(r.ProgramLogs) > 0 {
		b.WriteString("\nProgram logs:\n")
		for _, l := range r.ProgramLogs {
			b.WriteString("  " + l + "\n")
		}
	}
	b.WriteString("\nNo refund has been sent.\n")
	return b.String()
}

func (n *RefundReviewNotifier) txLink(sig string) string {
	if sig == "" || n.explorerURL == "" || !strings.Contains(n.explorerURL, "%s") {
		return sig
	}
	return fmt.Sprintf(n.explorerURL, sig)
}
