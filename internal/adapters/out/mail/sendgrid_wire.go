// internal/adapters/out/mail/sendgrid_wire.go
package mail

import (
	"strings"

	"go.uber.org/zap"

	"pokemint/internal/infra/config"
	"pokemint/internal/infra/logger"
)

// NewRefundReviewNotifierWithSendGrid builds the operator notifier from
// SENDGRID_API_KEY, MAIL_FROM and OPERATOR_EMAIL. Missing settings leave
// it disabled rather than failing startup.
func NewRefundReviewNotifierWithSendGrid(cfg *config.Config, log *zap.Logger) *RefundReviewNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.SendGridAPIKey == "" || cfg.OperatorEmail == "" {
		log.Warn("refund review mail disabled",
			zap.Bool("apiKeySet", cfg.SendGridAPIKey != ""),
			zap.Bool("operatorSet", cfg.OperatorEmail != ""),
		)
		return NewRefundReviewNotifier(nil, cfg.MailFrom, cfg.OperatorEmail, "")
	}

	explorer := "https://explorer.solana.com/tx/%s"
	if cluster := clusterParam(cfg.RPCEndpoint); cluster != "" {
		explorer += "?cluster=" + cluster
	}

	n := NewRefundReviewNotifier(NewSendGridClient(cfg.SendGridAPIKey, log), cfg.MailFrom, cfg.OperatorEmail, explorer)
	log.Info("refund review mail enabled",
		zap.String("from", cfg.MailFrom),
		zap.String("operator", logger.MaskShort(cfg.OperatorEmail)),
	)
	return n
}

func clusterParam(rpcEndpoint string) string {
	e := strings.ToLower(rpcEndpoint)
	switch {
	case strings.Contains(e, "devnet"):
		return "devnet"
	case strings.Contains(e, "testnet"):
		return "testnet"
	case strings.Contains(e, "localhost"), strings.Contains(e, "127.0.0.1"):
		return "custom"
	}
	return ""
}
