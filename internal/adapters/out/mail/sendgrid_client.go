// internal/adapters/out/mail/sendgrid_client.go
package mail

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"pokemint/internal/infra/logger"
)

const senderName = "Pokemint"

// SendGridClient implements EmailClient.
type SendGridClient struct {
	apiKey string
	log    *zap.Logger
}

func NewSendGridClient(apiKey string, log *zap.Logger) *SendGridClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &SendGridClient{apiKey: apiKey, log: log.Named("sendgrid")}
}

// Send delivers a plain-text mail (with a <pre> HTML part).
func (c *SendGridClient) Send(ctx context.Context, from, to, subject, body string) error {
	if c.apiKey == "" {
		return errors.New("sendgrid api key is empty")
	}
	if from == "" {
		return errors.New("from address is empty")
	}
	if to == "" {
		return errors.New("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(senderName, from),
		subject,
		mail.NewEmail("", to),
		body,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(body)),
	)

	response, err := sendgrid.NewSendClient(c.apiKey).SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		c.log.Warn("send failed", zap.Int("status", response.StatusCode), zap.String("body", response.Body))
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	c.log.Info("mail sent",
		zap.Int("status", response.StatusCode),
		zap.String("to", logger.MaskShort(to)),
		zap.String("subject", subject),
	)
	return nil
}
