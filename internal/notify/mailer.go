// Package notify рассылает RFP поставщикам по электронной почте.
package notify

import (
	"context"

	"procurement/models"

	"go.uber.org/zap"
)

// Transport - доставка готового HTML-документа на один адрес
type Transport interface {
	Send(ctx context.Context, to, subject, htmlBody string) (messageID string, err error)
	Verify(ctx context.Context) error
}

type Mailer struct {
	transport Transport
	logger    *zap.Logger
}

func NewMailer(transport Transport, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{transport: transport, logger: logger}
}

// SendRFP отправляет поставщику письмо с RFP и возвращает Message-ID
func (m *Mailer) SendRFP(ctx context.Context, vendor models.Vendor, rfp *models.RFP) (string, error) {
	subject, body, err := RenderRFP(vendor.Name, rfp)
	if err != nil {
		return "", err
	}
	id, err := m.transport.Send(ctx, vendor.Email, subject, body)
	if err != nil {
		m.logger.Error("Error sending email",
			zap.String("to", vendor.Email),
			zap.String("rfp_id", rfp.ID.String()),
			zap.Error(err))
		return "", err
	}
	m.logger.Info("Email sent",
		zap.String("message_id", id),
		zap.String("to", vendor.Email),
		zap.String("subject", subject))
	return id, nil
}

func (m *Mailer) Verify(ctx context.Context) error {
	if err := m.transport.Verify(ctx); err != nil {
		m.logger.Warn("Email server connection error", zap.Error(err))
		return err
	}
	m.logger.Info("Email server is ready to send messages")
	return nil
}
