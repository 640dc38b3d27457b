package notifications

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/medbasket/medbasket-backend/pkg/db/models"
	"github.com/medbasket/medbasket-backend/pkg/logger"
	"github.com/medbasket/medbasket-backend/pkg/metrics"
)

type whatsappSender interface {
	Send(ctx context.Context, mobile, message string) error
	SendTemplate(ctx context.Context, mobile, templateName string) error
}

type emailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Service dispatches transactional messages after order state changes.
// Sends are best effort and single attempt: failures are logged and counted,
// never surfaced to the checkout caller.
type Service interface {
	OrderPlaced(ctx context.Context, order *models.Order, email *string) error
	PrescriptionUploaded(ctx context.Context, mobile string) error
}

type service struct {
	whatsapp whatsappSender
	email    emailSender
	metrics  *metrics.OrderMetrics
	logger   *logger.Logger
}

// NewService builds the notification dispatcher.
func NewService(whatsapp whatsappSender, email emailSender, m *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if whatsapp == nil {
		return nil, fmt.Errorf("whatsapp sender required")
	}
	if email == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{whatsapp: whatsapp, email: email, metrics: m, logger: logg}, nil
}

// OrderPlaced sends the order summary over WhatsApp and, when the customer
// has an email on file, an HTML receipt. The combined error is returned for
// observability only; callers must not fail the order on it.
func (s *service) OrderPlaced(ctx context.Context, order *models.Order, email *string) error {
	var errs error

	msg := OrderSummaryMessage(order)
	if err := s.whatsapp.Send(ctx, order.PatientPhone, msg); err != nil {
		s.metrics.IncNotification("whatsapp", "failure")
		s.logger.Warn(s.logger.WithOrderID(ctx, order.ID), "order whatsapp send failed")
		errs = multierr.Append(errs, fmt.Errorf("whatsapp: %w", err))
	} else {
		s.metrics.IncNotification("whatsapp", "success")
	}

	if email != nil && *email != "" {
		html, err := ReceiptHTML(order)
		if err == nil {
			err = s.email.Send(ctx, *email, fmt.Sprintf("Your MedBasket order %s", order.TransactionNumber), html)
		}
		if err != nil {
			s.metrics.IncNotification("email", "failure")
			s.logger.Warn(s.logger.WithOrderID(ctx, order.ID), "order receipt email failed")
			errs = multierr.Append(errs, fmt.Errorf("email: %w", err))
		} else {
			s.metrics.IncNotification("email", "success")
		}
	}

	return errs
}

// PrescriptionUploaded fires the template message confirming the upload.
func (s *service) PrescriptionUploaded(ctx context.Context, mobile string) error {
	if err := s.whatsapp.SendTemplate(ctx, mobile, "prescription_uploaded"); err != nil {
		s.metrics.IncNotification("whatsapp", "failure")
		s.logger.Warn(ctx, "prescription template send failed")
		return err
	}
	s.metrics.IncNotification("whatsapp", "success")
	return nil
}
