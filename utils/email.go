// utils/email.go
package utils

import (
	"fmt"
	"html"

	"github.com/keighl/postmark"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"go-storefront/models"
)

// Mailer sends a single e-mail.
type Mailer interface {
	SendEmail(toEmail, subject, htmlContent string) error
}

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(apiToken, sender string) (*EmailService, error) {
	if apiToken == "" {
		return nil, errors.New("POSTMARK_API_TOKEN is not set")
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
	}, nil
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return errors.Wrap(err, "failed to send email")
	}
	return nil
}

// LogMailer logs messages instead of sending them. Used when no mail
// provider is configured.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) SendEmail(toEmail, subject, _ string) error {
	m.Logger.Info("email not sent, no provider configured",
		zap.String("to", toEmail), zap.String("subject", subject))
	return nil
}

// VerificationMessage builds the e-mail verification message.
func VerificationMessage(baseURL, token string) (subject, body string) {
	link := fmt.Sprintf("%s/verify?token=%s", baseURL, token)
	return "Verify Your Email", fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		html.EscapeString(link),
	)
}

// OrderConfirmationMessage builds the order confirmation message.
func OrderConfirmationMessage(order models.Order) (subject, body string) {
	return "Order Confirmation", fmt.Sprintf(
		"<strong>Dear Customer,</strong><br><br>Thank you for your purchase! Your order (Ref: %s) has been placed successfully and will be delivered by <strong>%s</strong>.<br><br>Total Amount: <strong>$%s</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		order.Reference,
		order.DeliveryDate,
		order.TotalAmount,
		html.EscapeString(order.PaymentMethod),
	)
}

// PaymentStatusMessage tells a customer their payment status changed.
func PaymentStatusMessage(order models.Order) (subject, body string) {
	return "Payment Status Updated", fmt.Sprintf(
		"Dear Customer,<br><br>Your order (Ref: %s) payment status has been updated to '%s'.<br><br>Thank you for shopping with us!",
		order.Reference,
		html.EscapeString(order.PaymentStatus),
	)
}

// ContactMessage forwards a contact form submission to the shop admin.
func ContactMessage(contact models.Contact) (subject, body string) {
	return fmt.Sprintf("New contact message from %s", contact.Name), fmt.Sprintf(
		"<strong>From:</strong> %s &lt;%s&gt;<br><strong>Phone:</strong> %s<br><br>%s",
		html.EscapeString(contact.Name),
		html.EscapeString(contact.Email),
		html.EscapeString(contact.Phone),
		html.EscapeString(contact.Message),
	)
}
