package mail

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"os"
	"strconv"

	"github.com/alohapoopscoop/scoop-service/config"
	"github.com/alohapoopscoop/scoop-service/logger"
	gomail "gopkg.in/gomail.v2"
)

// Template paths inside the embedded FS.
const (
	BookingConfirmationTemplate = "templates/email/booking_confirmation.html"
	PasswordResetOTPTemplate    = "templates/email/password_reset_otp.html"
)

var templatesFS embed.FS

func init() {
	config.LoadEnv()
}

// InitTemplates hands the embedded email templates to this package. Called
// once from main.
func InitTemplates(fs embed.FS) {
	templatesFS = fs
}

func sendEmail(toEmail, subject, templatePath string, data interface{}) error {
	t, err := template.ParseFS(templatesFS, templatePath)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to execute email template %s: %v", templatePath, err)
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", os.Getenv("FROM_EMAIL"))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body.String())

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %w", err)
	}

	smtpHost := os.Getenv("SMTP_HOST")
	dialer := gomail.NewDialer(smtpHost, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	dialer.TLSConfig = &tls.Config{ServerName: smtpHost}

	if err := dialer.DialAndSend(mailer); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	return nil
}

// BookingConfirmationData fills the confirmation email template.
type BookingConfirmationData struct {
	CustomerName       string
	ConfirmationNumber string
	PlanName           string
	ServiceDate        string
	ServiceTime        string
	Address            string
	TotalPrice         string
}

// SendBookingConfirmation emails the customer their confirmation number
// after the payment is verified and the booking row exists. Best effort;
// callers run it async and only log failures.
func SendBookingConfirmation(toEmail string, data BookingConfirmationData) error {
	return sendEmail(toEmail, "Your booking is confirmed - Aloha Poop Scoop", BookingConfirmationTemplate, data)
}

// SendPasswordResetOTP emails a password reset code.
func SendPasswordResetOTP(toEmail, otp string) error {
	return sendEmail(toEmail, "Your password reset code - Aloha Poop Scoop", PasswordResetOTPTemplate, map[string]string{"OTP": otp})
}
