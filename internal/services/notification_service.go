// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stocksplit/stocksplit-backend/internal/config"
	"github.com/stocksplit/stocksplit-backend/internal/models"
)

// NotificationService emails the owner when stock runs low and investors
// when a payout lands. Failures are logged, never surfaced: a sale or payout
// must not depend on the mail server.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

func (s *NotificationService) SendLowStockAlert(product *models.Product) {
	var owner models.User
	if err := s.db.Where("role = ?", models.UserRoleOwner).First(&owner).Error; err != nil {
		logrus.WithError(err).Warn("low stock alert skipped: no owner account")
		return
	}

	data := map[string]interface{}{
		"ProductName":  product.Name,
		"ProductCode":  product.Code,
		"Quantity":     product.Quantity,
		"Threshold":    product.LowStockThreshold,
		"InvestorName": product.Investor.Username,
	}

	tmpl := s.getEmailTemplate("low_stock")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Error("failed to render low stock email")
		return
	}

	subject := fmt.Sprintf("Low stock: %s (%s)", product.Name, product.Code)
	if err := s.sendEmail(owner.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("product", product.Code).Error("failed to send low stock alert")
	}
}

func (s *NotificationService) SendPayoutRecordedNotification(investor *models.User, payout *models.Payout) {
	data := map[string]interface{}{
		"InvestorName": investor.Username,
		"Amount":       payout.Amount.StringFixed(2),
		"Notes":        payout.Notes,
	}

	tmpl := s.getEmailTemplate("payout_recorded")
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Error("failed to render payout email")
		return
	}

	subject := "Payout recorded: " + payout.Amount.StringFixed(2)
	if err := s.sendEmail(investor.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("investor", investor.Username).Error("failed to send payout notification")
	}
}

// Helper methods
func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email skipped (SMTP not configured)")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"low_stock": {
			Subject: "Low stock alert",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Low stock alert</h2>
	<p>{{.ProductName}} ({{.ProductCode}}) is down to {{.Quantity}} units
	(threshold {{.Threshold}}).</p>
	<p>Investor: {{.InvestorName}}</p>
</body>
</html>`,
		},
		"payout_recorded": {
			Subject: "Payout recorded",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Payout recorded</h2>
	<p>Hello {{.InvestorName}},</p>
	<p>A payout of {{.Amount}} has been recorded for you.</p>
	{{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
