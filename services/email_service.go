// File: /services/email_service.go
package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"gopkg.in/gomail.v2"

	"inkwell-api/config"
)

// EmailService delivers verification and welcome mail over SMTP and keeps
// outstanding verification codes in memory.
type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer

	verificationCodes map[string]VerificationCode
	mutex             sync.RWMutex
}

type VerificationCode struct {
	Code      string
	Email     string
	ExpiresAt time.Time
	Used      bool
}

func NewEmailService(cfg *config.Config) *EmailService {
	service := &EmailService{
		config:            cfg,
		dialer:            gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		verificationCodes: make(map[string]VerificationCode),
	}

	go service.cleanupExpiredCodes()

	return service
}

func (es *EmailService) generateCode() string {
	const digits = "0123456789"
	code := make([]byte, 6)
	for i := range code {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		code[i] = digits[num.Int64()]
	}
	return string(code)
}

// SendVerificationEmail mails a verification code, reusing an unexpired
// unused one if it exists. Returns the code so development mode can echo it.
func (es *EmailService) SendVerificationEmail(email, name string) (string, error) {
	es.mutex.RLock()
	existing, exists := es.verificationCodes[email]
	es.mutex.RUnlock()

	var code string
	if exists && !existing.Used && time.Now().Before(existing.ExpiresAt) {
		code = existing.Code
	} else {
		code = es.generateCode()
		es.mutex.Lock()
		es.verificationCodes[email] = VerificationCode{
			Code:      code,
			Email:     email,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}
		es.mutex.Unlock()
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Inkwell - Verify your email")
	m.SetBody("text/html", fmt.Sprintf(`
<div style="font-family: Georgia, serif; max-width: 560px; margin: 0 auto;">
  <h2>Hello %s,</h2>
  <p>Welcome to Inkwell. Enter this code to verify your email address:</p>
  <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</p>
  <p>The code expires in 10 minutes. If you did not sign up, ignore this mail.</p>
</div>`, name, code))

	if err := es.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("failed to send verification email: %w", err)
	}
	return code, nil
}

// VerifyCode consumes a pending code for the email. A code is single-use.
func (es *EmailService) VerifyCode(email, code string) bool {
	es.mutex.Lock()
	defer es.mutex.Unlock()

	stored, exists := es.verificationCodes[email]
	if !exists || stored.Used || time.Now().After(stored.ExpiresAt) {
		return false
	}
	if stored.Code != code {
		return false
	}

	stored.Used = true
	es.verificationCodes[email] = stored
	return true
}

func (es *EmailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to Inkwell")
	m.SetBody("text/html", fmt.Sprintf(`
<div style="font-family: Georgia, serif; max-width: 560px; margin: 0 auto;">
  <h2>Welcome, %s!</h2>
  <p>Your account is verified. Write your first post, tag it, and join the
  conversation.</p>
</div>`, name))

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}

func (es *EmailService) cleanupExpiredCodes() {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		es.mutex.Lock()
		for email, code := range es.verificationCodes {
			if code.Used || now.After(code.ExpiresAt) {
				delete(es.verificationCodes, email)
			}
		}
		es.mutex.Unlock()
	}
}
