//go:generate mockery --name Mailer --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/middleware"
)

// Mailer はテスト終了のお知らせメールの送信口
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// --- LogMailer ---
type LogMailer struct{}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Sending Email (LogMailer) ---", "to", to, "subject", subject, "body", body)
	return nil
}

// --- SmtpMailer ---
type SmtpMailer struct {
	cfg *config.SMTPConfig
}

func (m *SmtpMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	logger.Debug("Attempting to send email via SMTP", "smtp_addr", addr, "from", m.cfg.From, "to", to)

	// 開発用のSMTP (MailHogなど) は平文接続なので低レベルAPIで送る
	c, err := smtp.Dial(addr)
	if err != nil {
		logger.Error("Failed to connect to SMTP server", "error", err, "addr", addr)
		return err
	}
	defer c.Close()

	if err = c.Mail(m.cfg.From); err != nil {
		logger.Error("Failed to set MAIL FROM", "error", err, "from", m.cfg.From)
		return err
	}
	if err = c.Rcpt(to); err != nil {
		logger.Error("Failed to set RCPT TO", "error", err, "to", to)
		return err
	}

	wc, err := c.Data()
	if err != nil {
		logger.Error("Failed to open data writer", "error", err)
		return err
	}

	msg := "To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n"
	if _, err = wc.Write([]byte(msg)); err != nil {
		wc.Close()
		logger.Error("Failed to write email data", "error", err)
		return err
	}
	if err = wc.Close(); err != nil {
		logger.Error("Failed to finish email data", "error", err)
		return err
	}

	logger.Info("Email sent successfully via SMTP", "to", to, "subject", subject)
	return c.Quit()
}

// NewMailer は notify.mailer の設定に応じた Mailer を返します。
// 未設定ならメール通知はしない (nil を返す)。
func NewMailer(cfg *config.Config) (Mailer, error) {
	logger := slog.Default()
	switch cfg.Notify.Mailer {
	case "":
		logger.Info("Mail notification disabled")
		return nil, nil
	case "smtp":
		logger.Info("Initializing SMTP mailer...")
		return &SmtpMailer{cfg: &cfg.SMTP}, nil
	case "ses":
		logger.Info("Initializing SES mailer...")
		return NewSESMailer(cfg)
	case "log":
		logger.Info("Initializing Log mailer...")
		return &LogMailer{}, nil
	default:
		logger.Warn("Unknown mailer type, defaulting to LogMailer", "type", cfg.Notify.Mailer)
		return &LogMailer{}, nil
	}
}
