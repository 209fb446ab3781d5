package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go_scorm_attempt_keep/internal/config"
	"go_scorm_attempt_keep/internal/middleware"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESMailer は AWS SES を使ってメールを送信する実装です
type SESMailer struct {
	client sesSendEmailAPI
	cfg    *config.SESConfig
}

// sesSendEmailAPI は *sesv2.Client のうち使うメソッドだけを切り出したもの (テスト用)
type sesSendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// NewSESMailer は ses.auth_type に応じて認証方法を切り替えてSESクライアントを生成します
func NewSESMailer(cfg *config.Config) (Mailer, error) {
	awsCfgOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SES.Region),
	}

	switch cfg.SES.AuthType {
	case "static_credentials":
		slog.Info("Configuring SES with static credentials.")
		if cfg.SES.AccessKeyID == "" || cfg.SES.SecretAccessKey == "" {
			return nil, errors.New("ses auth_type is 'static_credentials' but access_key_id or secret_access_key is missing")
		}
		creds := credentials.NewStaticCredentialsProvider(cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, "")
		awsCfgOpts = append(awsCfgOpts, awsconfig.WithCredentialsProvider(creds))

	case "iam_role":
		// ECS Task Role などはSDKが自動で探す
		slog.Info("Configuring SES with IAM Role credentials.")

	default:
		slog.Warn("Unknown SES auth_type specified, defaulting to IAM Role.", "type", cfg.SES.AuthType)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsCfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config for ses: %w", err)
	}

	return &SESMailer{
		client: sesv2.NewFromConfig(awsCfg),
		cfg:    &cfg.SES,
	}, nil
}

// Send は AWS SES を使用してメールを送信します
func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	logger := middleware.GetLogger(ctx)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.cfg.From),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	_, err := m.client.SendEmail(ctx, input)
	if err != nil {
		logger.Error("Failed to send email via SES", "error", err, "to", to)
		return err
	}

	logger.Info("Email sent successfully via SES", "to", to, "subject", subject)
	return nil
}
