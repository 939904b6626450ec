// internal/notify/email.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"screener/internal/common/config"
	"screener/internal/common/logger"
	"screener/internal/models"
)

// SESAPI is the slice of the SES client the notifier uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailNotifier mails finished assessment reports to the recruiting
// inbox. Notification is best-effort: a send failure is logged by the
// caller and never blocks session completion.
type EmailNotifier struct {
	client    SESAPI
	fromEmail string
	toEmail   string
	logger    logger.Logger
}

// New builds a notifier from config, or returns nil when email delivery
// is disabled. Callers treat a nil notifier as a no-op.
func New(ctx context.Context, cfg config.EmailConfig, log logger.Logger) (*EmailNotifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClient(ses.NewFromConfig(awsCfg), cfg, log), nil
}

func NewWithClient(client SESAPI, cfg config.EmailConfig, log logger.Logger) *EmailNotifier {
	return &EmailNotifier{
		client:    client,
		fromEmail: cfg.FromEmail,
		toEmail:   cfg.RecruiterEmail,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// SendReport mails one assessment report. The profile must already be
// masked by the caller.
func (n *EmailNotifier) SendReport(ctx context.Context, profile models.CandidateProfile, report string) error {
	subject := fmt.Sprintf("Technical Assessment Report: %s (%s)", profile.FullName, profile.DesiredPosition)

	_, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.fromEmail),
		Destination: &types.Destination{ToAddresses: []string{n.toEmail}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(report)},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("send report email: %w", err)
	}

	n.logger.Info("assessment report mailed", map[string]interface{}{
		"position": profile.DesiredPosition,
	})
	return nil
}
