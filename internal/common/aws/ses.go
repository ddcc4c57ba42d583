// internal/common/aws/ses.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SESClient struct {
	client *ses.Client
}

func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg)}, nil
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}

// SendUpgradeConfirmation sends the welcome mail after a session upgrade.
// Failures are the caller's to log; the upgrade itself never depends on it.
func (s *SESClient) SendUpgradeConfirmation(ctx context.Context, from, to string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Your Japa Genie wishes are now unlimited"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String("Thanks for upgrading! Your Japa Genie session now has unlimited questions. Come back any time to continue mapping out your visa journey."),
				},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}
