// internal/events/ses.go
package events

import (
	"context"
	"fmt"

	awsclient "mergington-activities/internal/common/aws"
	"mergington-activities/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const EmailSinkName = "ses"

// EmailSink mails the participant a confirmation of the roster change.
type EmailSink struct {
	client awsclient.SESAPI
	from   string
}

func NewEmailSink(client awsclient.SESAPI, from string) *EmailSink {
	return &EmailSink{client: client, from: from}
}

func (s *EmailSink) Name() string { return EmailSinkName }

func (s *EmailSink) Publish(ctx context.Context, event models.EnrollmentEvent) error {
	subject, text := confirmationMessage(event)

	_, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{event.Participant},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}

func confirmationMessage(event models.EnrollmentEvent) (string, string) {
	switch event.Type {
	case models.EventParticipantUnenrolled:
		return fmt.Sprintf("You have left %s", event.Activity),
			fmt.Sprintf("You are no longer signed up for %s.", event.Activity)
	default:
		return fmt.Sprintf("You are signed up for %s", event.Activity),
			fmt.Sprintf("You are now signed up for %s. %d of %d places are taken.",
				event.Activity, event.RosterSize, event.Capacity)
	}
}
