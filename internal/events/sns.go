// internal/events/sns.go
package events

import (
	"context"
	"encoding/json"
	"fmt"

	awsclient "mergington-activities/internal/common/aws"
	"mergington-activities/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const SNSSinkName = "sns"

// SNSSink publishes the JSON event to a topic. Subscribers can filter on the
// event_type message attribute.
type SNSSink struct {
	client   awsclient.SNSAPI
	topicARN string
}

func NewSNSSink(client awsclient.SNSAPI, topicARN string) *SNSSink {
	return &SNSSink{client: client, topicARN: topicARN}
}

func (s *SNSSink) Name() string { return SNSSinkName }

func (s *SNSSink) Publish(ctx context.Context, event models.EnrollmentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Type)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
