// internal/events/elasticsearch.go
package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"mergington-activities/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

const ElasticsearchSinkName = "elasticsearch"

// ElasticsearchSink indexes each event under its id, so redelivery overwrites.
type ElasticsearchSink struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSink(client *elasticsearch.Client, index string) *ElasticsearchSink {
	return &ElasticsearchSink{client: client, index: index}
}

func (s *ElasticsearchSink) Name() string { return ElasticsearchSinkName }

func (s *ElasticsearchSink) Publish(ctx context.Context, event models.EnrollmentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithDocumentID(event.ID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index event: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index event: %s", res.Status())
	}
	return nil
}
