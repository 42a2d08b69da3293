package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mergington-activities/internal/models"
)

func TestPostgresSink_Publish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	event := testEvent()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO enrollment_audit")).
		WithArgs(event.ID, "participant.enrolled", "Chess Club", event.Participant, 3, 12, event.OccurredAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sink := NewPostgresSink(db, "enrollment_audit")
	assert.Equal(t, PostgresSinkName, sink.Name())
	require.NoError(t, sink.Publish(context.Background(), event))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSink_PublishError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO enrollment_audit").WillReturnError(errors.New("relation does not exist"))

	err = NewPostgresSink(db, "enrollment_audit").Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert audit row")
}

func TestRedisStreamSink_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewRedisStreamSink(client, "activities:enrollments", 100)
	require.NoError(t, sink.Publish(context.Background(), testEvent()))

	entries, err := client.XRange(context.Background(), "activities:enrollments", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Chess Club", entries[0].Values["activity"])
	assert.Equal(t, "participant.enrolled", entries[0].Values["type"])
	assert.Equal(t, "newstudent@mergington.edu", entries[0].Values["participant"])
}

func TestRedisStreamSink_PublishError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.CustomMatch(matchStreamEntry).
		ExpectXAdd(&redis.XAddArgs{Stream: "activities:enrollments", Values: streamValues(testEvent())}).
		SetErr(errors.New("READONLY You can't write against a read only replica."))

	err := NewRedisStreamSink(client, "activities:enrollments", 0).Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xadd activities:enrollments")
	assert.Contains(t, err.Error(), "READONLY")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// matchStreamEntry compares XADD arguments ignoring field order, which
// follows map iteration.
func matchStreamEntry(expected, actual []interface{}) error {
	if len(expected) < 3 || len(actual) != len(expected) {
		return fmt.Errorf("expected %d args, got %d", len(expected), len(actual))
	}
	for i := 0; i < 3; i++ {
		if fmt.Sprint(expected[i]) != fmt.Sprint(actual[i]) {
			return fmt.Errorf("arg %d: expected %v, got %v", i, expected[i], actual[i])
		}
	}
	want, got := fieldPairs(expected[3:]), fieldPairs(actual[3:])
	for key, value := range want {
		if got[key] != value {
			return fmt.Errorf("field %q: expected %q, got %q", key, value, got[key])
		}
	}
	if len(got) != len(want) {
		return fmt.Errorf("expected %d fields, got %d", len(want), len(got))
	}
	return nil
}

func fieldPairs(args []interface{}) map[string]string {
	pairs := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		pairs[fmt.Sprint(args[i])] = fmt.Sprint(args[i+1])
	}
	return pairs
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSSink_Publish(t *testing.T) {
	client := &fakeSNS{}
	sink := NewSNSSink(client, "arn:aws:sns:us-east-1:000000000000:enrollments")

	require.NoError(t, sink.Publish(context.Background(), testEvent()))
	require.NotNil(t, client.input)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:enrollments", aws.ToString(client.input.TopicArn))
	assert.Equal(t, "participant.enrolled", aws.ToString(client.input.MessageAttributes["event_type"].StringValue))

	var decoded models.EnrollmentEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.input.Message)), &decoded))
	assert.Equal(t, testEvent().ID, decoded.ID)
}

func TestSNSSink_PublishError(t *testing.T) {
	err := NewSNSSink(&fakeSNS{err: errors.New("throttled")}, "arn").Publish(context.Background(), testEvent())
	assert.ErrorContains(t, err, "sns publish")
}

type fakeSES struct {
	input *ses.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = in
	return &ses.SendEmailOutput{MessageId: aws.String("mail-1")}, nil
}

func TestEmailSink_Publish(t *testing.T) {
	client := &fakeSES{}
	sink := NewEmailSink(client, "activities@mergington.edu")

	require.NoError(t, sink.Publish(context.Background(), testEvent()))
	assert.Equal(t, "activities@mergington.edu", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"newstudent@mergington.edu"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "You are signed up for Chess Club", aws.ToString(client.input.Message.Subject.Data))

	event := testEvent()
	event.Type = models.EventParticipantUnenrolled
	require.NoError(t, sink.Publish(context.Background(), event))
	assert.Equal(t, "You have left Chess Club", aws.ToString(client.input.Message.Subject.Data))
}

func TestElasticsearchSink_Publish(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotPath, gotBody = r.URL.Path, string(body)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}))
	defer srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	sink := NewElasticsearchSink(client, "enrollment-events")
	require.NoError(t, sink.Publish(context.Background(), testEvent()))
	assert.True(t, strings.HasPrefix(gotPath, "/enrollment-events/_doc/"))
	assert.True(t, strings.HasSuffix(gotPath, testEvent().ID))
	assert.Contains(t, gotBody, `"activity":"Chess Club"`)
}

func TestElasticsearchSink_PublishError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}, MaxRetries: 0, DisableRetry: true})
	require.NoError(t, err)

	err = NewElasticsearchSink(client, "enrollment-events").Publish(context.Background(), testEvent())
	assert.ErrorContains(t, err, "503")
}
