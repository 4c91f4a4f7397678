package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/alumni-network-api/internal/models"
	appErrors "github.com/noah-isme/alumni-network-api/pkg/errors"
	"github.com/noah-isme/alumni-network-api/pkg/mail"
)

type recipientListerStub struct {
	recipients []models.Recipient
	err        error
}

func (s recipientListerStub) ListRecipients(context.Context) ([]models.Recipient, error) {
	return s.recipients, s.err
}

type senderStub struct {
	mu     sync.Mutex
	sent   []mail.Message
	failOn map[string]error
}

func (s *senderStub) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failOn[msg.To]; ok {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type broadcastMetricsStub struct{ reports int }

func (s *broadcastMetricsStub) RecordBroadcast(models.BroadcastReport, time.Duration) { s.reports++ }

func recipients(n int) []models.Recipient {
	out := make([]models.Recipient, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Recipient{UID: fmt.Sprintf("u%d", i), Name: fmt.Sprintf("Alumnus %d", i), Email: fmt.Sprintf("u%d@example.com", i)})
	}
	return out
}

func newBroadcastFixture(lifecycle context.Context, list []models.Recipient, sender *senderStub) (*BroadcastService, *int32, *broadcastMetricsStub) {
	metrics := &broadcastMetricsStub{}
	svc := NewBroadcastService(lifecycle, recipientListerStub{recipients: list}, sender, nil, nil, metrics, nil, BroadcastConfig{BatchSize: 10, BatchDelay: 25 * time.Millisecond})
	var waits int32
	svc.plan.wait = func(ctx context.Context, _ time.Duration) error {
		atomic.AddInt32(&waits, 1)
		return ctx.Err()
	}
	return svc, &waits, metrics
}

func TestBroadcastSendFiltersAndBatches(t *testing.T) {
	list := recipients(23)
	list = append(list, models.Recipient{Name: "No Mail", Email: "  "}, models.Recipient{Name: "Bad Mail", Email: "not-an-address"})
	sender := &senderStub{}
	svc, waits, metrics := newBroadcastFixture(context.Background(), list, sender)

	report, err := svc.Send(context.Background(), sampleEvent())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 23, report.TotalAlumni)
	assert.Equal(t, 23, report.SuccessCount)
	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, "Emails sent to 23/23 alumni", report.Message)
	assert.EqualValues(t, 2, atomic.LoadInt32(waits))
	assert.Len(t, sender.sent, 23)
	assert.Equal(t, 1, metrics.reports)
	assert.Equal(t, "Invitation: Reunion <2024>", sender.sent[0].Subject)
}

func TestBroadcastSendCountsFailures(t *testing.T) {
	failOn := map[string]error{}
	for i := 0; i < 12; i++ {
		failOn[fmt.Sprintf("u%d@example.com", i)] = errors.New("mailbox unavailable")
	}
	sender := &senderStub{failOn: failOn}
	svc, _, _ := newBroadcastFixture(context.Background(), recipients(15), sender)

	report, err := svc.Send(context.Background(), sampleEvent())
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 3, report.SuccessCount)
	assert.Equal(t, 12, report.FailedCount)
	assert.Len(t, report.FailedEmails, 10)
	assert.Equal(t, "Emails sent to 3/15 alumni", report.Message)
}

func TestBroadcastSendNoRecipients(t *testing.T) {
	svc, _, _ := newBroadcastFixture(context.Background(), []models.Recipient{{Email: "nope"}}, &senderStub{})

	_, err := svc.Send(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNoRecipients)
	assert.Equal(t, "No alumni with valid email addresses found", appErrors.FromError(err).Message)
}

func TestBroadcastSendValidatesEvent(t *testing.T) {
	sender := &senderStub{}
	svc, _, _ := newBroadcastFixture(context.Background(), recipients(1), sender)

	event := sampleEvent()
	event.Location = ""
	_, err := svc.Send(context.Background(), event)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, sender.sent)
}

func TestBroadcastOutlivesRequestContext(t *testing.T) {
	sender := &senderStub{}
	svc, _, _ := newBroadcastFixture(context.Background(), recipients(25), sender)

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Send(reqCtx, sampleEvent())
	require.NoError(t, err)
	assert.Equal(t, 25, report.SuccessCount)
}

func TestBroadcastStopsOnShutdown(t *testing.T) {
	lifecycle, shutdown := context.WithCancel(context.Background())
	sender := &senderStub{}
	svc, _, _ := newBroadcastFixture(lifecycle, recipients(25), sender)
	svc.plan.wait = func(ctx context.Context, _ time.Duration) error {
		shutdown()
		<-ctx.Done()
		return ctx.Err()
	}

	_, err := svc.Send(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.Contains(t, err.Error(), "broadcast interrupted after 10/25 alumni")
	assert.Len(t, sender.sent, 10)
}
