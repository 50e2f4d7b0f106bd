package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishModerationEvent(ctx context.Context, ev ModerationEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func TestModerationEvent_EncodeDecode(t *testing.T) {
	ev := ModerationEvent{
		Type:       EventReportResolved,
		ReportID:   7,
		PostID:     3,
		ActorID:    1,
		Action:     "approve",
		Outcome:    "removed",
		Cascaded:   2,
		OccurredAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := ev.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"reportId":7`)
	assert.Contains(t, string(raw), `"occurredAt":"2025-01-02T03:04:05Z"`)

	got, err := DecodeModerationEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, ev, got)

	_, err = DecodeModerationEvent([]byte("{"))
	assert.Error(t, err)
}

func TestFanout_PassesEventThrough(t *testing.T) {
	ctx := context.Background()
	ev := ModerationEvent{Type: EventReportCreated, ReportID: 9, PostID: 4}

	first, second := &mockPublisher{}, &mockPublisher{}
	first.On("PublishModerationEvent", ctx, ev).Return(nil).Once()
	second.On("PublishModerationEvent", ctx, mock.MatchedBy(func(got ModerationEvent) bool {
		return got.ReportID == 9 && got.Type == EventReportCreated
	})).Return(errors.New("nats: connection closed")).Once()

	f := NewFanout().Add("redis", first).Add("nats", second)
	require.Equal(t, 2, f.Len())

	err := f.PublishModerationEvent(ctx, ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats")

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}
