package telemetry

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/answjddnjs04/errand-app/internal/mocks"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmitEnvelopeFields(t *testing.T) {
	pub := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(pub, "errand.audit", "errand-app", "test", testLogger())

	var captured AuditEnvelope
	pub.On("Publish", mock.Anything, "errand.audit", mock.AnythingOfType("telemetry.AuditEnvelope")).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(AuditEnvelope)
		}).Return(nil).Once()

	userID := "user-1"
	emitter.Emit(context.Background(), "errand_created", "INFO", "Errand created", "req-1", &userID)

	assert.Equal(t, 1, captured.SchemaVersion)
	assert.Equal(t, "errand_created", captured.EventType)
	assert.Equal(t, "errand-app", captured.Service)
	assert.Equal(t, "test", captured.Environment)
	assert.Equal(t, "req-1", captured.RequestID)
	require.NotNil(t, captured.UserID)
	assert.Equal(t, "user-1", *captured.UserID)
	assert.Equal(t, "INFO", captured.Payload.Level)
	assert.Equal(t, "Errand created", captured.Payload.Text)

	_, err := time.Parse(time.RFC3339Nano, captured.OccurredAt)
	assert.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestEmitAnonymousCaller(t *testing.T) {
	pub := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(pub, "errand.audit", "errand-app", "test", testLogger())

	var captured AuditEnvelope
	pub.On("Publish", mock.Anything, "errand.audit", mock.AnythingOfType("telemetry.AuditEnvelope")).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(AuditEnvelope)
		}).Return(nil).Once()

	emitter.Emit(context.Background(), "audit_test", "INFO", "audit test", "req-2", nil)

	assert.Nil(t, captured.UserID)
	pub.AssertExpectations(t)
}

func TestEmitSwallowsPublishFailure(t *testing.T) {
	pub := new(mocks.PublisherMock)
	emitter := NewAuditEmitter(pub, "errand.audit", "errand-app", "test", testLogger())

	pub.On("Publish", mock.Anything, "errand.audit", mock.AnythingOfType("telemetry.AuditEnvelope")).
		Return(assert.AnError).Once()

	// Must not panic or propagate; auditing never affects request outcomes.
	emitter.Emit(context.Background(), "errand_accepted", "INFO", "Errand accepted", "req-3", nil)
	pub.AssertExpectations(t)
}

func TestEmitNilEmitterIsSafe(t *testing.T) {
	var emitter *AuditEmitter
	emitter.Emit(context.Background(), "errand_created", "INFO", "noop", "req-4", nil)
}
