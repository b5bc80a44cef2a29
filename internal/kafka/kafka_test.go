package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"booking-warden/internal/logger"
	"booking-warden/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

type scriptedReader struct {
	msgs []kafka.Message
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *scriptedReader) Close() error { return nil }

func quiet() *logger.Logger { return logger.NewWriterLogger(io.Discard) }

func TestPublishViolationsKeysByUnit(t *testing.T) {
	w := &recordingWriter{}
	p := &Producer{Writer: w, topic: "violations", logger: quiet()}
	detected := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	err := p.PublishViolations(context.Background(), []models.ViolationEvent{
		{RunID: "run-1", UnitID: 12, UnitLabel: "Havevej 12", Messages: []string{"Has more than 2 bookings in 2026"}, DetectedAt: detected},
		{RunID: "run-1", UnitID: 40, UnitLabel: "Unit #40", Messages: []string{"Is not allowed to have bookings"}, DetectedAt: detected},
	})

	require.NoError(t, err)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "12", string(w.msgs[0].Key))
	assert.Equal(t, "40", string(w.msgs[1].Key))

	var ev models.ViolationEvent
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &ev))
	assert.Equal(t, "Unit #40", ev.UnitLabel)
	assert.True(t, ev.DetectedAt.Equal(detected))
}

func TestPublishViolationsNothingToSend(t *testing.T) {
	w := &recordingWriter{err: errors.New("must not be called")}
	p := &Producer{Writer: w, topic: "violations", logger: quiet()}

	assert.NoError(t, p.PublishViolations(context.Background(), nil))
}

func TestPublishViolationsWrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	p := &Producer{Writer: &recordingWriter{err: boom}, topic: "violations", logger: quiet()}

	err := p.PublishViolations(context.Background(), []models.ViolationEvent{{UnitID: 1}})
	assert.ErrorIs(t, err, boom)
}

func TestConsumerSkipsBadMessages(t *testing.T) {
	good, _ := json.Marshal(models.ViolationEvent{UnitID: 41, UnitLabel: "Unit #41"})
	c := &Consumer{
		reader: &scriptedReader{msgs: []kafka.Message{{Value: []byte("{not json")}, {Value: good}}},
		logger: quiet(),
	}

	var got []models.ViolationEvent
	err := c.Start(context.Background(), func(ev models.ViolationEvent) { got = append(got, ev) })

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(41), got[0].UnitID)
}
