package alerts

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(ctx context.Context, payload *AlertPayload) error {
	s.calls++
	return s.err
}

func testPayload() *AlertPayload {
	return &AlertPayload{
		Type:         TypeWhale,
		Platform:     "kalshi",
		MarketID:     "KXFED-25DEC",
		MarketTitle:  "Fed rate cut in December?",
		Side:         "yes",
		USDValue:     4200,
		InsiderScore: 61.5,
		ScoreLabel:   "Medium",
		Timestamp:    time.Unix(1700000000, 0).UTC(),
		Environment:  "test",
	}
}

func TestMultiSenderFansOut(t *testing.T) {
	a, b := &stubSender{}, &stubSender{}
	multi := NewMultiSender(a, b)

	require.NoError(t, multi.Send(context.Background(), testPayload()))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestMultiSenderCollectsErrors(t *testing.T) {
	failing := &stubSender{err: errors.New("webhook down")}
	ok := &stubSender{}
	multi := NewMultiSender(failing, ok)

	err := multi.Send(context.Background(), testPayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook down")
	assert.Equal(t, 1, ok.calls, "one failing sender does not stop the others")
}

func TestLogSender(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	err := NewLogSender(log).Send(context.Background(), testPayload())
	assert.NoError(t, err)
}
