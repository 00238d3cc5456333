package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/memindex/pkg/resilience"
)

type sample struct {
	DocID  uint64   `json:"doc_id"`
	Tokens []string `json:"tokens"`
}

func TestEncodeDecodeEvents(t *testing.T) {
	msgs, err := encodeEvents([]Event{
		{Key: "1", Value: sample{DocID: 1, Tokens: []string{"hello", "doc"}}},
		{Key: "2", Value: sample{DocID: 2}},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte("1"), msgs[0].Key)

	got, err := DecodeJSON[sample](msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, sample{DocID: 1, Tokens: []string{"hello", "doc"}}, got)
}

func TestEncodeEventsRejectsUnmarshalable(t *testing.T) {
	_, err := encodeEvents([]Event{{Key: "x", Value: make(chan int)}})
	assert.Error(t, err)
}

func TestDecodeJSONError(t *testing.T) {
	_, err := DecodeJSON[sample]([]byte("{not json"))
	assert.ErrorContains(t, err, "decoding kafka message")
}

func TestReaderConfig(t *testing.T) {
	cfg := config.Default().Kafka
	rc := readerConfig(cfg)
	assert.Equal(t, cfg.IngestTopic, rc.Topic)
	assert.Equal(t, cfg.ConsumerGroup, rc.GroupID)
	assert.Equal(t, kafka.LastOffset, rc.StartOffset)

	cfg.FromBeginning = true
	assert.Equal(t, kafka.FirstOffset, readerConfig(cfg).StartOffset)
}

var errStoreDown = errors.New("store unavailable")

func fastRetry(attempts int) resilience.RetryConfig {
	return resilience.RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetryingRecoversFromTransientFailure(t *testing.T) {
	calls := 0
	h := Retrying(func(_ context.Context, key, value []byte) error {
		calls++
		assert.Equal(t, []byte("k"), key)
		assert.Equal(t, []byte("v"), value)
		if calls < 3 {
			return errStoreDown
		}
		return nil
	}, fastRetry(5))

	require.NoError(t, h(context.Background(), []byte("k"), []byte("v")))
	assert.Equal(t, 3, calls)
}

func TestRetryingGivesUp(t *testing.T) {
	calls := 0
	h := Retrying(func(context.Context, []byte, []byte) error {
		calls++
		return errStoreDown
	}, fastRetry(4))

	err := h(context.Background(), nil, nil)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 4, calls)
}

func TestRetryingStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	h := Retrying(func(context.Context, []byte, []byte) error {
		calls++
		cancel()
		return errStoreDown
	}, resilience.RetryConfig{MaxAttempts: 10, InitialDelay: time.Hour})

	assert.ErrorIs(t, h(ctx, nil, nil), context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestFetchBackoffGrowsAndCaps(t *testing.T) {
	first := resilience.Backoff(1, fetchRetry)
	assert.GreaterOrEqual(t, first, 200*time.Millisecond)
	assert.LessOrEqual(t, first, 300*time.Millisecond)
	assert.Greater(t, resilience.Backoff(4, fetchRetry), time.Second)
	assert.LessOrEqual(t, resilience.Backoff(50, fetchRetry), 30*time.Second)
}
