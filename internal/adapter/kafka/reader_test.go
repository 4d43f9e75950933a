package kafka

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/config"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves queued messages, then blocks until the context ends,
// like a partition with nothing left to deliver.
type fakeFetcher struct {
	msgs   []kafkago.Message
	offset int64
	calls  int
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.calls++
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	f.offset = msg.Offset + 1
	return msg, nil
}

func (f *fakeFetcher) Offset() int64 { return f.offset }

func aisMessage(offset int64) kafkago.Message {
	return kafkago.Message{
		Offset: offset,
		Value:  []byte(fmt.Sprintf(`{"MMSI": %d, "Type of mobile": "Class A"}`, 219000000+offset)),
	}
}

func newTestReader(idle time.Duration) *Reader {
	return &Reader{
		topic:       "raw-ais-reports",
		idleTimeout: idle,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestDrain(t *testing.T) {
	tests := []struct {
		name        string
		msgs        []kafkago.Message
		first, last int64
		wantRecords int
		wantCalls   int
	}{
		{
			name:        "all offsets delivered",
			msgs:        []kafkago.Message{aisMessage(0), aisMessage(1), aisMessage(2)},
			first:       0,
			last:        3,
			wantRecords: 3,
			wantCalls:   3,
		},
		{
			name:        "transaction marker at tail",
			msgs:        []kafkago.Message{aisMessage(0), aisMessage(1), aisMessage(2)},
			first:       0,
			last:        4,
			wantRecords: 3,
			wantCalls:   4,
		},
		{
			name:        "compacted gap before newer message",
			msgs:        []kafkago.Message{aisMessage(10), aisMessage(15)},
			first:       10,
			last:        13,
			wantRecords: 1,
			wantCalls:   2,
		},
		{
			name:        "malformed message at tail",
			msgs:        []kafkago.Message{aisMessage(0), {Offset: 1, Value: []byte("{")}},
			first:       0,
			last:        2,
			wantRecords: 1,
			wantCalls:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{msgs: tt.msgs, offset: tt.first}

			start := time.Now()
			batch, err := newTestReader(50*time.Millisecond).drain(context.Background(), fetcher, tt.first, tt.last)
			require.NoError(t, err)

			assert.Len(t, batch.Records, tt.wantRecords)
			assert.Equal(t, tt.wantCalls, fetcher.calls)
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}

func TestDrain_ParentContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{offset: 0}
	_, err := newTestReader(time.Minute).drain(ctx, fetcher, 0, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewReader_DefaultIdleTimeout(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaSourceTopic: "raw-ais-reports"}
	r := NewReader(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, defaultSnapshotIdleTimeout, r.idleTimeout)

	cfg.KafkaSnapshotIdleTimeout = 2 * time.Second
	r = NewReader(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Equal(t, 2*time.Second, r.idleTimeout)
}
