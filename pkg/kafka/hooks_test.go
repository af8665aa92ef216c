package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHookChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, d []byte) (context.Context, kafka.Message, []byte, error) {
				order = append(order, "before:"+name)
				return ctx, km, append(d, name...), nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				order = append(order, "after:"+name)
			},
		}
	}
	chain := NewHookChain(mk("a"), nil, mk("b"))

	_, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "xab", string(data))

	chain.AfterHandle(context.Background(), "t", kafka.Message{}, data, nil)
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, order)
}

func TestHookChainRecoversPanics(t *testing.T) {
	chain := NewHookChain(HookFuncs{
		Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("bad hook")
		},
		After: func(context.Context, string, kafka.Message, []byte, error) { panic("bad after") },
	})

	_, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("keep"))
	var he *HookError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "ERR_PANIC", he.Code)
	assert.Equal(t, "keep", string(data))

	assert.NotPanics(t, func() { chain.AfterHandle(context.Background(), "t", kafka.Message{}, nil, nil) })
}

func TestTraceIDRoundTrip(t *testing.T) {
	km := kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}
	ctx := WithTraceID(context.Background(), ExtractTraceID(km))
	assert.Equal(t, "abc", TraceID(ctx))
	assert.Equal(t, "", TraceID(context.Background()))

	now := time.Now()
	got, ok := StartTime(WithStartTime(ctx, now))
	assert.True(t, ok)
	assert.Equal(t, now, got)
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 100*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 100*time.Millisecond)
	}
}
