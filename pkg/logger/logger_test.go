package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFieldKeyValues(t *testing.T) {
	cases := []struct {
		field Field
		key   string
		value interface{}
	}{
		{Bool("rate_limit", true), "rate_limit", true},
		{Strings("brokers", []string{"a:9092", "b:9092"}), "brokers", "a:9092, b:9092"},
		{Duration("took", 1500*time.Millisecond), "took", int64(1500)},
		{Int64("user_id", 7), "user_id", int64(7)},
	}
	for _, tc := range cases {
		k, v := tc.field.GetKeyValue()
		assert.Equal(t, tc.key, k)
		assert.Equal(t, tc.value, v)
	}
}
