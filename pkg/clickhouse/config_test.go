package clickhouse

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(opts ...ClientOption) ClientConfig {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func TestDSNEscapesCredentials(t *testing.T) {
	cfg := build(
		WithAddr("ch.local", 9440),
		WithDatabase("cupocast"),
		WithCredentials("svc", "p@ss/w:rd?"),
		WithMaxExecutionTime(30*time.Second),
		WithAsyncInsert(true, true),
	)

	u, err := url.Parse(cfg.DSN())
	require.NoError(t, err)
	assert.Equal(t, "clickhouse", u.Scheme)
	assert.Equal(t, "ch.local:9440", u.Host)
	assert.Equal(t, "/cupocast", u.Path)
	assert.Equal(t, "svc", u.User.Username())
	pass, _ := u.User.Password()
	assert.Equal(t, "p@ss/w:rd?", pass)

	q := u.Query()
	assert.Equal(t, "5s", q.Get("dial_timeout"))
	assert.Equal(t, "10s", q.Get("read_timeout"))
	assert.Equal(t, "30", q.Get("max_execution_time"))
	assert.Equal(t, "1", q.Get("async_insert"))
	assert.Equal(t, "1", q.Get("wait_for_async_insert"))
	assert.False(t, q.Has("write_timeout"))
}

func TestDSNHTTPAndDefaults(t *testing.T) {
	cfg := build(WithAddr("localhost", 0), WithHTTP(true), WithAsyncInsert(false, true))

	u, err := url.Parse(cfg.DSN())
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/default", u.Path)
	assert.False(t, u.Query().Has("async_insert"))
	assert.False(t, u.Query().Has("wait_for_async_insert"))
}

func TestValidate(t *testing.T) {
	assert.Error(t, build().validate())
	assert.Error(t, build(WithAddr("h", 0), WithDatabase("")).validate())
	assert.Error(t, build(WithAddr("h", 0), WithPool(2, 5, 0)).validate())
	assert.NoError(t, build(WithAddr("h", 0), WithPool(8, 4, time.Minute)).validate())

	_, err := NewClient()
	assert.ErrorContains(t, err, "host is required")
}
