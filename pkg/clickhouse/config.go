package clickhouse

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"time"
)

// ClientConfig is the connection and pool setup for one ClickHouse database.
type ClientConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	// UseHTTP switches from the native protocol to the HTTP interface.
	UseHTTP bool

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxExecTime  time.Duration

	AsyncInsert  bool
	WaitForAsync bool
}

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

func defaultConfig() ClientConfig {
	return ClientConfig{
		Port:            9000,
		Database:        "default",
		User:            "default",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
	}
}

// WithAddr sets host and port. A zero port keeps the native default.
func WithAddr(host string, port int) ClientOption {
	return func(c *ClientConfig) {
		c.Host = host
		if port > 0 {
			c.Port = port
		}
	}
}

func WithDatabase(database string) ClientOption {
	return func(c *ClientConfig) { c.Database = database }
}

func WithCredentials(user, password string) ClientOption {
	return func(c *ClientConfig) {
		c.User = user
		c.Password = password
	}
}

// WithPool sizes the database/sql pool.
func WithPool(maxOpen, maxIdle int, lifetime time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.MaxOpenConns = maxOpen
		c.MaxIdleConns = maxIdle
		if lifetime > 0 {
			c.ConnMaxLifetime = lifetime
		}
	}
}

func WithTimeouts(dial, read, write time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.DialTimeout = dial
		c.ReadTimeout = read
		c.WriteTimeout = write
	}
}

func WithHTTP(useHTTP bool) ClientOption {
	return func(c *ClientConfig) { c.UseHTTP = useHTTP }
}

// WithAsyncInsert lets the server buffer small inserts; wait makes the
// insert return only after the buffer is flushed.
func WithAsyncInsert(enabled, wait bool) ClientOption {
	return func(c *ClientConfig) {
		c.AsyncInsert = enabled
		c.WaitForAsync = wait
	}
}

// WithMaxExecutionTime caps server-side query time, in whole seconds.
func WithMaxExecutionTime(d time.Duration) ClientOption {
	return func(c *ClientConfig) { c.MaxExecTime = d }
}

func (c ClientConfig) validate() error {
	switch {
	case c.Host == "":
		return errors.New("clickhouse: host is required")
	case c.Database == "":
		return errors.New("clickhouse: database is required")
	case c.MaxOpenConns > 0 && c.MaxIdleConns > c.MaxOpenConns:
		return errors.New("clickhouse: max idle connections exceed max open")
	}
	return nil
}

// DSN renders the driver connection string. Credentials are escaped, so
// passwords may contain URL delimiters. write_timeout stays client-side;
// older servers reject it as a setting.
func (c ClientConfig) DSN() string {
	q := url.Values{}
	if c.DialTimeout > 0 {
		q.Set("dial_timeout", c.DialTimeout.String())
	}
	if c.ReadTimeout > 0 {
		q.Set("read_timeout", c.ReadTimeout.String())
	}
	if secs := int(c.MaxExecTime.Seconds()); secs > 0 {
		q.Set("max_execution_time", strconv.Itoa(secs))
	}
	if c.AsyncInsert {
		q.Set("async_insert", "1")
		if c.WaitForAsync {
			q.Set("wait_for_async_insert", "1")
		}
	}

	scheme := "clickhouse"
	if c.UseHTTP {
		scheme = "http"
	}
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String()
}
