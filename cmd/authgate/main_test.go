package main

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/authgate/pkg/config"
	"github.com/platinummonkey/authgate/pkg/observability"
)

// syncBuffer lets the logrus pipe goroutine and the test share a buffer
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestNewHTTPServer(t *testing.T) {
	out := &syncBuffer{}
	logger := observability.NewLogger(observability.InfoLevel, out)

	cfg := config.Default().Server
	cfg.Host = "127.0.0.1"
	srv := newHTTPServer(cfg, "9191", http.NotFoundHandler(), logger)

	assert.Equal(t, "127.0.0.1:9191", srv.Addr)
	assert.Equal(t, cfg.ReadTimeout, srv.ReadTimeout)
	assert.Equal(t, cfg.WriteTimeout, srv.WriteTimeout)
	assert.Equal(t, cfg.IdleTimeout, srv.IdleTimeout)
	require.NotNil(t, srv.ErrorLog)

	srv.ErrorLog.Println("http: TLS handshake error from 10.0.0.1:5555: EOF")

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "TLS handshake error")
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, out.String(), `"level":"error"`)
}
