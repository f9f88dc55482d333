package middleware

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/garrettladley/fixit/internal/xhttp"
)

const (
	defaultGzipMinSize = 1024
	gzipEncoding       = "gzip"
	wsPath             = "/ws"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

type gzipConfig struct {
	minSize  int
	excluded []string
}

type GzipOption func(*gzipConfig)

// WithGzipMinSize sets how many bytes are buffered before deciding to compress.
func WithGzipMinSize(n int) GzipOption {
	return func(c *gzipConfig) { c.minSize = max(n, 1) }
}

// WithGzipExcluded adds path prefixes that are never compressed.
func WithGzipExcluded(prefixes ...string) GzipOption {
	return func(c *gzipConfig) { c.excluded = append(c.excluded, prefixes...) }
}

// Gzip compresses responses of at least 1KB. Websocket endpoints and any
// upgrade request pass through so the connection can be hijacked.
func Gzip(next http.Handler) http.Handler {
	return GzipWith()(next)
}

func GzipWith(opts ...GzipOption) Middleware {
	cfg := gzipConfig{minSize: defaultGzipMinSize, excluded: []string{wsPath}}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptsGzip(r) || isUpgrade(r) || cfg.isExcluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(xhttp.Vary, xhttp.AcceptEncoding)

			gw := &gzipResponseWriter{
				ResponseWriter: w,
				status:         http.StatusOK,
				minSize:        cfg.minSize,
			}
			defer func() { _ = gw.Close() }()

			next.ServeHTTP(gw, r)
		})
	}
}

func (c gzipConfig) isExcluded(path string) bool {
	for _, prefix := range c.excluded {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get(xhttp.AcceptEncoding), gzipEncoding)
}

func isUpgrade(r *http.Request) bool {
	for _, v := range r.Header.Values("Connection") {
		for token := range strings.SplitSeq(v, ",") {
			if strings.EqualFold(strings.TrimSpace(token), "upgrade") {
				return true
			}
		}
	}
	return false
}

// gzipResponseWriter buffers until minSize bytes decide the encoding.
type gzipResponseWriter struct {
	http.ResponseWriter
	status  int
	minSize int

	buf     bytes.Buffer
	gz      *gzip.Writer
	decided bool
}

var (
	_ http.ResponseWriter = (*gzipResponseWriter)(nil)
	_ http.Flusher        = (*gzipResponseWriter)(nil)
	_ io.Closer           = (*gzipResponseWriter)(nil)
)

func (g *gzipResponseWriter) WriteHeader(code int) {
	if !g.decided {
		g.status = code
	}
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	if g.decided {
		if g.gz != nil {
			return g.gz.Write(b)
		}
		return g.ResponseWriter.Write(b)
	}

	g.buf.Write(b)
	if g.buf.Len() < g.minSize {
		return len(b), nil
	}

	// an encoding set by the handler wins
	if err := g.decide(g.ResponseWriter.Header().Get(xhttp.ContentEncoding) == ""); err != nil {
		return 0, err
	}
	return len(b), nil
}

// decide commits the status line and drains the buffer, compressed or not.
func (g *gzipResponseWriter) decide(compress bool) error {
	g.decided = true
	h := g.ResponseWriter.Header()
	if compress {
		h.Set(xhttp.ContentEncoding, gzipEncoding)
		h.Del(xhttp.ContentLength)
	}
	g.ResponseWriter.WriteHeader(g.status)

	var dst io.Writer = g.ResponseWriter
	if compress {
		g.gz = gzipWriterPool.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
		dst = g.gz
	}
	if _, err := dst.Write(g.buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write buffered response: %w", err)
	}
	g.buf.Reset()
	return nil
}

func (g *gzipResponseWriter) Close() error {
	if !g.decided {
		return g.decide(false)
	}
	if g.gz == nil {
		return nil
	}
	err := g.gz.Close()
	gzipWriterPool.Put(g.gz)
	g.gz = nil
	if err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return nil
}

func (g *gzipResponseWriter) Flush() {
	if g.gz != nil {
		_ = g.gz.Flush()
	}
	if f, ok := g.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (g *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}
