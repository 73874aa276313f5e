// Package server serves the rendered calendar page and its iCalendar feed.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-lunar/internal/config"
)

// cacheItem stores one rendered document and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// resource is one cached document served at a fixed route.
type resource struct {
	route       string
	contentType string

	// cache uses atomic.Pointer for lock-free reads: documents are read on
	// every request and replaced only when a year is rendered.
	cache atomic.Pointer[cacheItem]
}

// CalendarServer serves the last rendered HTML page at "/" and the
// iCalendar feed at "/moons.ics".
type CalendarServer struct {
	Port string

	page resource
	feed resource
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string) *CalendarServer {
	return &CalendarServer{
		Port: port,
		page: resource{route: config.RouteRoot, contentType: config.MimeTextHTML},
		feed: resource{route: config.RouteICS, contentType: config.MimeTextCalendar},
	}
}

// Handler returns the request multiplexer of both routes.
func (s *CalendarServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handlePage)
	mux.HandleFunc(config.RouteICS, s.handleFeed)
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// UpdatePage atomically replaces the served HTML document.
func (s *CalendarServer) UpdatePage(data []byte) {
	s.page.update(data)
}

// UpdateFeed atomically replaces the served iCalendar feed.
func (s *CalendarServer) UpdateFeed(data []byte) {
	s.feed.update(data)
}

func (res *resource) update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	// Readers see either the old or the new complete item, never a mix.
	res.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyRoute, res.route,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// handlePage serves the HTML page. The root pattern matches every path, so
// anything other than "/" itself is reported missing.
func (s *CalendarServer) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != config.RouteRoot {
		http.Error(w, config.HTTPMsgNotFound, http.StatusNotFound)
		return
	}
	s.page.serve(w, r)
}

func (s *CalendarServer) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.feed.serve(w, r)
}

// serve writes the cached document with HTTP caching support.
func (res *resource) serve(w http.ResponseWriter, r *http.Request) {
	// 1. Method Validation
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// 2. Readiness Check
	item := res.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	// 3. Response Headers
	w.Header().Set(config.HeaderContentType, res.contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	// 4. Conditional Requests
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	// 5. Body
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyRoute, res.route,
				config.LogKeyError, err,
			)
		}
	}
}
