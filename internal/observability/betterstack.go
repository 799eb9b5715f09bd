package observability

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dangue13/rlvs-discord-bot/internal/config"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logQueueSize       = 1024
	defaultShipTimeout = 3 * time.Second
	defaultDrainGrace  = 5 * time.Second
)

// InitBetterStackLogger builds the process logger. Records always go to
// stdout; when Better Stack is enabled, records at or above the configured
// level are also shipped to its ingest endpoint from a background queue.
// The returned drain function flushes that queue and must run on shutdown.
func InitBetterStackLogger(cfg config.Config, baseLogger *logging.Logger) (*logging.Logger, func(context.Context) error, error) {
	if baseLogger == nil {
		baseLogger = logging.NewJSON(cfg.LogLevel)
	}

	if !cfg.BetterStackEnabled {
		baseLogger.Info("betterstack disabled", "reason", "BETTERSTACK_ENABLED=false")
		return baseLogger, func(context.Context) error { return nil }, nil
	}

	endpoint := normalizeBetterStackEndpoint(cfg.BetterStackEndpoint)
	if endpoint == "" {
		return nil, nil, fmt.Errorf("betterstack endpoint cannot be empty")
	}

	encoder := zapcore.NewJSONEncoder(logging.EncoderConfig())

	stdoutCore := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), cfg.LogLevel)

	shipper := newBetterStackShipper(
		endpoint,
		strings.TrimSpace(cfg.BetterStackToken),
		cfg.BetterStackTimeout,
	)
	shipCore := zapcore.NewCore(encoder, zapcore.AddSync(shipper), cfg.BetterStackMinLevel)

	logger := logging.FromZap(zap.New(
		zapcore.NewTee(stdoutCore, shipCore),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	))
	logger.Info("betterstack enabled",
		"endpoint", endpoint,
		"min_level", cfg.BetterStackMinLevel.String(),
		"service_name", cfg.ServiceName,
		"environment", cfg.AppEnv,
	)

	drain := func(ctx context.Context) error {
		if ctx == nil {
			ctx = context.Background()
		}
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			withTimeout, cancel := context.WithTimeout(ctx, defaultDrainGrace)
			defer cancel()
			ctx = withTimeout
		}
		if err := shipper.Close(ctx); err != nil {
			return fmt.Errorf("drain betterstack queue: %w", err)
		}
		if err := logger.Sync(); err != nil && !isIgnorableLoggerSyncError(err) {
			return err
		}
		return nil
	}

	return logger, drain, nil
}

func normalizeBetterStackEndpoint(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	return "https://" + value
}

// betterStackShipper posts encoded log lines to Better Stack from a single
// worker goroutine. Writes never block the logger: when the queue is full
// the record is dropped and the drop is counted.
type betterStackShipper struct {
	endpoint  string
	token     string
	client    *http.Client
	queue     chan []byte
	queueMu   sync.RWMutex
	closeOnce sync.Once
	closed    atomic.Bool
	worker    sync.WaitGroup
	dropped   atomic.Uint64
}

func newBetterStackShipper(endpoint, token string, timeout time.Duration) *betterStackShipper {
	if timeout <= 0 {
		timeout = defaultShipTimeout
	}

	s := &betterStackShipper{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
		queue:    make(chan []byte, logQueueSize),
	}
	s.worker.Add(1)
	go s.run()

	return s
}

func (s *betterStackShipper) Write(p []byte) (int, error) {
	line := bytes.TrimSpace(p)
	if len(line) == 0 {
		return len(p), nil
	}

	s.queueMu.RLock()
	defer s.queueMu.RUnlock()
	if s.closed.Load() {
		return len(p), nil
	}

	// zap reuses its buffer after Write returns.
	queued := make([]byte, len(line))
	copy(queued, line)

	select {
	case s.queue <- queued:
	default:
		dropped := s.dropped.Add(1)
		if dropped == 1 || dropped%100 == 0 {
			fmt.Fprintf(os.Stderr, "betterstack queue full; dropped logs=%d\n", dropped)
		}
	}

	return len(p), nil
}

func (s *betterStackShipper) run() {
	defer s.worker.Done()

	for line := range s.queue {
		s.ship(line)
	}
}

func (s *betterStackShipper) ship(line []byte) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.endpoint, bytes.NewReader(line))
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack create request failed: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "betterstack send log failed: %v\n", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		fmt.Fprintf(os.Stderr, "betterstack send log got non-2xx status=%d\n", resp.StatusCode)
	}
}

// Close stops accepting new records and waits for queued records to ship,
// until ctx expires.
func (s *betterStackShipper) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.closeOnce.Do(func() {
		s.queueMu.Lock()
		s.closed.Store(true)
		close(s.queue)
		s.queueMu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		s.worker.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *betterStackShipper) Sync() error {
	return nil
}

func isIgnorableLoggerSyncError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "bad file descriptor") || strings.Contains(msg, "invalid argument")
}
