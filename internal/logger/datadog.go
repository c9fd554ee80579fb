package logger

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

const (
	dataDogSource         = "lumenboard"
	defaultDataDogTimeout = 5 * time.Second
	defaultDataDogBuffer  = 1024
)

// DataDogWriter ships log lines to the DataDog logs intake.
// Lines are queued and submitted from a single goroutine, a full queue drops the line.
type DataDogWriter struct {
	ctx      context.Context
	api      *datadogV2.LogsApi
	service  string
	hostname string
	timeout  time.Duration
	lines    chan []byte
	done     chan struct{}
	mu       sync.RWMutex
	closed   bool

	// submit is replaced in tests.
	submit func(ctx context.Context, items []datadogV2.HTTPLogItem) error
}

// NewDataDogWriter creates the writer and starts its sender goroutine.
func NewDataDogWriter(cfg DataDog, service string) *DataDogWriter {
	if cfg.ServiceName != "" {
		service = cfg.ServiceName
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultDataDogTimeout
	}

	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultDataDogBuffer
	}

	hostname, _ := os.Hostname()

	ctx := context.WithValue(context.Background(), datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: cfg.APIKey},
	})

	if cfg.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{
			"site": cfg.Site,
		})
	}

	w := &DataDogWriter{
		ctx:      ctx,
		api:      datadogV2.NewLogsApi(datadog.NewAPIClient(datadog.NewConfiguration())),
		service:  service,
		hostname: hostname,
		timeout:  cfg.Timeout,
		lines:    make(chan []byte, cfg.BufferSize),
		done:     make(chan struct{}),
	}
	w.submit = w.submitLogs

	go w.run()

	return w
}

// Write queues one log line. It never blocks the caller.
func (w *DataDogWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return len(p), nil
	}

	select {
	case w.lines <- line:
	default:
	}

	return len(p), nil
}

// Close stops accepting lines and waits until the queue is drained.
func (w *DataDogWriter) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.lines)
	}
	w.mu.Unlock()

	<-w.done

	return nil
}

func (w *DataDogWriter) run() {
	defer close(w.done)

	for line := range w.lines {
		item := datadogV2.HTTPLogItem{
			Ddsource: datadog.PtrString(dataDogSource),
			Hostname: datadog.PtrString(w.hostname),
			Message:  string(line),
			Service:  datadog.PtrString(w.service),
		}

		ctx, cancel := context.WithTimeout(w.ctx, w.timeout)
		if err := w.submit(ctx, []datadogV2.HTTPLogItem{item}); err != nil {
			ErrorHandler(err)
		}
		cancel()
	}
}

func (w *DataDogWriter) submitLogs(ctx context.Context, items []datadogV2.HTTPLogItem) error {
	_, resp, err := w.api.SubmitLog(ctx, items)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	return err //nolint:wrapcheck
}
