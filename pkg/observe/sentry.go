package observe

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

const (
	_sentryMaxErrorDepth        int           = 9
	_sentryFlushTimeout         time.Duration = 5 * time.Second
	_sentryServerRequestTimeout time.Duration = 5 * time.Second

	_logTimeLayout = "2006-01-02T15-04-05.000"
)

// SentryHook is an io.Writer fed with JSON log lines. Error and fatal lines
// become Sentry events, everything else is dropped.
type SentryHook struct {
	appEnv  string
	appName string
	enabled bool
	capture func(*sentry.Event)
}

// logLine mirrors the fields written by logger.NewZapLogger.
type logLine struct {
	Level      string          `json:"level"`
	AppName    string          `json:"app_name"`
	AppEnv     string          `json:"app_env"`
	CallerFile string          `json:"caller_file"`
	CallerLine int             `json:"caller_line"`
	CallerFunc string          `json:"caller_func"`
	Stack      string          `json:"stack"`
	Message    string          `json:"msg"`
	Error      string          `json:"error"`
	Timestamp  string          `json:"timestamp"`
	Provider   string          `json:"provider"`
	StatusCode json.RawMessage `json:"status_code"`
}

func NewSentryHook(appEnv, appName string, maxErrorDepth int, isDebug bool, dsn string) *SentryHook {
	if maxErrorDepth == 0 {
		maxErrorDepth = _sentryMaxErrorDepth
	}

	hook := &SentryHook{
		appEnv:  appEnv,
		appName: appName,
		capture: func(e *sentry.Event) { sentry.CaptureEvent(e) },
	}

	if dsn == "" {
		log.Println("sentry hook disabled: no DSN")
		return hook
	}

	transport := sentry.NewHTTPTransport()
	transport.Timeout = _sentryServerRequestTimeout

	if err := sentry.Init(sentry.ClientOptions{
		AttachStacktrace: true,
		Debug:            isDebug,
		Dsn:              dsn,
		Environment:      appEnv,
		MaxErrorDepth:    maxErrorDepth,
		ServerName:       appName,
		Transport:        transport,
	}); err != nil {
		log.Println(errors.Wrap(err, "sentry hook init").Error())
		return hook
	}

	hook.enabled = true
	return hook
}

// Enabled reports whether events are forwarded to Sentry.
func (h *SentryHook) Enabled() bool {
	return h.enabled
}

// Flush waits for buffered events to be delivered.
func (h *SentryHook) Flush() {
	if h.enabled {
		sentry.Flush(_sentryFlushTimeout)
	}
}

func (h *SentryHook) Write(p []byte) (int, error) {
	if !h.enabled {
		return len(p), nil
	}

	event, err := h.toEvent(p)
	if err != nil {
		log.Println(err.Error())
		return len(p), nil
	}
	if event != nil {
		h.capture(event)
	}

	return len(p), nil
}

// toEvent returns nil for lines below error level.
func (h *SentryHook) toEvent(p []byte) (*sentry.Event, error) {
	var line logLine
	if err := json.Unmarshal(p, &line); err != nil {
		return nil, errors.Wrap(err, "[SentryHook] decode log line")
	}

	level, err := zapcore.ParseLevel(line.Level)
	if err != nil {
		return nil, errors.Wrap(err, "[SentryHook] parse zap level")
	}
	if level < zapcore.ErrorLevel || line.Message == "" {
		return nil, nil
	}

	event := sentry.NewEvent()
	event.Environment = h.appEnv
	event.Level = mapLevel(level)
	event.Message = line.Message
	if ts, err := time.ParseInLocation(_logTimeLayout, line.Timestamp, time.UTC); err == nil {
		event.Timestamp = ts
	}

	event.Extra["AppName"] = h.appName
	event.Extra["Error"] = line.Error
	event.Extra["CallerFile"] = line.CallerFile
	event.Extra["CallerLine"] = line.CallerLine
	event.Extra["CallerFunc"] = line.CallerFunc
	event.Extra["Stack"] = line.Stack

	if line.Provider != "" {
		event.Tags["provider"] = line.Provider
	}
	if code, err := strconv.Atoi(string(line.StatusCode)); err == nil {
		event.Tags["status_code"] = strconv.Itoa(code)
	}

	event.Exception = append(event.Exception, sentry.Exception{
		Type:  line.Message,
		Value: line.Error,
	})

	return event, nil
}

func mapLevel(zl zapcore.Level) sentry.Level {
	switch zl {
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return sentry.LevelFatal
	default:
		return sentry.LevelDebug
	}
}
