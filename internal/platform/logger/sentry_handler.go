package logger

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5/middleware"
)

// WrapWithSentry returns a logger that also reports error records to Sentry.
func WrapWithSentry(base *slog.Logger) *slog.Logger {
	if base == nil {
		return base
	}
	return slog.New(&sentryHandler{next: base.Handler(), capture: captureToSentry})
}

type sentryEvent struct {
	message   string
	err       error
	requestID string
	extras    map[string]any
}

type sentryHandler struct {
	next    slog.Handler
	capture func(sentryEvent)
}

func (h *sentryHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sentryHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.next.Handle(ctx, record)
	if record.Level < slog.LevelError {
		return err
	}

	ev := sentryEvent{
		message:   record.Message,
		requestID: middleware.GetReqID(ctx),
		extras:    map[string]any{},
	}
	record.Attrs(func(attr slog.Attr) bool {
		if attr.Key != "" {
			ev.extras[attr.Key] = attrValue(attr.Value, &ev.err)
		}
		return true
	})
	if record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		if frame.PC != 0 {
			ev.extras["source.file"] = frame.File
			ev.extras["source.line"] = frame.Line
		}
	}

	h.capture(ev)
	return err
}

func (h *sentryHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sentryHandler{next: h.next.WithAttrs(attrs), capture: h.capture}
}

func (h *sentryHandler) WithGroup(name string) slog.Handler {
	return &sentryHandler{next: h.next.WithGroup(name), capture: h.capture}
}

func captureToSentry(ev sentryEvent) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetExtras(ev.extras)
		scope.SetExtra("message", ev.message)
		if ev.requestID != "" {
			scope.SetTag("request_id", ev.requestID)
		}
		if ev.err != nil {
			sentry.CaptureException(ev.err)
			return
		}
		sentry.CaptureMessage(ev.message)
	})
}

func attrValue(value slog.Value, capturedErr *error) any {
	switch value.Kind() {
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			if *capturedErr == nil {
				*capturedErr = err
			}
			return err.Error()
		}
		return value.Any()
	case slog.KindGroup:
		group := map[string]any{}
		for _, attr := range value.Group() {
			if attr.Key == "" {
				continue
			}
			group[attr.Key] = attrValue(attr.Value, capturedErr)
		}
		return group
	default:
		return value.Resolve().Any()
	}
}
