package dispatch

import (
	"time"

	"github.com/InsightCenterNoodles/noodles-core/nlog"
)

// Middleware intercepts an invocation before and after dispatch, mirroring
// commbus.Middleware's Before/After shape applied to method invocations
// instead of bus messages.
type Middleware interface {
	Before(inv Invocation) (Invocation, error)
	After(inv Invocation, reply Reply) Reply
}

// LoggingMiddleware logs every invocation and its outcome.
type LoggingMiddleware struct {
	Logger nlog.Logger
}

func NewLoggingMiddleware(logger nlog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{Logger: nlog.OrStd(logger)}
}

func (m *LoggingMiddleware) Before(inv Invocation) (Invocation, error) {
	m.Logger.Debug("dispatch invoke", "method", inv.MethodID.String(), "invoke_id", inv.InvokeID)
	return inv, nil
}

func (m *LoggingMiddleware) After(inv Invocation, reply Reply) Reply {
	if reply.Exception != nil {
		m.Logger.Warn("dispatch exception", "invoke_id", reply.InvokeID, "code", reply.Exception.Code)
	} else {
		m.Logger.Debug("dispatch ok", "invoke_id", reply.InvokeID)
	}
	return reply
}

// MetricsMiddleware records invocation latency; Observe is supplied by the
// observability package so dispatch has no direct Prometheus dependency.
type MetricsMiddleware struct {
	Observe func(methodName string, took time.Duration, failed bool)
	start   map[string]time.Time
}

func NewMetricsMiddleware(observe func(string, time.Duration, bool)) *MetricsMiddleware {
	return &MetricsMiddleware{Observe: observe, start: map[string]time.Time{}}
}

func (m *MetricsMiddleware) Before(inv Invocation) (Invocation, error) {
	m.start[inv.InvokeID] = time.Now()
	return inv, nil
}

func (m *MetricsMiddleware) After(inv Invocation, reply Reply) Reply {
	started, ok := m.start[inv.InvokeID]
	if !ok {
		return reply
	}
	delete(m.start, inv.InvokeID)
	if m.Observe != nil {
		m.Observe(inv.MethodID.String(), time.Since(started), reply.Exception != nil)
	}
	return reply
}

var (
	_ Middleware = (*LoggingMiddleware)(nil)
	_ Middleware = (*MetricsMiddleware)(nil)
)
