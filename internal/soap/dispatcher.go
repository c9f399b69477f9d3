package soap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gangland/pkg/requestcontext"
)

// Call outcomes reported to the Observer.
const (
	OutcomeSuccess   = "success"
	OutcomeFault     = "fault"
	OutcomeMalformed = "malformed"
)

const defaultMaxBodyBytes = 2 << 20

// Observer receives one observation per dispatched request. method is "" when
// the envelope could not be parsed and "unknown" for unregistered methods.
type Observer interface {
	ObserveSOAPCall(method, outcome string, start time.Time)
}

// Dispatcher runs Parsing -> Dispatching -> {Success, Faulted} for each request.
type Dispatcher struct {
	registry     *Registry
	builder      *Builder
	logger       *slog.Logger
	observer     Observer
	tracer       trace.Tracer
	pretty       bool
	maxBodyBytes int64
}

type Option func(*Dispatcher)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// WithPretty indents reply envelopes.
func WithPretty(pretty bool) Option {
	return func(d *Dispatcher) {
		d.pretty = pretty
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxBodyBytes = n
		}
	}
}

// NewDispatcher constructs a Dispatcher over an immutable registry.
func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:     registry,
		logger:       slog.Default(),
		tracer:       otel.Tracer("gangland/internal/soap"),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.builder = NewBuilder(d.pretty, d.logger)
	return d
}

// ServeHTTP answers one SOAP POST. The path plays no part in method selection.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := requestcontext.ClientIP(r.Context())
	if ip == "" {
		ip = remoteHost(r.RemoteAddr)
	}
	reply := d.Dispatch(r.Context(), http.MaxBytesReader(w, r.Body, d.maxBodyBytes), ip)

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(reply.Status)
	_, _ = w.Write(reply.Body)
}

// Dispatch parses body, invokes the named method and builds the reply.
func (d *Dispatcher) Dispatch(ctx context.Context, body io.Reader, ip string) Reply {
	start := time.Now()

	call, err := ParseEnvelope(body)
	if err != nil {
		d.observe("", OutcomeMalformed, start)
		if errors.Is(err, ErrMalformedXML) {
			d.logger.ErrorContext(ctx, "soap: invalid xml request",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return d.builder.Fault(http.StatusBadRequest, &Fault{Code: CodeClient, String: "Invalid XML format"})
		}
		d.logger.ErrorContext(ctx, "soap: could not parse method name or arguments",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return d.builder.Fault(http.StatusInternalServerError, &Fault{Code: CodeServer, String: "Error parsing SOAP request structure"})
	}

	ctx, span := d.tracer.Start(ctx, "soap.dispatch", trace.WithAttributes(attribute.String("soap.method", call.Method)))
	defer span.End()

	call.Args.Set("ip", ip)

	method, ok := d.registry.Lookup(call.Method)
	if !ok {
		d.logger.WarnContext(ctx, "soap: unhandled method called",
			"method", call.Method,
			"request_id", requestcontext.RequestID(ctx),
		)
		span.SetStatus(codes.Error, "method not found")
		d.observe("unknown", OutcomeFault, start)
		return d.builder.Fault(http.StatusInternalServerError, &Fault{
			Code:   CodeMethodNotFound,
			String: fmt.Sprintf("Method %s not found.", call.Method),
			Detail: noDetail,
		})
	}

	d.logger.DebugContext(ctx, "soap call",
		"method", call.Method,
		"args", call.Args.Flatten(),
		"request_id", requestcontext.RequestID(ctx),
	)

	result, err := invoke(ctx, method, call.Args)
	if err != nil {
		d.logger.ErrorContext(ctx, "soap: exception in method",
			"method", call.Method,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		d.observe(call.Method, OutcomeFault, start)

		var declared *Fault
		if errors.As(err, &declared) {
			return d.builder.Fault(http.StatusInternalServerError, declared)
		}
		return d.builder.Fault(http.StatusInternalServerError, &Fault{
			Code:   CodeServer,
			String: "Error processing " + call.Method,
			Detail: err.Error(),
		})
	}

	if len(result) == 0 && method.EmptyResultIsFault {
		d.logger.WarnContext(ctx, "soap: method returned empty, treating as fault",
			"method", call.Method,
			"request_id", requestcontext.RequestID(ctx),
		)
		span.SetStatus(codes.Error, "empty result")
		d.observe(call.Method, OutcomeFault, start)
		return d.builder.Fault(http.StatusInternalServerError, &Fault{
			Code:   CodeServer,
			String: "Error processing " + call.Method,
			Detail: emptyResultDetail,
		})
	}

	reply := d.builder.Response(call.Method, result)
	outcome := OutcomeSuccess
	if reply.Status != http.StatusOK {
		outcome = OutcomeFault
	}
	d.observe(call.Method, outcome, start)
	return reply
}

// invoke runs the handler, turning a panic into an error.
func invoke(ctx context.Context, m Method, args Args) (result Map, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", m.Name, rec)
		}
	}()
	return m.Handler(ctx, args)
}

func (d *Dispatcher) observe(method, outcome string, start time.Time) {
	if d.observer != nil {
		d.observer.ObserveSOAPCall(method, outcome, start)
	}
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
