package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	// HTTPInstrumentationName names the tracer and meter of the HTTP server
	HTTPInstrumentationName = "github.com/stacklok/pipeline-tracker/http"

	unknownRoute = "unknown_route"
)

type httpInstruments struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	duration   metric.Float64Histogram
	requests   metric.Int64Counter
	inFlight   metric.Int64UpDownCounter
}

// HTTPMiddleware instruments the API server: one server span per request,
// named after the chi route pattern, plus request duration, count and
// in-flight metrics. Either provider may be nil.
func HTTPMiddleware(tp trace.TracerProvider, mp metric.MeterProvider) (func(http.Handler) http.Handler, error) {
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	inst := &httpInstruments{
		tracer:     tp.Tracer(HTTPInstrumentationName),
		propagator: otel.GetTextMapPropagator(),
	}

	if mp != nil {
		meter := mp.Meter(HTTPInstrumentationName)
		var err error
		if inst.duration, err = meter.Float64Histogram(
			"pipeline_tracker_http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
		); err != nil {
			return nil, err
		}
		if inst.requests, err = meter.Int64Counter(
			"pipeline_tracker_http_requests_total",
			metric.WithDescription("Total number of HTTP requests"),
			metric.WithUnit("{request}"),
		); err != nil {
			return nil, err
		}
		if inst.inFlight, err = meter.Int64UpDownCounter(
			"pipeline_tracker_http_active_requests",
			metric.WithDescription("Number of in-flight HTTP requests"),
			metric.WithUnit("{request}"),
		); err != nil {
			return nil, err
		}
	}

	return inst.wrap, nil
}

func (inst *httpInstruments) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := inst.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := inst.tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.URLPath(r.URL.Path),
				semconv.UserAgentOriginal(r.UserAgent()),
			),
		)
		defer span.End()

		if inst.inFlight != nil {
			inst.inFlight.Add(ctx, 1)
			defer inst.inFlight.Add(ctx, -1)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		// chi fills the pattern in while routing; raw paths would explode cardinality
		route := routePattern(r)
		status := ww.Status()

		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPResponseStatusCode(status),
		)
		if status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		} else {
			span.SetStatus(codes.Ok, "")
		}

		if inst.requests != nil {
			attrs := metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("route", route),
				attribute.String("status_code", strconv.Itoa(status)),
			)
			inst.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			inst.requests.Add(ctx, 1, attrs)
		}
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return unknownRoute
}
