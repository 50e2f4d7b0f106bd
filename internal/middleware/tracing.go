package middleware

import (
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TraceIDHeader echoes the request's trace id back to the caller.
const TraceIDHeader = "X-Trace-ID"

// TracingMiddleware continues any incoming W3C trace and wraps the request in
// a server span. The trace id is stored in locals under "traceID" for the
// request logger.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		parent := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		ctx, span := observability.Tracer.Start(parent, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.ip", c.IP()),
			),
		)
		defer span.End()

		tid := span.SpanContext().TraceID().String()
		c.Locals("traceID", tid)
		c.Set(TraceIDHeader, tid)
		c.SetUserContext(ctx)

		err := c.Next()
		finishSpan(c, span, err)
		return err
	}
}

func finishSpan(c *fiber.Ctx, span trace.Span, err error) {
	status := c.Response().StatusCode()
	attrs := []attribute.KeyValue{attribute.Int("http.status_code", status)}
	if rid, ok := c.Locals("requestid").(string); ok {
		attrs = append(attrs, attribute.String("request.id", rid))
	}
	if uid, ok := c.Locals("userID").(uint); ok {
		attrs = append(attrs, attribute.Int64("user.id", int64(uid)))
	}
	span.SetAttributes(attrs...)

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= fiber.StatusInternalServerError:
		span.SetStatus(codes.Error, "server error")
	}
}
