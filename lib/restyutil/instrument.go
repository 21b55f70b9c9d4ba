package restyutil

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentOutput receives a dump of every exchange while debug logging is
// enabled.
type InstrumentOutput interface {
	Write(id string, contents string)
}

type instrumenter struct {
	output InstrumentOutput
	tracer trace.Tracer
	nextID *atomic.Uint64
}

type messageIDKey struct{}

func messageID(ctx context.Context) string {
	id, _ := ctx.Value(messageIDKey{}).(string)
	return id
}

// InstrumentClient traces every request of `client` and logs it at debug
// level. A nil `tracer` falls back to the global "resty" tracer and a nil
// `output` disables message dumps.
func InstrumentClient(client *resty.Client, tracer trace.Tracer, output InstrumentOutput) {
	if tracer == nil {
		tracer = otel.Tracer("resty")
	}
	i := instrumenter{output: output, tracer: tracer, nextID: &atomic.Uint64{}}
	client.OnBeforeRequest(i.before)
	client.OnAfterResponse(i.after)
	client.OnError(i.failed)
}

func (i instrumenter) before(_ *resty.Client, req *resty.Request) error {
	ctx, _ := i.tracer.Start(req.Context(), "http "+req.Method)
	id := strconv.FormatUint(i.nextID.Add(1), 10)
	ctx = context.WithValue(ctx, messageIDKey{}, id)
	req.SetContext(ctx)

	slog.DebugContext(ctx, "http request", "message_id", id, "method", req.Method, "url", req.URL)
	return nil
}

func (i instrumenter) after(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	// RawRequest only exists once the request was sent.
	if raw := res.Request.RawRequest; raw != nil {
		span.SetAttributes(httpconv.ClientRequest(raw)...)
	}
	if raw := res.RawResponse; raw != nil {
		span.SetAttributes(httpconv.ClientResponse(raw)...)
	}
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}

	id := messageID(ctx)
	slog.DebugContext(
		ctx, "http response",
		"message_id", id,
		"url", res.Request.URL,
		"status", res.StatusCode(),
		"elapsed", res.Time(),
	)
	if i.output != nil && slog.Default().Enabled(ctx, slog.LevelDebug) {
		i.output.Write(id, formatHttpMessage(res))
	}
	return nil
}

func (i instrumenter) failed(req *resty.Request, err error) {
	ctx := req.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	slog.DebugContext(ctx, "http request failed", "message_id", messageID(ctx), "url", req.URL, "err", err)
}
