package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestNoopDefaults(t *testing.T) {
	c := NewClient(newFakeTransport(), nil, WithLogger(nil), WithMetricsRecorder(nil), WithTracer(nil), WithClock(nil))
	require.NotNil(t, c.Store())
	assert.IsType(t, noopLogger{}, c.logger)
	assert.IsType(t, noopMetrics{}, c.metrics)
	assert.IsType(t, noopTracer{}, c.tracer)
	require.NotNil(t, c.now)
}

func TestExpvarRecorderAggregatesOperations(t *testing.T) {
	ft := newFakeTransport().
		reply("hubByPropertyId", `{"data":{"hubByPropertyId":{"hub":{"id":"h1"}}}}`).
		fail("propertyById", errors.New("offline"))
	rec := NewExpvarMetricsRecorder("")
	c, _ := newTestClient(t, ft, WithMetricsRecorder(rec), WithClock(steppingClock(20*time.Millisecond)))
	ctx := context.Background()

	_, _ = c.HubByPropertyID(ctx, "p1")
	_, _ = c.HubByPropertyID(ctx, "p2")
	_, _ = c.PropertyByID(ctx, "p1")

	snap := rec.Snapshot()
	hub := snap.Operations["hubByPropertyId"]
	assert.EqualValues(t, 2, hub.Calls)
	assert.Zero(t, hub.Failures)
	assert.InDelta(t, 40, hub.TotalMS, 0.001)
	assert.InDelta(t, 20, hub.MaxMS, 0.001)
	assert.EqualValues(t, 1, snap.Operations["propertyById"].Failures)

	published := expvar.Get(rec.Name())
	require.NotNil(t, published)
	var decoded ExpvarMetricsSnapshot
	require.NoError(t, json.Unmarshal([]byte(published.String()), &decoded))
	assert.EqualValues(t, 2, decoded.Operations["hubByPropertyId"].Calls)

	rec.Observe(ctx, "", true, time.Second)
	assert.Len(t, rec.Snapshot().Operations, 2)
}

func TestJSONTracerWritesOneLinePerOperation(t *testing.T) {
	ft := newFakeTransport().
		reply("hubByPropertyId", `{"data":{"hubByPropertyId":{"hub":{"id":"h1"}}}}`).
		reply("propertyById", `{"data":{}}`)
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	c, _ := newTestClient(t, ft, WithTracer(tracer))

	_, _ = c.HubByPropertyID(context.Background(), "p1")
	_, _ = c.PropertyByID(context.Background(), "p1")

	entries := tracer.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "hubByPropertyId", entries[0].Operation)
	assert.Equal(t, "success", entries[0].Status)
	assert.Equal(t, "error", entries[1].Status)
	assert.Contains(t, entries[1].Error, "missing operation container")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var first JSONTraceEntry
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, entries[0].Operation, first.Operation)

	_, span := tracer.Start(context.Background(), "manual")
	span.End(nil)
	span.End(errors.New("ignored"))
	assert.Len(t, tracer.Entries(), 3)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	require.NoError(t, err)

	ft := newFakeTransport().
		reply("hubByPropertyId", `{"data":{"hubByPropertyId":{"hub":{"id":"h1"}}}}`).
		fail("propertyById", errors.New("offline"))
	c, _ := newTestClient(t, ft, WithMetricsRecorder(rec))
	_, _ = c.HubByPropertyID(context.Background(), "p1")
	_, _ = c.PropertyByID(context.Background(), "p1")
	_, _ = c.PropertyByID(context.Background(), "p2")

	assert.InDelta(t, 1, testutil.ToFloat64(rec.operations.WithLabelValues("hubByPropertyId", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(rec.operations.WithLabelValues("propertyById", "error")), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(rec.duration))

	_, err = NewPrometheusMetricsRecorder(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestOTelTracerRecordsStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ft := newFakeTransport().
		reply("hubByPropertyId", `{"data":{"hubByPropertyId":{"hub":{"id":"h1"}}}}`).
		fail("propertyById", errors.New("offline"))
	c, _ := newTestClient(t, ft, WithTracer(NewOTelTracer(provider.Tracer("soapcore-test"))))
	_, _ = c.HubByPropertyID(context.Background(), "p1")
	_, _ = c.PropertyByID(context.Background(), "p1")

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "soapcore.hubByPropertyId", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "offline", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}
