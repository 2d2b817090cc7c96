package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), &Config{ServiceName: "test"})
	require.NoError(t, err)
	assert.NotNil(t, tel)
	assert.NoError(t, Shutdown(context.Background()))
}

func TestTracingMiddleware_RecordsServerSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := installRecorder(t)

	r := gin.New()
	r.Use(TracingMiddleware("test"))
	r.GET("/events/:id", func(c *gin.Context) {
		assert.NotEmpty(t, GetTraceID(c.Request.Context()))
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events/3", nil))

	assert.NotEmpty(t, w.Header().Get(TraceIDHeader))
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /events/:id", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestRecordError(t *testing.T) {
	rec := installRecorder(t)

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	RecordError(span, nil)
	RecordError(span, errors.New("boom"))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
}
