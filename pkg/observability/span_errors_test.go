package observability_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/repogrowth/pkg/observability"
)

var (
	errToolFailed = errors.New("cloc exited with status 2")
	errBadMonth   = errors.New("bad month")
)

func assertAttribute(t *testing.T, attrs []attribute.KeyValue, key, want string) {
	t.Helper()

	for _, attr := range attrs {
		if string(attr.Key) == key {
			assert.Equal(t, want, attr.Value.AsString())

			return
		}
	}

	t.Errorf("attribute %q not found", key)
}

func recordOne(t *testing.T, err error, errType, source string) sdktrace.ReadOnlySpan {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	_, span := tp.Tracer("test").Start(context.Background(), "test.op")

	observability.RecordSpanError(span, err, errType, source)
	span.End()

	spans := exporter.GetSpans().Snapshots()
	require.Len(t, spans, 1)

	return spans[0]
}

func TestRecordSpanError_SetsAttributes(t *testing.T) {
	t.Parallel()

	recorded := recordOne(t, errToolFailed, observability.ErrTypeDependencyUnavailable, observability.ErrSourceDependency)

	assert.Equal(t, codes.Error, recorded.Status().Code)
	assert.Equal(t, "cloc exited with status 2", recorded.Status().Description)

	assertAttribute(t, recorded.Attributes(), "error.type", observability.ErrTypeDependencyUnavailable)
	assertAttribute(t, recorded.Attributes(), "error.source", observability.ErrSourceDependency)
}

func TestRecordSpanError_EmptySource(t *testing.T) {
	t.Parallel()

	recorded := recordOne(t, errBadMonth, observability.ErrTypeValidation, "")

	assertAttribute(t, recorded.Attributes(), "error.type", observability.ErrTypeValidation)

	for _, attr := range recorded.Attributes() {
		assert.NotEqual(t, "error.source", string(attr.Key), "error.source should not be set when empty")
	}
}
