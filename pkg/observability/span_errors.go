package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Error classification values for the error.type span attribute.
const (
	ErrTypeValidation            = "validation"
	ErrTypeDependencyUnavailable = "dependency_unavailable"
	ErrTypeMalformedData         = "malformed_data"
	ErrTypeCanceled              = "canceled"
	ErrTypeInternal              = "internal"
)

// Error origin values for the error.source span attribute.
const (
	ErrSourceClient     = "client"
	ErrSourceDependency = "dependency"
	ErrSourceInternal   = "internal"
)

const (
	attrErrorType   = "error.type"
	attrErrorSource = "error.source"
)

// RecordSpanError marks span as failed with err and attaches the error
// classification. An empty source is omitted.
func RecordSpanError(span trace.Span, err error, errType, source string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs := []attribute.KeyValue{attribute.String(attrErrorType, errType)}
	if source != "" {
		attrs = append(attrs, attribute.String(attrErrorSource, source))
	}

	span.SetAttributes(attrs...)
}
