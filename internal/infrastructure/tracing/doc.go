/*
Package tracing provides lightweight request tracing.

# Overview

Each HTTP request gets a trace with one span per operation. Trace
context propagates via headers so an editor host can correlate its own
logs with the backend's.

# Usage

	// Create tracer
	tracer := tracing.New("harborfs", logger)

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	span.SetTag("key", "value")

# Trace Format

Traces use standard HTTP headers for propagation:
  - X-Trace-ID: Unique identifier for the entire request flow
  - X-Span-ID: Identifier for the current operation

Spans are collected through a 1000-entry buffer and processed
asynchronously; a full buffer drops spans instead of blocking the
request path.
*/
package tracing
