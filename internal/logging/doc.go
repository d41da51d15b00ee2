// Package logging is the zap setup shared by the geoextract commands.
//
// Logger wraps a *zap.Logger and takes a context on every call. Fields
// stored in the context are added to each entry: the OpenTelemetry trace and
// span IDs, the request ID set by the HTTP and MCP surfaces, and the
// document ID.
//
//	ctx = logging.WithRequestID(ctx, requestID)
//	ctx = logging.WithDocumentID(ctx, "invoice-17.txt")
//	logger.Info(ctx, "document processed", zap.Int("locations", n))
//
// Entries below Error are sampled, long string fields are truncated so that
// document text cannot flood the output, and a Trace level sits below Debug.
// Output goes to stdout or stderr, and optionally to an OpenTelemetry log
// provider through the otelzap bridge.
//
// Library packages take a plain *zap.Logger; hand them Logger.Underlying.
package logging
