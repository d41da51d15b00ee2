// Package telemetry exports geoextract traces and metrics over OTLP.
//
// Export is off by default. When enabled, New installs the providers as the
// otel globals, so the service layer, the HTTP middleware and the MCP tool
// metrics pick them up without further wiring:
//
//	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
// A collector that cannot be reached does not stop the process. Status and
// LastError report what failed to start.
//
// The Prometheus counters of the pipeline are independent of this package
// and are always served on /metrics.
package telemetry
