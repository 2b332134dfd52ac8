// Package instrument reports reactive graph activity to Prometheus and
// OpenTelemetry.
//
// Both reporters implement reactive.Observer. Install one, or several with
// Fanout:
//
//	m := instrument.NewMetrics(instrument.WithRegistry(reg))
//	tr := instrument.NewTracing(instrument.WithTracerName("shop"))
//	reactive.SetObserver(instrument.Fanout(m, tr))
//
// The metrics reporter also carries the live session gauges used by the
// serve command.
package instrument
