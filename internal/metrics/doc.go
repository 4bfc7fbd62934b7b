// Package metrics provides observability hooks for report analysis and export.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	svc := export.NewService(writers...) // NoopRecorder
//	svc.Recorder = metrics.NewPrometheusRecorder(reg)
//
// The CLI is a short-lived process, so metrics are not served over HTTP.
// When metrics.textfile is configured the registry is written once at exit in
// the node_exporter textfile format via WriteTextfile.
package metrics
