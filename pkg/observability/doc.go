/*
Package observability turns the App lifecycle hooks into Prometheus metrics
and structured log lines.
*/
package observability
