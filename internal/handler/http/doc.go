// Package http implements the local status surface of the remote
// configuration client.
//
// It exposes the sync manager snapshot, the build version and the Prometheus
// metrics over a chi router. Request tracing and access logging are applied
// as middleware before requests reach the handlers.
package http
