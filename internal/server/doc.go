// Package server runs the local HTTP status server of the remote
// configuration client, including graceful shutdown when its context ends.
package server
