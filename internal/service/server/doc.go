// Package server boots the storefront backend: it loads settings, wires the
// catalog repository, service and HTTP handlers together, and runs the HTTP
// server with graceful shutdown.
package server
