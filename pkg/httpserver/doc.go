// Package httpserver runs the API's HTTP listener with graceful shutdown
// and exposes the health probe handler.
package httpserver
