// Package http exposes the service's REST surface: club administration,
// attendance statistics, stamp card images, and a liveness probe.
package http
