// Package api exposes flows and task resolution over HTTP. Handlers translate
// JSON requests into flow.Manager operations and map flow and store errors to
// status codes without leaking internal details.
package api
