// Package api exposes the review engine over HTTP. Handlers translate JSON
// requests into review service calls and map service errors to status codes
// with sanitized messages.
package api
