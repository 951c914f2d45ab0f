// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting SQL error strings.
package repository

import "errors"

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// ErrEventNotFound is returned when an event lookup by id or slug
// matches no row.
var ErrEventNotFound = errors.New("event not found")

// ErrDuplicateWebhook is returned when a webhook delivery with an
// already-stored provider event id arrives. The webhook handler
// acknowledges such deliveries without reprocessing them.
var ErrDuplicateWebhook = errors.New("webhook event already recorded")
