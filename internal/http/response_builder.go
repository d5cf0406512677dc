// Package http exposes the ledger as a JSON API.
//
// This file implements the Builder Pattern for constructing JSON responses.
// Every body is an envelope carrying the result under "data", a failure under
// "error", and optionally a short user-facing "notification".

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"saga/internal/core"
)

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// Notification is the message a client shows after an operation.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}

// ErrorBody describes a rejected request.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type envelope struct {
	Data         any           `json:"data,omitempty"`
	Error        *ErrorBody    `json:"error,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// Error kinds
const (
	KindValidation  = "validation"
	KindNotFound    = "not_found"
	KindConflict    = "conflict"
	KindBadRequest  = "bad_request"
	KindRateLimit   = "rate_limited"
	KindUnavailable = "unavailable"
	KindInternal    = "internal"
)

// JSONResponseBuilder provides a fluent API for building API responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       envelope
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Data sets the result payload.
func (b *JSONResponseBuilder) Data(v any) *JSONResponseBuilder {
	b.body.Data = v
	return b
}

func (b *JSONResponseBuilder) Notify(t NotificationType, message string) *JSONResponseBuilder {
	b.body.Notification = &Notification{Type: t, Message: message}
	return b
}

func (b *JSONResponseBuilder) Success(message string) *JSONResponseBuilder {
	return b.Notify(NotificationSuccess, message)
}

func (b *JSONResponseBuilder) Warning(message string) *JSONResponseBuilder {
	return b.Notify(NotificationWarning, message)
}

// Fail sets the error body and an error notification with the same message.
func (b *JSONResponseBuilder) Fail(kind, message, field string) *JSONResponseBuilder {
	b.body.Error = &ErrorBody{Kind: kind, Message: message, Field: field}
	return b.Notify(NotificationError, message)
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"kind":"internal","message":"Something went wrong"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

// ErrorResponse maps an error from the ledger API to its status and body.
func ErrorResponse(err error) *JSONResponseBuilder {
	var (
		verr *core.ValidationError
		rerr *requestError
	)
	b := NewJSONResponse()
	switch {
	case errors.As(err, &rerr):
		return b.Status(http.StatusBadRequest).Fail(KindBadRequest, rerr.Error(), "")
	case errors.As(err, &verr):
		return b.Status(http.StatusUnprocessableEntity).Fail(KindValidation, core.Notification(err), verr.Field)
	case errors.Is(err, core.ErrNotFound):
		return b.Status(http.StatusNotFound).Fail(KindNotFound, core.Notification(err), "")
	case errors.Is(err, core.ErrConflict):
		return b.Status(http.StatusConflict).Fail(KindConflict, core.Notification(err), "")
	case errors.Is(err, core.ErrUnavailable):
		return b.Status(http.StatusServiceUnavailable).Fail(KindUnavailable, core.Notification(err), "")
	default:
		return b.Status(http.StatusInternalServerError).Fail(KindInternal, core.Notification(err), "")
	}
}

// Result builds the response of a mutation. A change that was applied but not
// persisted is still a success, reported with a warning.
func Result(status int, data any, err error, success string) *JSONResponseBuilder {
	switch {
	case err == nil:
		b := NewJSONResponse().Status(status).Data(data)
		if success != "" {
			b.Success(success)
		}
		return b
	case errors.Is(err, core.ErrPersistence):
		return NewJSONResponse().Status(status).Data(data).Warning(core.Notification(err))
	default:
		return ErrorResponse(err)
	}
}

// NotFoundError creates a 404 for unknown routes.
func NotFoundError(message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusNotFound).Fail(KindNotFound, message, "")
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusTooManyRequests).
		Header("Retry-After", "60").
		Fail(KindRateLimit, "Too many changes. Please try again in a minute", "")
}
