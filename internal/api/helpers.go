// Package api implements the HTTP REST API for the haptic actuator.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/micro-nova/hapticd/internal/models"
	"github.com/micro-nova/hapticd/internal/vibrator"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	ctrl   Controller
	events EventBus
}

// Controller is the interface the handlers use to drive the actuator.
type Controller interface {
	State() models.State
	On(ctx context.Context, durationMs uint32) *models.AppError
	Off(ctx context.Context) *models.AppError
	SupportsAmplitudeControl() bool
	SetAmplitude(ctx context.Context, amplitude uint8) *models.AppError
	Perform(ctx context.Context, catalog vibrator.Catalog, effect int16, strength vibrator.Strength) (int64, *models.AppError)
}

// EventBus is the interface for subscribing to state change events.
type EventBus interface {
	Subscribe(id string) <-chan models.State
	Unsubscribe(id string, sub <-chan models.State)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an AppError as a JSON response.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrInternal(err.Error()))
}

// decodeBody decodes a JSON request body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v interface{}) *models.AppError {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.ErrBadRequest("invalid JSON: " + err.Error())
	}
	return nil
}
