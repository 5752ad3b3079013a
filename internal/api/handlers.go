package api

import (
	"math"
	"net/http"

	"github.com/micro-nova/hapticd/internal/models"
	"github.com/micro-nova/hapticd/internal/vibrator"
)

func (h *Handlers) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.State())
}

func (h *Handlers) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ctrl.State().Info)
}

func (h *Handlers) getCapabilities(w http.ResponseWriter, r *http.Request) {
	caps := h.ctrl.State().Capabilities
	caps.AmplitudeControl = h.ctrl.SupportsAmplitudeControl()
	writeJSON(w, http.StatusOK, caps)
}

type catalogInfo struct {
	Name string `json:"name"`
	Min  int16  `json:"min"`
	Max  int16  `json:"max"`
}

func (h *Handlers) getCatalogs(w http.ResponseWriter, r *http.Request) {
	out := make([]catalogInfo, 0, len(vibrator.Catalogs))
	for _, c := range vibrator.Catalogs {
		out = append(out, catalogInfo{Name: c.Name, Min: c.Min, Max: c.Max})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"catalogs": out})
}

func (h *Handlers) on(w http.ResponseWriter, r *http.Request) {
	var req models.OnRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	if appErr := h.ctrl.On(r.Context(), req.DurationMs); appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.State())
}

func (h *Handlers) off(w http.ResponseWriter, r *http.Request) {
	if appErr := h.ctrl.Off(r.Context()); appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.State())
}

func (h *Handlers) setAmplitude(w http.ResponseWriter, r *http.Request) {
	var req models.AmplitudeRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	if req.Amplitude < 0 || req.Amplitude > math.MaxUint8 {
		writeError(w, models.ErrInvalidArgument("amplitude", "amplitude must be in [1, 255]"))
		return
	}
	if appErr := h.ctrl.SetAmplitude(r.Context(), uint8(req.Amplitude)); appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.State())
}

func (h *Handlers) perform(w http.ResponseWriter, r *http.Request) {
	var req models.PerformRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}
	catalog, ok := vibrator.CatalogByName(req.Catalog)
	if !ok {
		writeError(w, models.ErrInvalidArgument("catalog", "unknown effect catalog "+req.Catalog))
		return
	}
	strength, ok := vibrator.ParseStrength(req.Strength)
	if !ok {
		writeError(w, models.ErrInvalidArgument("strength", "unknown effect strength "+req.Strength))
		return
	}
	if req.Effect < math.MinInt16 || req.Effect > math.MaxInt16 {
		writeError(w, models.ErrInvalidArgument("effect", "effect id out of range for catalog "+catalog.Name))
		return
	}

	ms, appErr := h.ctrl.Perform(r.Context(), catalog, int16(req.Effect), strength)
	if appErr != nil {
		writeError(w, appErr)
		return
	}
	writeJSON(w, http.StatusOK, models.PerformResponse{DurationMs: ms})
}
