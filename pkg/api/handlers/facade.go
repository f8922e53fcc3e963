// Package handlers implements the HTTP handlers exposed by the facade API
// server: the Facade's operations translated to JSON request/response
// bodies, plus health checks.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jdesfossez/gt1000ctl/internal/facade"
	"github.com/jdesfossez/gt1000ctl/pkg/api/response"
)

// FacadeHandler adapts a *facade.Facade's operations to HTTP.
type FacadeHandler struct {
	facade *facade.Facade
}

// NewFacadeHandler builds a FacadeHandler over an already-open facade.
func NewFacadeHandler(f *facade.Facade) *FacadeHandler {
	return &FacadeHandler{facade: f}
}

// GetState handles GET /api/v1/state - the full mirrored snapshot.
func (h *FacadeHandler) GetState(w http.ResponseWriter, r *http.Request) {
	snap := h.facade.GetState(r.Context())
	response.JSON(w, http.StatusOK, response.OK(snap))
}

type toggleRequest struct {
	On bool `json:"on"`
}

// Toggle handles POST /api/v1/{category}/{index}/toggle.
func (h *FacadeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	index := chi.URLParam(r, "index")

	var body toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.JSON(w, http.StatusBadRequest, response.Err("malformed request body: "+err.Error()))
		return
	}

	if err := h.facade.Toggle(r.Context(), category, index, body.On); err != nil {
		response.JSON(w, http.StatusBadGateway, response.Err(err.Error()))
		return
	}
	response.JSON(w, http.StatusOK, response.OK(nil))
}

type setValueRequest struct {
	Field string `json:"field"`
	Value int    `json:"value"`
}

// SetValue handles POST /api/v1/{category}/{index}/value.
func (h *FacadeHandler) SetValue(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	index := chi.URLParam(r, "index")

	var body setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.JSON(w, http.StatusBadRequest, response.Err("malformed request body: "+err.Error()))
		return
	}

	if err := h.facade.SetValue(r.Context(), category, index, body.Field, body.Value); err != nil {
		response.JSON(w, http.StatusBadGateway, response.Err(err.Error()))
		return
	}
	response.JSON(w, http.StatusOK, response.OK(nil))
}

type setTypeRequest struct {
	Type string `json:"type"`
}

// SetType handles POST /api/v1/{category}/{index}/type.
func (h *FacadeHandler) SetType(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	index := chi.URLParam(r, "index")

	var body setTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.JSON(w, http.StatusBadRequest, response.Err("malformed request body: "+err.Error()))
		return
	}

	if err := h.facade.SetType(r.Context(), category, index, body.Type); err != nil {
		response.JSON(w, http.StatusBadGateway, response.Err(err.Error()))
		return
	}
	response.JSON(w, http.StatusOK, response.OK(nil))
}

// ListTypes handles GET /api/v1/{category}/types.
func (h *FacadeHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	names, err := h.facade.ListTypes(r.Context(), category)
	if err != nil {
		response.JSON(w, http.StatusBadGateway, response.Err(err.Error()))
		return
	}
	response.JSON(w, http.StatusOK, response.OK(names))
}
