package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	arch "archrelay/internal/architecture"
)

const (
	detailUpstreamError = "Error from architecture service"
	detailUnavailable   = "Architecture service unavailable"
	detailInternal      = "Internal Server Error"
	detailTooLarge      = "Request Entity Too Large"
	maxRequestBodyBytes = 1 << 20
)

type ArchitectureHandler struct {
	gen arch.Generator
}

func NewArchitectureHandler(gen arch.Generator) *ArchitectureHandler {
	return &ArchitectureHandler{gen: gen}
}

// HandleCreate validates the body, relays it to the generator and translates
// upstream failures. Upstream error bodies and transport causes are logged
// here and never forwarded to the caller.
func (h *ArchitectureHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeDetail(w, http.StatusRequestEntityTooLarge, detailTooLarge)
			return
		}
		writeDetail(w, http.StatusUnprocessableEntity, []FieldError{jsonInvalid(0)})
		return
	}

	req, fieldErrs := decodeArchitectureRequest(body)
	if len(fieldErrs) > 0 {
		writeDetail(w, http.StatusUnprocessableEntity, fieldErrs)
		return
	}

	resp, err := h.gen.Generate(r.Context(), req)
	if err != nil {
		h.writeGenerateError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ArchitectureHandler) writeGenerateError(w http.ResponseWriter, req arch.Request, err error) {
	var (
		statusErr   *arch.StatusError
		unavailable *arch.UnavailableError
	)
	switch {
	case errors.As(err, &statusErr):
		log.Printf("architecture: upstream status=%d app=%q body=%q", statusErr.StatusCode, req.AppName, statusErr.Body)
		writeDetail(w, statusErr.StatusCode, detailUpstreamError)
	case errors.As(err, &unavailable):
		log.Printf("architecture: upstream unavailable cause=%s app=%q err=%v", unavailable.Cause, req.AppName, unavailable.Err)
		writeDetail(w, http.StatusServiceUnavailable, detailUnavailable)
	case errors.Is(err, arch.ErrInvalidResponse):
		log.Printf("architecture: %v app=%q", err, req.AppName)
		writeDetail(w, http.StatusBadGateway, detailUpstreamError)
	default:
		log.Printf("architecture: generate failed app=%q: %v", req.AppName, err)
		writeDetail(w, http.StatusInternalServerError, detailInternal)
	}
}
