package calculation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ehr/calcfhir/internal/domain/interchange"
	"github.com/ehr/calcfhir/internal/platform/auth"
	"github.com/ehr/calcfhir/internal/platform/fhir"
	"github.com/ehr/calcfhir/internal/platform/middleware"
	"github.com/ehr/calcfhir/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// envelope is the {success, data | error} body of every REST response.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *Handler) RegisterRoutes(api *echo.Group, fhirGroup *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "physician", "nurse"))
	read.GET("/calculations", h.List)
	read.GET("/calculations/:id", h.Get)
	read.GET("/calculations/:id/fhir", h.Export)
	read.GET("/sirs/history", h.List)
	read.GET("/sirs/:id", h.Get)

	write := api.Group("", auth.RequireRole("admin", "physician"))
	write.POST("/calculations", h.Create)
	write.POST("/sirs/calculate", h.Create)
	write.DELETE("/calculations/:id", h.Delete)

	api.DELETE("/calculations", h.Clear, auth.RequireRole("admin"))

	fhirGroup.GET("/Observation/:id/$calculator-bundle", h.ExportFHIR, auth.RequireRole("admin", "physician", "nurse"))
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: false, Error: msg})
}

func (h *Handler) Create(c echo.Context) error {
	var calc Calculation
	if err := c.Bind(&calc); err != nil {
		if errors.Is(err, middleware.ErrBodyTooLarge) {
			return fail(c, http.StatusRequestEntityTooLarge, "request body too large")
		}
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	calc.ID = 0
	if err := h.svc.Create(c.Request().Context(), &calc); err != nil {
		if errors.Is(err, ErrInvalid) {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		return fail(c, http.StatusInternalServerError, "failed to save calculation")
	}
	return c.JSON(http.StatusCreated, envelope{Success: true, Data: calc})
}

func (h *Handler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	calc, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return fail(c, http.StatusNotFound, "calculation not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to load calculation")
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: calc})
}

func (h *Handler) List(c echo.Context) error {
	p := pagination.FromContext(c)
	items, total, err := h.svc.ListRecent(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to list calculations")
	}
	if items == nil {
		items = []*Calculation{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, p))
}

func (h *Handler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	err := h.svc.Delete(c.Request().Context(), id)
	if errors.Is(err, ErrNotFound) {
		return fail(c, http.StatusNotFound, "calculation not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to delete calculation")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Clear(c echo.Context) error {
	n, err := h.svc.Clear(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to clear history")
	}
	return c.JSON(http.StatusOK, envelope{Success: true, Data: map[string]int64{"deleted": n}})
}

// Export returns the interchange bundle for a stored calculation. Errors use
// the REST envelope; ExportFHIR is the FHIR-facing variant.
func (h *Handler) Export(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	bundle, err := h.svc.ExportBundle(c.Request().Context(), id, interchange.OptionsFromQuery(c))
	if errors.Is(err, ErrNotFound) {
		return fail(c, http.StatusNotFound, "calculation not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "failed to export calculation")
	}
	return deliver(c, bundle)
}

func (h *Handler) ExportFHIR(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return fhir.WriteResource(c, http.StatusBadRequest, fhir.ValidationOutcome("id", "must be a positive integer"))
	}
	bundle, err := h.svc.ExportBundle(c.Request().Context(), id, interchange.OptionsFromQuery(c))
	if errors.Is(err, ErrNotFound) {
		return fhir.WriteResource(c, http.StatusNotFound, fhir.NotFoundOutcome("Observation", c.Param("id")))
	}
	if err != nil {
		return fhir.WriteResource(c, http.StatusInternalServerError, fhir.InternalErrorOutcome(err.Error()))
	}
	return deliver(c, bundle)
}

func deliver(c echo.Context, bundle *fhir.Bundle) error {
	if interchange.WantsDownload(c) {
		return fhir.WriteAttachment(c, fhir.BundleFilename(bundle.ID), fhir.FHIRMediaType, bundle)
	}
	return fhir.WriteResource(c, http.StatusOK, bundle)
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
