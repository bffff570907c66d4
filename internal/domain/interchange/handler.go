package interchange

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/calcfhir/internal/platform/auth"
	"github.com/ehr/calcfhir/internal/platform/fhir"
)

type Handler struct {
	builder  *Builder
	defaults Options
	logger   zerolog.Logger
}

// NewHandler creates a handler. defaults are server-wide options (for
// example the configured patient identifier system); query parameters on
// each request override them.
func NewHandler(builder *Builder, defaults Options, logger zerolog.Logger) *Handler {
	if builder == nil {
		builder = NewBuilder()
	}
	return &Handler{builder: builder, defaults: defaults, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group, fhirGroup *echo.Group) {
	role := auth.RequireRole("admin", "physician", "nurse")

	api.POST("/interchange/bundle", h.CreateBundle, role)
	fhirGroup.POST("/$calculator-bundle", h.CreateBundle, role)
}

// CreateBundle converts the request body (an input record) into a collection
// Bundle. With ?download=true the bundle is delivered as a file attachment.
func (h *Handler) CreateBundle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return fhir.WriteResource(c, he.Code, fhir.NewOperationOutcome(fhir.IssueSeverityError, fhir.IssueTypeTooCostly, "request body too large"))
		}
		return fhir.WriteResource(c, http.StatusBadRequest, fhir.InvalidOutcome("failed to read request body"))
	}

	rec, err := DecodeRecord(body)
	if err != nil {
		return fhir.WriteResource(c, http.StatusBadRequest, fhir.InvalidOutcome(err.Error()))
	}

	bundle, err := h.builder.Build(rec, h.options(c))
	if errors.Is(err, ErrInvalidInput) {
		return fhir.WriteResource(c, http.StatusBadRequest, fhir.InvalidOutcome(err.Error()))
	}
	if err != nil {
		return fhir.WriteResource(c, http.StatusInternalServerError, fhir.InternalErrorOutcome(err.Error()))
	}

	obs, _ := bundle.Observation()
	h.logger.Info().
		Str("bundle_id", bundle.ID).
		Int("entries", len(bundle.Entry)).
		Int("components", len(obs.Component)).
		Msg("interchange bundle built")

	if WantsDownload(c) {
		return fhir.WriteAttachment(c, fhir.BundleFilename(bundle.ID), fhir.FHIRMediaType, bundle)
	}
	return fhir.WriteResource(c, http.StatusOK, bundle)
}

func (h *Handler) options(c echo.Context) *Options {
	o := h.defaults.Merge(OptionsFromQuery(c))
	return &o
}

// OptionsFromQuery reads builder options from query parameters named after
// the Options JSON fields.
func OptionsFromQuery(c echo.Context) Options {
	return Options{
		ResourceID:          c.QueryParam("resourceId"),
		PatientIDSystem:     c.QueryParam("patientIdSystem"),
		Category:            c.QueryParam("category"),
		CategoryDisplay:     c.QueryParam("categoryDisplay"),
		CodeSystem:          c.QueryParam("codeSystem"),
		ComponentCodeSystem: c.QueryParam("componentCodeSystem"),
	}
}

// WantsDownload reports whether the caller asked for an attachment.
func WantsDownload(c echo.Context) bool {
	for _, name := range []string{"download", "_download"} {
		switch c.QueryParam(name) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}
