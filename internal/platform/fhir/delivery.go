package fhir

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

// FHIRContentType is the FHIR JSON content type with charset.
const FHIRContentType = "application/fhir+json; charset=utf-8"

// FHIRMediaType is the bare media type offered for downloaded bundles.
const FHIRMediaType = "application/fhir+json"

// Marshal serialises v the way every exported artifact is written: two-space
// indented JSON with a trailing newline.
func Marshal(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return append(data, '\n'), nil
}

// BundleFilename returns the download filename for a bundle id.
func BundleFilename(id string) string {
	return "calculation-" + id + ".fhir.json"
}

// WriteResource writes v as a FHIR JSON response body.
func WriteResource(c echo.Context, status int, v interface{}) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, FHIRContentType, data)
}

// WriteAttachment serialises v and offers it as a downloadable file with the
// given filename and media type. An empty mediaType defaults to FHIRMediaType.
func WriteAttachment(c echo.Context, filename, mediaType string, v interface{}) error {
	if mediaType == "" {
		mediaType = FHIRMediaType
	}
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "" || filename == "." || filename == "/" {
		filename = "download.json"
	}
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return c.Blob(http.StatusOK, mediaType, data)
}
