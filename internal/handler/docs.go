package handler

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// OpenAPISpecPath is read per request, so edits to the API document show up without a rebuild.
const OpenAPISpecPath = "api/openapi.yaml"

//go:embed swagger.html
var swaggerHTML []byte

// RegisterDocs mounts the forum API document and its Swagger UI at the root.
func RegisterDocs(r *gin.Engine) {
	r.GET("/openapi.yaml", serveOpenAPI)
	r.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", swaggerHTML)
	})
}

// serveOpenAPI tags the document with a content hash so the UI can revalidate cheaply.
func serveOpenAPI(c *gin.Context) {
	doc, err := os.ReadFile(OpenAPISpecPath)
	if err != nil {
		c.String(http.StatusInternalServerError, "openapi document unavailable: %v", err)
		return
	}
	sum := sha256.Sum256(doc)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/yaml; charset=utf-8", doc)
}
