// Package response owns the forum API's wire envelopes: error bodies and paged lists.
package response

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/maxviazov/forum-service/internal/service"
)

// Header names set on every paged list response.
const (
	HeaderTotalCount = "X-Total-Count"
	HeaderPageCount  = "X-Page-Count"
)

// ErrorPayload is the body of every non-2xx answer.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

// errorKind binds a sentinel to its status and code. Order matters: the first match wins.
type errorKind struct {
	target      error
	status      int
	code        string
	withMessage bool
}

var errorKinds = []errorKind{
	{target: repository.ErrInvalidArgument, status: http.StatusBadRequest, code: "invalid_argument", withMessage: true},
	{target: service.ErrForbidden, status: http.StatusForbidden, code: "forbidden"},
	{target: repository.ErrNotFound, status: http.StatusNotFound, code: "not_found"},
	{target: repository.ErrAlreadyExists, status: http.StatusConflict, code: "already_exists"},
	{target: repository.ErrConflict, status: http.StatusConflict, code: "conflict"},
}

// MapError picks the status and body for err. Unknown errors become a bare 500 so
// driver messages never leak to clients.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}
	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
		}
	}
	for _, k := range errorKinds {
		if !errors.Is(err, k.target) {
			continue
		}
		p := ErrorPayload{Error: k.code}
		if k.withMessage {
			p.Message = err.Error()
		}
		return k.status, p
	}
	return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
}

// WriteError writes the mapped error and aborts the chain.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// WritePage writes a listing with 200 and mirrors its descriptor into headers:
// totals, and a Link header with prev/next relations built from the request URL.
func WritePage[T any](c *gin.Context, res repository.PageResult[T]) {
	if res.Items == nil {
		res.Items = []T{}
	}
	d := res.Page
	c.Header(HeaderTotalCount, strconv.Itoa(d.Total))
	c.Header(HeaderPageCount, strconv.Itoa(d.PageCount))
	if link := pageLinks(c.Request.URL, d); link != "" {
		c.Header("Link", link)
	}
	c.JSON(http.StatusOK, res)
}

func pageLinks(u *url.URL, d repository.PageDescriptor) string {
	if u == nil {
		return ""
	}
	var parts []string
	if d.HasPrevious {
		parts = append(parts, `<`+pageURL(u, d.Page-1, d.Size)+`>; rel="prev"`)
	}
	if d.HasNext {
		parts = append(parts, `<`+pageURL(u, d.Page+1, d.Size)+`>; rel="next"`)
	}
	return strings.Join(parts, ", ")
}

func pageURL(u *url.URL, page, size int) string {
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	next := url.URL{Path: u.Path, RawQuery: q.Encode()}
	return next.String()
}
