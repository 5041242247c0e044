package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/forum-service/internal/repository"
)

// APIV1Prefix is the canonical base path for public HTTP API v1.
// Keep a single source of truth to avoid path drift across handlers and tests.
const APIV1Prefix = "/api/v1"

// pageQuery reads ?page=&size=. A missing page means the first one and a missing
// size is left zero for the listing's default. Malformed values and an explicit
// size below 1 are rejected; any integer page goes on to the calculator as sent.
func pageQuery(c *gin.Context) (repository.Page, error) {
	p := repository.Page{Number: repository.DefaultPage}
	if raw, ok := c.GetQuery("page"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return repository.Page{}, fmt.Errorf("%w: page must be an integer, got %q", repository.ErrInvalidArgument, raw)
		}
		p.Number = n
	}
	if raw, ok := c.GetQuery("size"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return repository.Page{}, fmt.Errorf("%w: size must be an integer, got %q", repository.ErrInvalidArgument, raw)
		}
		p.Size = n
		if err := p.Validate(); err != nil {
			return repository.Page{}, err
		}
	}
	return p, nil
}

// idParam parses a numeric path parameter; anything unparsable becomes 0,
// which the services reject as invalid input.
func idParam(c *gin.Context, name string) int64 {
	id, _ := strconv.ParseInt(c.Param(name), 10, 64)
	return id
}
