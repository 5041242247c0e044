package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/forum-service/internal/model"
	"github.com/maxviazov/forum-service/internal/repository"
)

// Default page sizes per listing, applied when the client sends none.
const (
	TopicPageSize        = 36
	ReplyPageSize        = 16
	FavoritePageSize     = 16
	NotificationPageSize = 16
	TransactionPageSize  = 16
	VotePageSize         = 16

	// MaxPageSize is the ceiling when Deps.MaxPageSize is unset.
	MaxPageSize = 100
)

const (
	maxTitleLen   = 120
	maxContentLen = 20000
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// pager clamps client paging to the listing's default and the configured ceiling.
type pager struct{ max int }

func newPager(limit int) pager {
	if limit <= 0 {
		limit = MaxPageSize
	}
	return pager{max: limit}
}

// normalize applies the listing default to an unset (zero) size and caps it at the
// configured ceiling. A negative size is rejected. The page number is passed on untouched:
// the calculator answers an out-of-range page with an empty window on page 1.
func (p pager) normalize(page repository.Page, def int) (repository.Page, error) {
	if page.Size < 0 {
		return repository.Page{}, page.Validate()
	}
	if page.Size == 0 {
		page.Size = def
	}
	if page.Size > p.max {
		page.Size = p.max
	}
	return page, nil
}

// structFieldErrors converts validator output into client-facing field errors.
func structFieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "request", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: strings.ToLower(fe.Field()), Message: tagMessage(fe)})
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		return fmt.Sprintf("length must be >= %s", fe.Param())
	case "max":
		return fmt.Sprintf("length must be <= %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "alphanumunicode":
		return "must contain only letters and digits"
	default:
		return "is invalid"
	}
}

func requireID(field string, id int64) []FieldError {
	if id <= 0 {
		return []FieldError{{Field: field, Message: "must be > 0"}}
	}
	return nil
}

// checkText trims s and reports whether its length falls within [lo, hi] runes.
func checkText(field, s string, lo, hi int) (string, []FieldError) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	switch {
	case lo > 0 && n == 0:
		return s, []FieldError{{Field: field, Message: "must not be empty"}}
	case n < lo || n > hi:
		return s, []FieldError{{Field: field, Message: fmt.Sprintf("length must be between %d and %d", lo, hi)}}
	}
	return s, nil
}

func checkKind(kind model.InvolvedType) []FieldError {
	if !kind.Valid() {
		return []FieldError{{Field: "involved_type", Message: "must be 0 (topic) or 1 (reply)"}}
	}
	return nil
}
