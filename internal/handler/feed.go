package handler

import (
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
	"github.com/maxviazov/forum-service/internal/repository"
	"github.com/maxviazov/forum-service/internal/service"
	"github.com/maxviazov/forum-service/pkg/response"
)

const (
	feedItems      = 20
	feedSummaryLen = 280
)

// FeedHandler publishes the most recently active topics as Atom.
type FeedHandler struct {
	svc     service.TopicService
	title   string
	baseURL string
}

// NewFeedHandler builds links from baseURL; an empty one falls back to the request origin.
func NewFeedHandler(svc service.TopicService, baseURL string) *FeedHandler {
	return &FeedHandler{svc: svc, title: "forum-service", baseURL: baseURL}
}

func (h *FeedHandler) Register(r *gin.Engine) {
	r.GET("/feed.atom", h.atom)
}

func (h *FeedHandler) atom(c *gin.Context) {
	res, err := h.svc.ListTopics(c.Request.Context(), repository.Page{Number: 1, Size: feedItems})
	if err != nil {
		response.WriteError(c, err)
		return
	}

	base := h.baseURL
	if base == "" {
		base = requestOrigin(c.Request)
	}
	feed := &feeds.Feed{
		Title:   h.title,
		Link:    &feeds.Link{Href: base},
		Created: time.Now().UTC(),
	}
	if len(res.Items) > 0 {
		feed.Updated = res.Items[0].LastTouched
	}
	for _, t := range res.Items {
		item := &feeds.Item{
			Id:          fmt.Sprintf("%s%s/topics/%d", base, APIV1Prefix, t.ID),
			Title:       t.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s%s/topics/%d", base, APIV1Prefix, t.ID)},
			Description: summary(t.Content),
			Created:     t.Created,
			Updated:     t.LastTouched,
		}
		if t.Author != nil {
			item.Author = &feeds.Author{Name: t.Author.Username}
		}
		feed.Items = append(feed.Items, item)
	}

	body, err := feed.ToAtom()
	if err != nil {
		response.WriteError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(body))
}

// requestOrigin trusts Host and X-Forwarded-Proto; set app.base_url when the service sits behind a proxy.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func summary(s string) string {
	if utf8.RuneCountInString(s) <= feedSummaryLen {
		return s
	}
	return string([]rune(s)[:feedSummaryLen]) + "…"
}
