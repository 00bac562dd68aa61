package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/anonto42/social-api/backend/internal/middleware"
	"github.com/anonto42/social-api/backend/internal/models"
	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
)

// GetFeedRSS renders the caller's feed as RSS 2.0. Same visibility and order as GetFeed.
func (h *PostHandler) GetFeedRSS(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	if limit == 0 {
		limit = 50
	}

	posts, err := h.feed.ComposeFeed(c.Request().Context(), middleware.UserID(c), models.FeedOptions{Limit: limit})
	if err != nil {
		return err
	}

	rss, err := renderRSS(c.Scheme()+"://"+c.Request().Host+"/api/v1/posts", posts, time.Now())
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func renderRSS(baseURL string, posts []models.PostView, now time.Time) (string, error) {
	feed := &feeds.Feed{
		Title:       "Your feed",
		Link:        &feeds.Link{Href: baseURL},
		Description: "Posts from you and the people you follow",
		Created:     now,
	}

	for _, p := range posts {
		link := fmt.Sprintf("%s/%d", baseURL, p.ID)
		description := p.Content
		if p.MediaURL != "" {
			description = fmt.Sprintf("%s\n%s", p.Content, p.MediaURL)
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          link,
			Title:       fmt.Sprintf("%s, %s", p.AuthorUsername, p.CreatedAt.UTC().Format(time.RFC822)),
			Link:        &feeds.Link{Href: link},
			Description: description,
			Content:     p.Content,
			Author:      &feeds.Author{Name: p.AuthorUsername},
			Created:     p.CreatedAt,
			Updated:     p.UpdatedAt,
		})
	}
	return feed.ToRss()
}
