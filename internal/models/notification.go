package models

import (
	"strings"
	"time"

	"github.com/solventa/promo-api/internal/apperr"
)

// Page identifies one of the site sections a notification can target.
type Page string

const (
	PageHome         Page = "home"
	PageBlog         Page = "blog"
	PageNews         Page = "news"
	PageDestinations Page = "destinations"
)

// ParsePage validates a page name coming in from the display endpoint.
func ParsePage(raw string) (Page, bool) {
	switch p := Page(strings.ToLower(strings.TrimSpace(raw))); p {
	case PageHome, PageBlog, PageNews, PageDestinations:
		return p, true
	default:
		return "", false
	}
}

// TargetScope selects which matching rule governs a notification: page flags
// or an explicit list of content IDs. Exactly one applies at query time.
type TargetScope string

const (
	TargetScopePages    TargetScope = "pages"
	TargetScopeSpecific TargetScope = "specific"
)

// PageTargets holds the per-page display flags for scope "pages".
type PageTargets struct {
	Home         bool `json:"home"`
	Blog         bool `json:"blog"`
	News         bool `json:"news"`
	Destinations bool `json:"destinations"`
}

// For reports whether the notification targets the given page.
func (t PageTargets) For(p Page) bool {
	switch p {
	case PageHome:
		return t.Home
	case PageBlog:
		return t.Blog
	case PageNews:
		return t.News
	case PageDestinations:
		return t.Destinations
	default:
		return false
	}
}

// PageTargetsPatch is a partial update of the page flags. Absent keys keep
// their stored value, so updating only Home never erases the other flags.
type PageTargetsPatch struct {
	Home         *bool `json:"home,omitempty"`
	Blog         *bool `json:"blog,omitempty"`
	News         *bool `json:"news,omitempty"`
	Destinations *bool `json:"destinations,omitempty"`
}

// Apply merges the patch into existing flags.
func (p PageTargetsPatch) Apply(t PageTargets) PageTargets {
	if p.Home != nil {
		t.Home = *p.Home
	}
	if p.Blog != nil {
		t.Blog = *p.Blog
	}
	if p.News != nil {
		t.News = *p.News
	}
	if p.Destinations != nil {
		t.Destinations = *p.Destinations
	}
	return t
}

// Bounds for the advisory delay before the renderer shows a popup.
const (
	MinShowAfterSeconds = 5
	MaxShowAfterSeconds = 300
)

// Notification is a partner promotional popup definition.
type Notification struct {
	ID                 int64       `json:"id" db:"id"`
	Title              string      `json:"title" db:"title"`
	Body               string      `json:"body" db:"body"`
	CTALabel           string      `json:"ctaLabel" db:"cta_label"`
	CTAURL             string      `json:"ctaUrl" db:"cta_url"`
	Active             bool        `json:"active" db:"active"`
	ShowAfterSeconds   int         `json:"showAfterSeconds" db:"show_after_seconds"`
	ShowOnPages        PageTargets `json:"showOnPages"`
	LimitShows         bool        `json:"limitShows" db:"limit_shows"`
	MaxShowsPerSession int         `json:"maxShowsPerSession" db:"max_shows_per_session"`
	ShowRandomly       bool        `json:"showRandomly" db:"show_randomly"`
	TargetScope        TargetScope `json:"targetScope" db:"target_scope"`
	TargetContentType  string      `json:"targetContentType,omitempty" db:"target_content_type"`
	TargetContentIDs   []int64     `json:"targetContentIds,omitempty" db:"target_content_ids"`
	CreatedAt          time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time   `json:"updatedAt" db:"updated_at"`
}

// TargetsContent reports whether a scope-"specific" notification targets the
// given content item.
func (n *Notification) TargetsContent(contentType string, contentID int64) bool {
	if n.TargetScope != TargetScopeSpecific {
		return false
	}
	if !strings.EqualFold(n.TargetContentType, contentType) {
		return false
	}
	for _, id := range n.TargetContentIDs {
		if id == contentID {
			return true
		}
	}
	return false
}

// Validate checks the invariants shared by create and update. Field names in
// the returned errors match the JSON payload keys.
func (n *Notification) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return apperr.NewValidation("title", "title is required")
	}
	if strings.TrimSpace(n.Body) == "" {
		return apperr.NewValidation("body", "body text is required")
	}
	if strings.TrimSpace(n.CTALabel) == "" {
		return apperr.NewValidation("ctaLabel", "call-to-action label is required")
	}
	if strings.TrimSpace(n.CTAURL) == "" {
		return apperr.NewValidation("ctaUrl", "call-to-action target is required")
	}
	if n.ShowAfterSeconds < MinShowAfterSeconds || n.ShowAfterSeconds > MaxShowAfterSeconds {
		return apperr.NewValidation("showAfterSeconds", "must be between 5 and 300 seconds")
	}
	if n.MaxShowsPerSession < 1 {
		return apperr.NewValidation("maxShowsPerSession", "must be at least 1")
	}
	switch n.TargetScope {
	case TargetScopePages, TargetScopeSpecific:
	default:
		return apperr.NewValidation("targetScope", `must be "pages" or "specific"`)
	}
	if n.TargetScope == TargetScopeSpecific && len(n.TargetContentIDs) == 0 {
		return apperr.NewValidation("targetContentIds", "at least one target content ID is required for specific targeting")
	}
	return nil
}
