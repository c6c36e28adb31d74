package models

import (
	"testing"

	"github.com/solventa/promo-api/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNotification() Notification {
	return Notification{
		Title:              "Partner deal",
		Body:               "Save on your next trip",
		CTALabel:           "See offer",
		CTAURL:             "https://partner.example/offer",
		ShowAfterSeconds:   30,
		MaxShowsPerSession: 1,
		TargetScope:        TargetScopePages,
	}
}

func TestValidateRequiredText(t *testing.T) {
	assert := assert.New(t)

	for _, field := range []struct {
		name   string
		mutate func(*Notification)
	}{
		{"title", func(n *Notification) { n.Title = "  " }},
		{"body", func(n *Notification) { n.Body = "" }},
		{"ctaLabel", func(n *Notification) { n.CTALabel = "" }},
		{"ctaUrl", func(n *Notification) { n.CTAURL = " " }},
	} {
		n := validNotification()
		field.mutate(&n)
		err := n.Validate()
		require.Error(t, err, "expected %s to be required", field.name)

		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(field.name, ve.Field)
	}
}

func TestValidateShowAfterSecondsBounds(t *testing.T) {
	assert := assert.New(t)

	cases := map[int]bool{4: false, 5: true, 300: true, 301: false}
	for seconds, ok := range cases {
		n := validNotification()
		n.ShowAfterSeconds = seconds
		err := n.Validate()
		if ok {
			assert.NoError(err, "showAfterSeconds=%d should be accepted", seconds)
		} else {
			assert.True(apperr.IsValidation(err), "showAfterSeconds=%d should be rejected", seconds)
		}
	}
}

func TestValidateThrottlingAndScope(t *testing.T) {
	assert := assert.New(t)

	n := validNotification()
	n.MaxShowsPerSession = 0
	assert.True(apperr.IsValidation(n.Validate()))

	n = validNotification()
	n.TargetScope = "everywhere"
	assert.True(apperr.IsValidation(n.Validate()))

	// Specific scope requires at least one target content ID.
	n = validNotification()
	n.TargetScope = TargetScopeSpecific
	assert.True(apperr.IsValidation(n.Validate()))
	n.TargetContentIDs = []int64{42}
	assert.NoError(n.Validate())
}

func TestPageTargetsPatchMergesPerKey(t *testing.T) {
	existing := PageTargets{Home: true, Blog: true, News: false, Destinations: true}

	off := false
	merged := PageTargetsPatch{Home: &off}.Apply(existing)

	assert.Equal(t, PageTargets{Home: false, Blog: true, News: false, Destinations: true}, merged)

	// An empty patch changes nothing.
	assert.Equal(t, existing, PageTargetsPatch{}.Apply(existing))
}

func TestParsePage(t *testing.T) {
	assert := assert.New(t)

	for raw, want := range map[string]Page{
		"home":         PageHome,
		"Blog":         PageBlog,
		" news ":       PageNews,
		"destinations": PageDestinations,
	} {
		page, ok := ParsePage(raw)
		assert.True(ok, "expected %q to parse", raw)
		assert.Equal(want, page)
	}

	_, ok := ParsePage("checkout")
	assert.False(ok)
	_, ok = ParsePage("")
	assert.False(ok)
}

func TestTargetsContent(t *testing.T) {
	assert := assert.New(t)

	n := validNotification()
	n.TargetScope = TargetScopeSpecific
	n.TargetContentType = "news"
	n.TargetContentIDs = []int64{7, 9}

	assert.True(n.TargetsContent("news", 7))
	assert.True(n.TargetsContent("News", 9))
	assert.False(n.TargetsContent("news", 8))
	assert.False(n.TargetsContent("blog", 7))

	// Page-scoped notifications never match content lookups.
	page := validNotification()
	page.TargetContentType = "news"
	page.TargetContentIDs = []int64{7}
	assert.False(page.TargetsContent("news", 7))
}
