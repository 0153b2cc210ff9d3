package api

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carojasb94/collection-agency/internal/accounts/domain"
)

// pageLinks builds the absolute next/previous URLs for a limit/offset page,
// keeping every other query parameter of the current request.
func pageLinks(c *gin.Context, page domain.Page, total int64) (next, previous *string) {
	base := requestURL(c)

	if int64(page.Offset+page.Limit) < total {
		next = withPage(base, page.Limit, page.Offset+page.Limit)
	}
	if page.Offset > 0 {
		prevOffset := page.Offset - page.Limit
		if prevOffset < 0 {
			prevOffset = 0
		}
		previous = withPage(base, page.Limit, prevOffset)
	}
	return next, previous
}

func requestURL(c *gin.Context) url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}

func withPage(u url.URL, limit, offset int) *string {
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("offset")
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
