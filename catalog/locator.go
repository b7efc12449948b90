package catalog

import (
	"net/url"
	"strings"
)

// Locator rewrites pagination URLs into request paths relative to the API base
type Locator struct {
	base *url.URL
}

func NewLocator(base *url.URL) *Locator {
	b := *base
	if !strings.HasSuffix(b.Path, "/") {
		b.Path += "/"
	}
	return &Locator{base: &b}
}

// Relative strips the API origin and prefix from raw. It returns "" when raw is
// absent or points somewhere the API client must not follow.
func (l *Locator) Relative(raw *string) string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return ""
	}

	if u.IsAbs() || u.Host != "" {
		if !strings.EqualFold(u.Scheme, l.base.Scheme) || !strings.EqualFold(u.Host, l.base.Host) {
			return ""
		}
	}
	rel := u.Path
	if strings.HasPrefix(rel, "/") {
		if !strings.HasPrefix(rel, l.base.Path) {
			return ""
		}
		rel = strings.TrimPrefix(rel, l.base.Path)
	}
	if u.RawQuery != "" {
		rel += "?" + u.RawQuery
	}
	return rel
}
