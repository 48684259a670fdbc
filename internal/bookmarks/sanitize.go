package bookmarks

import (
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"

	"github.com/joestump/bookmarks/internal/store"
)

// allowedTags are inert formatting elements passed through by FilterXSS,
// each with the attributes it may keep. Everything else is escaped.
var allowedTags = map[string][]string{
	"a":          {"href", "title", "target"},
	"abbr":       {"title"},
	"b":          nil,
	"blockquote": {"cite"},
	"br":         nil,
	"code":       nil,
	"del":        nil,
	"em":         nil,
	"h1":         nil,
	"h2":         nil,
	"h3":         nil,
	"h4":         nil,
	"h5":         nil,
	"h6":         nil,
	"hr":         nil,
	"i":          nil,
	"img":        {"src", "alt", "title", "width", "height"},
	"li":         nil,
	"mark":       nil,
	"ol":         nil,
	"p":          nil,
	"pre":        nil,
	"s":          nil,
	"small":      nil,
	"span":       nil,
	"strong":     nil,
	"sub":        nil,
	"sup":        nil,
	"u":          nil,
	"ul":         nil,
}

// urlAttrs must point at a safe scheme to survive filtering.
var urlAttrs = map[string]bool{"href": true, "src": true, "cite": true}

// textEscaper leaves '&' alone so entities that are already escaped stay stable.
var textEscaper = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Sanitize returns a copy of b whose text fields are safe to embed in HTML.
// The stored record is never modified.
func Sanitize(b *store.Bookmark) *store.Bookmark {
	out := *b
	out.Title = FilterXSS(b.Title)
	out.URL = FilterXSS(b.URL)
	out.Description = FilterXSS(b.Description)
	return &out
}

// FilterXSS neutralizes executable markup in s. Whitelisted formatting tags are
// kept with their safe attributes only; script tags, event handlers and any
// other markup are rendered as escaped text.
func FilterXSS(s string) string {
	if !strings.ContainsAny(s, `<>"'`) {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	b.Grow(len(s))
	for {
		tt := z.Next()
		raw := string(z.Raw())
		if tt == html.ErrorToken {
			// A tag left open at the end of input is kept as escaped text.
			b.WriteString(textEscaper.Replace(raw))
			return b.String()
		}
		switch tt {
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if attrs, ok := allowedTags[tok.Data]; ok {
				b.WriteString(renderTag(tt, tok, attrs))
				continue
			}
			b.WriteString(textEscaper.Replace(raw))
		default:
			b.WriteString(textEscaper.Replace(raw))
		}
	}
}

func renderTag(tt html.TokenType, tok html.Token, allowed []string) string {
	if tt == html.EndTagToken {
		return "</" + tok.Data + ">"
	}

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tok.Data)
	for _, a := range tok.Attr {
		if a.Namespace != "" || !slices.Contains(allowed, a.Key) {
			continue
		}
		if urlAttrs[a.Key] && !safeLink(a.Val) {
			continue
		}
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteString(`"`)
	}
	if tt == html.SelfClosingTagToken {
		b.WriteString(" />")
	} else {
		b.WriteString(">")
	}
	return b.String()
}

// safeLink accepts relative references and http, https or mailto URLs.
func safeLink(v string) bool {
	u, err := url.Parse(strings.TrimSpace(v))
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	default:
		return false
	}
}
