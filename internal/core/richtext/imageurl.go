package richtext

import (
	"encoding/json"
	"net/url"
	"strings"
)

// staticMediaBase is the canonical host Wix serves media ids from.
const staticMediaBase = "https://static.wixstatic.com/media/"

// extractStrategy is one pure extraction attempt over a raw provider
// payload. It returns "" when the payload doesn't match its shape.
type extractStrategy func(data map[string]any) string

// The provider emits several incompatible shapes for image payloads.
// Strategies are evaluated in order; the first valid URL wins.
var imageStrategies = []extractStrategy{
	urlAtPath("image.src"),
	urlAtPath("image.url"),
	urlAtPath("src"),
	urlAtPath("url"),
	urlAtPath("image"),
	mediaIDAtPath("image.src.id"),
	mediaIDAtPath("src.id"),
	mediaIDAtPath("id"),
}

// Cover media uses a narrower set of shapes than inline images.
var coverStrategies = []extractStrategy{
	urlAtPath("url"),
	urlAtPath("src"),
	urlAtPath("image.url"),
	urlAtPath("image.src"),
}

// ExtractImageURL resolves a best-effort URL from a rich-content image
// node payload. Returns "" when no strategy matches.
func ExtractImageURL(raw json.RawMessage) string {
	return extract(raw, imageStrategies)
}

// ExtractCoverURL resolves a best-effort URL from a post's cover-media
// payload. Returns "" when no strategy matches.
func ExtractCoverURL(raw json.RawMessage) string {
	return extract(raw, coverStrategies)
}

// ExtractAltText returns the altText field of an image payload, if any.
func ExtractAltText(raw json.RawMessage) string {
	data := decodeObject(raw)
	if data == nil {
		return ""
	}
	if alt, ok := valueAtPath(data, "altText").(string); ok {
		return alt
	}
	return ""
}

func extract(raw json.RawMessage, strategies []extractStrategy) string {
	data := decodeObject(raw)
	if data == nil {
		return ""
	}
	for _, strategy := range strategies {
		if u := strategy(data); u != "" {
			return u
		}
	}
	return ""
}

func decodeObject(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil
	}
	return data
}

// urlAtPath returns a strategy matching a string URL at a dotted path.
func urlAtPath(path string) extractStrategy {
	return func(data map[string]any) string {
		s, ok := valueAtPath(data, path).(string)
		if !ok || !IsValidURL(s) {
			return ""
		}
		return s
	}
}

// mediaIDAtPath returns a strategy matching a provider media id at a
// dotted path, rebuilt as a canonical static-asset URL.
func mediaIDAtPath(path string) extractStrategy {
	return func(data map[string]any) string {
		id, ok := valueAtPath(data, path).(string)
		if !ok || id == "" {
			return ""
		}
		return staticMediaBase + id
	}
}

func valueAtPath(data map[string]any, path string) any {
	var current any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// IsValidURL reports whether s is a syntactically valid absolute
// http(s) URL.
func IsValidURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
