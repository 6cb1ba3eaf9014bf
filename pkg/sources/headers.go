package sources

import (
	"net/http"
	"strings"
)

const (
	HeaderUserAgentKey      = "user_agent"
	HeaderAcceptKey         = "accept"
	HeaderAcceptLanguageKey = "accept_language"
	HeaderCacheControlKey   = "cache_control"
)

// HeaderKeys maps the snake_case keys used in feeds files to HTTP header names.
var HeaderKeys = map[string]string{
	HeaderUserAgentKey:      "User-Agent",
	HeaderAcceptKey:         "Accept",
	HeaderAcceptLanguageKey: "Accept-Language",
	HeaderCacheControlKey:   "Cache-Control",
}

// canonicalHeaders trims values, drops empties and maps known snake_case keys
// to their HTTP names. Unknown keys are canonicalised as-is.
func canonicalHeaders(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := strings.TrimSpace(k)
		val := strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		if name, ok := HeaderKeys[strings.ToLower(key)]; ok {
			key = name
		}
		out[http.CanonicalHeaderKey(key)] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
