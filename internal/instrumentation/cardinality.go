package instrumentation

import "strings"

// staticSegments are the path segments of the OneSignal API that are not
// identifiers. Every other segment is replaced by a placeholder.
var staticSegments = map[string]bool{
	"apps":          true,
	"notifications": true,
	"players":       true,
	"segments":      true,
	"templates":     true,
	"auth":          true,
	"tokens":        true,
	"csv_export":    true,
	"history":       true,
	"users":         true,
	"subscriptions": true,
	"by":            true,
	"identity":      true,
}

// NormalizeEndpoint reduces an API path to a bounded label value by replacing
// identifier segments with {id} and dropping any query string.
//
//	NormalizeEndpoint("notifications/4f1c...")            // "notifications/{id}"
//	NormalizeEndpoint("/apps/abc/segments/def")           // "apps/{id}/segments/{id}"
//	NormalizeEndpoint("players?app_id=abc&limit=20")      // "players"
func NormalizeEndpoint(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return "unknown"
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !staticSegments[seg] {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
