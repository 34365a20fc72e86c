package instrumentation

import "testing"

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"notifications", "notifications"},
		{"notifications/7f3c9a1e-2b4d-4c5e-8f6a-1b2c3d4e5f60", "notifications/{id}"},
		{"/players/abc123/", "players/{id}"},
		{"players?app_id=x&limit=20", "players"},
		{"apps/app-1/segments/seg-2", "apps/{id}/segments/{id}"},
		{"apps/app-1/auth/tokens", "apps/{id}/auth/tokens"},
		{"players/csv_export", "players/csv_export"},
		{"", "unknown"},
		{"/", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := NormalizeEndpoint(tt.path); got != tt.want {
				t.Errorf("NormalizeEndpoint(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
