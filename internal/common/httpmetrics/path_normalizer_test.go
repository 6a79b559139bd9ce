package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                      "/",
		"/api/listings":         "/api/listings",
		"/api/listings/42":      "/api/listings/{param}",
		"/api/listings/42/save": "/api/listings/{param}/save",
		"/api/presence/3f2b8c1e-1a2b-4c3d-8e9f-0a1b2c3d4e5f": "/api/presence/{param}",
	}

	for in, want := range cases {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
