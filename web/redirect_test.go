package web

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"", "/dashboard"},
		{"/dashboard?name=jamun", "/dashboard?name=jamun"},
		{"/items/3/edit", "/items/3/edit"},
		{"https://evil.example.com/", "/dashboard"},
		{"//evil.example.com", "/dashboard"},
		{`/\evil.example.com`, "/dashboard"},
		{"dashboard", "/dashboard"},
		{"/", "/dashboard"},
		{"/login", "/dashboard"},
		{"/register/", "/dashboard"},
		{"/logout", "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeRedirect(tt.target, "/dashboard"))
		})
	}
}

func TestTakeRejected(t *testing.T) {
	cfg := testSettings()
	jar := newFakeJar(map[string]string{cfg.GetRejectedRouteKey(): "/dashboard?category=Chocolate"})

	assert.Equal(t, "/dashboard?category=Chocolate", TakeRejected(jar, cfg, "/dashboard"))

	c := jar.last(cfg.GetRejectedRouteKey())
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
}

func TestTakeRejectedDefault(t *testing.T) {
	cfg := testSettings()
	assert.Equal(t, "/dashboard", TakeRejected(newFakeJar(nil), cfg, "/dashboard"))
}

func TestRedirectStatus(t *testing.T) {
	assert.Equal(t, http.StatusFound, redirectStatus("GET"))
	assert.Equal(t, http.StatusSeeOther, redirectStatus("POST"))
}
