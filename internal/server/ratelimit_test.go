package server

import (
	"net/http/httptest"
	"testing"

	"resumepdf/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestLimiterManager(t *testing.T) {
	m := NewRateLimiter(60, 2, errors.Discard())
	defer m.Close()

	assert.True(t, m.Allow("ip:1.1.1.1"))
	assert.True(t, m.Allow("ip:1.1.1.1"))
	assert.False(t, m.Allow("ip:1.1.1.1"))
	assert.True(t, m.Allow("ip:2.2.2.2"))

	stats := m.GetStats()
	assert.Equal(t, 2, stats["active_limiters"])
	assert.InDelta(t, 60.0, stats["rate_per_minute"], 1e-9)

	m.Close()
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "forwarded for", headers: map[string]string{"X-Forwarded-For": "junk, 203.0.113.5, 10.0.0.1"}, remote: "192.0.2.1:5555", want: "203.0.113.5"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, remote: "192.0.2.1:5555", want: "198.51.100.7"},
		{name: "invalid real ip", headers: map[string]string{"X-Real-IP": "nope"}, remote: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "no port", remote: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestGetRateLimitKey(t *testing.T) {
	keys := map[string]bool{"key-1": true}
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"

	assert.Equal(t, "ip:192.0.2.1", getRateLimitKey(r, true, true, keys))
	assert.Equal(t, "ip:192.0.2.1", getRateLimitKey(r, true, false, keys))
	assert.Equal(t, "", getRateLimitKey(r, false, false, keys))

	r.Header.Set("X-API-Key", "key-1")
	assert.Equal(t, "api_key:key-1", getRateLimitKey(r, true, true, keys))
	assert.Equal(t, "ip:192.0.2.1", getRateLimitKey(r, false, true, keys))

	r.Header.Set("X-API-Key", "made-up")
	assert.Equal(t, "ip:192.0.2.1", getRateLimitKey(r, true, true, keys))
	assert.Equal(t, "ip:192.0.2.1", getRateLimitKey(r, true, false, keys))

	// Without configured keys every caller is keyed by IP.
	r.Header.Set("X-API-Key", "key-1")
	assert.Equal(t, "ip:192.0.2.1", getRateLimitKey(r, true, false, nil))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcdefgh****", maskAPIKey("abcdefghijkl"))
}
