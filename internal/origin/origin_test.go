package origin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in, want, host string
		ok             bool
	}{
		{"http://localhost:5173", "http://localhost:5173", "localhost:5173", true},
		{"HTTPS://Example.COM:443", "https://example.com", "example.com", true},
		{"http://example.com:80/", "http://example.com", "example.com", true},
		{"http://[::1]:8080", "http://[::1]:8080", "[::1]:8080", true},
		{"null", "null", "", true},
		{"", "", "", false},
		{"ftp://example.com", "", "", false},
		{"https://user@example.com", "", "", false},
		{"https://example.com/path", "", "", false},
		{"https://example.com?q=1", "", "", false},
		{"https://example.com:0", "", "", false},
		{"https://example.com:70000", "", "", false},
		{"example.com", "", "", false},
	}
	for _, tc := range cases {
		got, host, ok := NormalizeHeader(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.host, host, tc.in)
	}
}

func TestIsAllowed_AllowList(t *testing.T) {
	allowed := []string{"http://localhost:5173", "https://node-call-sigma.vercel.app"}

	assert.True(t, IsAllowed("http://localhost:5173", "localhost:5173", "relay:3000", allowed))
	assert.True(t, IsAllowed("https://node-call-sigma.vercel.app", "node-call-sigma.vercel.app", "relay", allowed))
	assert.False(t, IsAllowed("https://evil.example", "evil.example", "relay", allowed))
	assert.True(t, IsAllowed("https://evil.example", "evil.example", "relay", []string{"*"}))
}

func TestIsAllowed_SameHostBypassesAllowList(t *testing.T) {
	allowed := []string{"http://localhost:5173"}

	assert.True(t, IsAllowed("http://127.0.0.1:3000", "127.0.0.1:3000", "127.0.0.1:3000", allowed))
	assert.True(t, IsAllowed("https://relay.example", "relay.example", "relay.example:443", allowed))
	assert.False(t, IsAllowed("http://127.0.0.1:4000", "127.0.0.1:4000", "127.0.0.1:3000", allowed))
}

func TestIsAllowed_SameHostDefault(t *testing.T) {
	assert.True(t, IsAllowed("https://relay.example", "relay.example", "relay.example:443", nil))
	assert.True(t, IsAllowed("https://relay.example", "relay.example", "relay.example", nil))
	assert.False(t, IsAllowed("https://relay.example", "relay.example", "relay.example:8443", nil))
	assert.False(t, IsAllowed("null", "", "relay.example", nil))
}
