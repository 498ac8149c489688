package util

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proxyFor(t *testing.T, fn func(*http.Request) (*url.URL, error), raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	got, err := fn(&http.Request{URL: u})
	require.NoError(t, err)
	return got
}

func TestNewProxyFunc(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "http://secure-proxy:3128", "localhost, .internal")

	assert.Equal(t, "secure-proxy:3128", proxyFor(t, fn, "https://api.example.com").Host)
	assert.Equal(t, "proxy:3128", proxyFor(t, fn, "http://api.example.com").Host)
	assert.Nil(t, proxyFor(t, fn, "http://localhost:11434"))
	assert.Nil(t, proxyFor(t, fn, "http://llm.internal"))
	assert.Nil(t, proxyFor(t, fn, "http://LLM.Internal"))
}

func TestNewProxyFunc_HTTPOnly(t *testing.T) {
	fn := NewProxyFunc("http://proxy:3128", "", "")
	assert.Equal(t, "proxy:3128", proxyFor(t, fn, "https://api.example.com").Host)
}
