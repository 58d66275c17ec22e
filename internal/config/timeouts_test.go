package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadTimeouts_Defaults(t *testing.T) {
	t.Setenv("DIGITALOCEAN_TIMEOUT_REQUEST", "")
	t.Setenv("DIGITALOCEAN_PAGE_SIZE", "")

	timeouts := LoadTimeouts()

	assert.Equal(t, 60*time.Second, timeouts.Request)
	assert.Equal(t, 200, timeouts.PageSize)
}

func TestLoadTimeouts_FromEnv(t *testing.T) {
	t.Setenv("DIGITALOCEAN_TIMEOUT_REQUEST", "5s")
	t.Setenv("DIGITALOCEAN_PAGE_SIZE", "50")

	timeouts := LoadTimeouts()

	assert.Equal(t, 5*time.Second, timeouts.Request)
	assert.Equal(t, 50, timeouts.PageSize)
}

func TestLoadTimeouts_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DIGITALOCEAN_TIMEOUT_REQUEST", "soon")
	t.Setenv("DIGITALOCEAN_PAGE_SIZE", "-3")

	timeouts := LoadTimeouts()

	assert.Equal(t, 60*time.Second, timeouts.Request)
	assert.Equal(t, 200, timeouts.PageSize)
}
