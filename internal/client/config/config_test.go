package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080/api.php", c.ServerEndpointAddr)
	assert.True(t, strings.HasSuffix(c.MirrorPath, "mirror.db"), c.MirrorPath)
	assert.Equal(t, 10*time.Second, c.RefreshInterval)
	assert.Equal(t, 3*time.Second, c.ProbeInterval)
	assert.Empty(t, c.ObjectStorage.Bucket)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:8080/api.php", cfg.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval)
}
