package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kass/spatio/pkg/aof"
)

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, "0.0.0.0:9851", c.Addr())
	assert.Equal(t, aof.SyncEverySecond, c.AOFSyncPolicy)
	assert.True(t, c.AOFEnabled)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SPATIO_HOST", "127.0.0.1")
	t.Setenv("SPATIO_PORT", "9000")
	t.Setenv("SPATIO_AOF_POLICY", "always")
	t.Setenv("SPATIO_AOF_ENABLED", "false")
	t.Setenv("SPATIO_TIMEOUT", "2s")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", c.Addr())
	assert.Equal(t, aof.SyncAlways, c.AOFSyncPolicy)
	assert.False(t, c.AOFEnabled)
	assert.Equal(t, "2s", c.DefaultTimeout.String())
}

func TestFromEnvRejectsBadPolicy(t *testing.T) {
	t.Setenv("SPATIO_AOF_POLICY", "bogus")
	_, err := FromEnv()
	assert.Error(t, err)
}
