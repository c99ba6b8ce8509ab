package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("gs://bucket/key"))
	assert.False(t, IsRemote("/tmp/local.png"))
	assert.False(t, IsRemote("backgrounds/bg_001.png"))
	assert.False(t, IsRemote(""))
}

func TestParseRef(t *testing.T) {
	bucket, key, err := ParseRef("gs://my-bucket/players/HOU_x.png")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "players/HOU_x.png", key)
}

func TestParseRefErrors(t *testing.T) {
	for _, ref := range []string{"local/path.png", "gs://", "gs://bucket", "gs://bucket/"} {
		_, _, err := ParseRef(ref)
		assert.Error(t, err, "ref %q should not parse", ref)
	}
}

func TestRemoteRef(t *testing.T) {
	assert.Equal(t, "gs://b/qimen/2025-11-26.jpg", RemoteRef("b", "qimen", "2025-11-26.jpg"))
	assert.Equal(t, "gs://b/players/HOU_x.png", RemoteRef("b", "players/HOU_x.png"))
}
