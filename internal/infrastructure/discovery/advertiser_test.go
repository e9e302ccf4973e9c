package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourassist/backend/internal/infrastructure/config"
)

func TestBuildServiceInfo(t *testing.T) {
	info, err := BuildServiceInfo(":8000", "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, 8000, info.Port)
	assert.Contains(t, info.InstanceName, "TourAssist on ")
	assert.Equal(t, []string{"api=v1", "version=0.1.0"}, info.txt())

	info, err = BuildServiceInfo("127.0.0.1:9000", "0.1.0")
	require.NoError(t, err)
	assert.Equal(t, 9000, info.Port)

	for _, bad := range []string{"", ":", ":abc", ":0"} {
		_, err := BuildServiceInfo(bad, "0.1.0")
		assert.Error(t, err, bad)
	}
}

func TestAdvertiser_DisabledIsNoop(t *testing.T) {
	a := NewAdvertiser(&config.DiscoveryConfig{MDNSEnabled: false})
	require.NoError(t, a.Start(ServiceInfo{InstanceName: "x", Port: 8000}))
	assert.False(t, a.IsRunning())
	a.Stop()
}
