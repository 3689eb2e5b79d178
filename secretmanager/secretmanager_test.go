package secretmanager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doitintl/hello/lighthouse/common"
	"github.com/doitintl/hello/lighthouse/config"
)

func TestResourceName(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{
			name:   "bare secret id",
			secret: "pagespeed-api-key",
			want:   "projects/lighthouse-test/secrets/pagespeed-api-key/versions/latest",
		},
		{
			name:   "full resource name",
			secret: "projects/other/secrets/psi/versions/3",
			want:   "projects/other/secrets/psi/versions/3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resourceName("lighthouse-test", tt.secret))
		})
	}
}

func TestAccessSecretVersionCached(t *testing.T) {
	name := "projects/lighthouse-test/secrets/psi/versions/latest"

	mutex.Lock()
	state[name] = []byte("cached-key")
	mutex.Unlock()

	data, err := AccessSecretVersion(context.Background(), name)
	assert.NoError(t, err)
	assert.Equal(t, []byte("cached-key"), data)
}

func TestAccessSecretUsesConfiguredProject(t *testing.T) {
	saved := common.ProjectID
	t.Cleanup(func() { common.ProjectID = saved })

	common.ProjectID = ""

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"projectId": "p", "pubsubTopicId": "launch-lighthouse", "gcs": {"bucketName": "lighthouse-reports"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.ResolveProjectID())

	name := resourceName(common.ProjectID, "psi-key")
	assert.Equal(t, "projects/p/secrets/psi-key/versions/latest", name)

	mutex.Lock()
	state[name] = []byte("psi-value")
	mutex.Unlock()

	key, err := AccessSecret(context.Background(), "psi-key")
	require.NoError(t, err)
	assert.Equal(t, "psi-value", key)
}
