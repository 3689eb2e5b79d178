package secretmanager

import (
	"context"
	"fmt"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"

	"github.com/doitintl/hello/lighthouse/common"
)

const (
	latestVersion = "latest"
)

var (
	state = make(map[string][]byte)
	mutex = &sync.Mutex{}
)

// AccessSecret fetches the payload of a secret. The secret is either a full
// version resource name or a bare secret id, which resolves to the latest
// version in the running project.
func AccessSecret(ctx context.Context, secret string) (string, error) {
	data, err := AccessSecretVersion(ctx, resourceName(common.ProjectID, secret))
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// AccessSecretVersion fetches the payload of a secret version, served from
// memory after the first access.
func AccessSecretVersion(ctx context.Context, name string) ([]byte, error) {
	mutex.Lock()
	v, prs := state[name]
	mutex.Unlock()

	if prs {
		return v, nil
	}

	sm, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	defer sm.Close()

	accessSecretVersionRes, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, err
	}

	data := accessSecretVersionRes.GetPayload().GetData()

	mutex.Lock()
	state[name] = data
	mutex.Unlock()

	return data, nil
}

func resourceName(projectID, secret string) string {
	if strings.HasPrefix(secret, "projects/") {
		return secret
	}

	return fmt.Sprintf("projects/%s/secrets/%s/versions/%s", projectID, secret, latestVersion)
}
