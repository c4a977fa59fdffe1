package aws

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAWSFile(t *testing.T, home, name, content string) {
	t.Helper()
	dir := filepath.Join(home, ".aws")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestGetAWSProfiles(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	writeAWSFile(t, home, "credentials", "[default]\naws_access_key_id = x\n\n[audit]\naws_access_key_id = y\n")
	writeAWSFile(t, home, "config", "[profile prod]\nregion = eu-west-1\n\n[sso-session corp]\nsso_region = us-east-1\n\n[default]\nregion = us-east-1\n")

	repo := NewAWSRepository()
	assert.Equal(t, []string{"audit", "default", "prod"}, repo.GetAWSProfiles())
}

func TestGetAWSProfiles_NoFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	assert.Equal(t, []string{"default"}, NewAWSRepository().GetAWSProfiles())
}

func TestGetServiceClient_UnsupportedService(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_PROFILE", "")

	repo := NewAWSRepository().(*AWSRepositoryImpl)
	_, err := repo.getServiceClient(context.Background(), "", "", "costexplorer")
	assert.EqualError(t, err, "unsupported service: costexplorer")
}

func TestGetServiceClient_CachesClients(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_PROFILE", "")

	repo := NewAWSRepository().(*AWSRepositoryImpl)
	first, err := repo.getServiceClient(context.Background(), "", "eu-west-1", "s3")
	require.NoError(t, err)
	second, err := repo.getServiceClient(context.Background(), "", "eu-west-1", "s3")
	require.NoError(t, err)

	assert.Same(t, first, second)
}
