package aws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EndpointOverride(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	cfg, err := LoadConfig(context.Background(), "eu-west-1", "http://localhost:4566")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	require.NotNil(t, cfg.EndpointResolverWithOptions)

	ep, err := cfg.EndpointResolverWithOptions.ResolveEndpoint("SES", "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566", ep.URL)

	var _ SESAPI = NewSESClient(cfg)
	var _ SNSAPI = NewSNSClient(cfg)
}

func TestLoadConfig_NoEndpoint(t *testing.T) {
	cfg, err := LoadConfig(context.Background(), "us-east-1", "")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Nil(t, cfg.EndpointResolverWithOptions)
}
