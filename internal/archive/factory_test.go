package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ideospace/internal/platform/config"
)

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, config.Archive{Driver: "none"})
	require.ErrorIs(t, err, ErrDisabled)

	st, err := Open(ctx, config.Archive{Driver: "memory"})
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, st.Driver())

	st, err = Open(ctx, config.Archive{Driver: "fs", FSRoot: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, DriverFilesystem, st.Driver())

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	st, err = Open(ctx, config.Archive{Driver: "s3", S3Bucket: "snapshots", S3Region: "us-east-1", S3Endpoint: "http://127.0.0.1:9000", S3PathStyle: true})
	require.NoError(t, err)
	assert.Equal(t, DriverS3, st.Driver())

	_, err = Open(ctx, config.Archive{Driver: "tape"})
	require.ErrorContains(t, err, "unknown archive driver tape")
}
