package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"

	"github.com/platinummonkey/tally/pkg/storage"
)

func TestArtifactBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		cfg      storage.Config
		expected string
	}{
		{
			name:     "public URL wins",
			cfg:      storage.Config{S3PublicURL: "https://cdn.example.com/reports/", S3Endpoint: "http://minio:9000", S3Bucket: "b"},
			expected: "https://cdn.example.com/reports",
		},
		{
			name:     "custom endpoint uses path style",
			cfg:      storage.Config{S3Endpoint: "http://minio:9000/", S3Bucket: "reports"},
			expected: "http://minio:9000/reports",
		},
		{
			name:     "aws virtual hosted",
			cfg:      storage.Config{S3Bucket: "reports", S3Region: "eu-west-1"},
			expected: "https://reports.s3.eu-west-1.amazonaws.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, artifactBaseURL(tt.cfg))
		})
	}
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, isNotFoundError(&types.NotFound{}))
	assert.True(t, isNotFoundError(fmt.Errorf("head: %w", &types.NoSuchKey{})))
	assert.False(t, isNotFoundError(errors.New("access denied")))
	assert.False(t, isNotFoundError(nil))
}

func TestIsBucketAlreadyExistsError(t *testing.T) {
	assert.True(t, isBucketAlreadyExistsError(&types.BucketAlreadyOwnedByYou{}))
	assert.True(t, isBucketAlreadyExistsError(fmt.Errorf("create: %w", &types.BucketAlreadyExists{})))
	assert.False(t, isBucketAlreadyExistsError(errors.New("boom")))
}
