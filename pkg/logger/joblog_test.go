package logger

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"pokeproxy/pkg/config"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	bodies []string
	keys   []string
	err    error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.bodies = append(f.bodies, string(body))
	f.keys = append(f.keys, *params.Key)
	return &s3.PutObjectOutput{}, nil
}

func newTestJobLogger(t *testing.T, putter ObjectPutter) *JobLogger {
	t.Helper()

	jl, err := NewJobLogger(config.BucketConfiguration{})
	require.NoError(t, err)
	t.Cleanup(func() { jl.Close() })

	if putter != nil {
		jl.bucket = "logs"
		jl.s3Client = putter
	}
	return jl
}

func TestJobLoggerWritesLines(t *testing.T) {
	jl := newTestJobLogger(t, nil)

	jl.Infof("imported pokemon %d", 25)
	jl.Errorf("couldn't import pokemon %d: %v", 26, errors.New("conflict"))

	content, err := os.ReadFile(jl.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "[INFO]")
	assert.Contains(t, string(content), "imported pokemon 25")
	assert.Contains(t, string(content), "[ERROR]")
	assert.Contains(t, string(content), "couldn't import pokemon 26: conflict")
	assert.False(t, jl.CanUpload())
}

func TestJobLoggerUploadWithoutBucketIsNoop(t *testing.T) {
	jl := newTestJobLogger(t, nil)
	jl.Infof("kept")

	require.NoError(t, jl.UploadToS3Bucket(context.Background(), "key"))

	content, err := os.ReadFile(jl.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "kept")
}

func TestJobLoggerUploadTruncates(t *testing.T) {
	putter := &fakePutter{}
	jl := newTestJobLogger(t, putter)

	jl.Infof("first")
	require.NoError(t, jl.UploadToS3Bucket(context.Background(), "imports/1.log"))

	require.Len(t, putter.bodies, 1)
	assert.Contains(t, putter.bodies[0], "first")
	assert.Equal(t, "imports/1.log", putter.keys[0])

	content, err := os.ReadFile(jl.Path())
	require.NoError(t, err)
	assert.Empty(t, content)

	// Nothing new, nothing uploaded.
	require.NoError(t, jl.UploadToS3Bucket(context.Background(), "imports/2.log"))
	assert.Len(t, putter.bodies, 1)
}

func TestJobLoggerUploadFailureKeepsLog(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	jl := newTestJobLogger(t, putter)

	jl.Infof("first")
	err := jl.UploadToS3Bucket(context.Background(), "imports/1.log")
	assert.Error(t, err)

	jl.Infof("second")
	content, err := os.ReadFile(jl.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "first")
	assert.Contains(t, string(content), "second")
}
