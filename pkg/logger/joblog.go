package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"pokeproxy/pkg/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectPutter is the part of the s3 client used for log uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// JobLogger keeps the background job log in a temporary file.
// The file can be shipped to a bucket and truncated afterwards.
type JobLogger struct {
	mu       sync.Mutex
	logFile  *os.File
	filePath string
	bucket   string
	s3Client ObjectPutter
}

// NewJobLogger creates the job log with a temporary file.
// Uploads are disabled when no bucket is configured.
func NewJobLogger(cfg config.BucketConfiguration) (*JobLogger, error) {
	f, err := os.CreateTemp("", "import-*.log")
	if err != nil {
		return nil, err
	}

	jl := &JobLogger{
		logFile:  f,
		filePath: f.Name(),
		bucket:   cfg.LogBucket,
	}

	if cfg.LogBucket != "" {
		jl.s3Client = newS3Client(cfg)
	}

	return jl, nil
}

// Create the s3 client from the static bucket credentials.
func newS3Client(cfg config.BucketConfiguration) *s3.Client {
	awsCfg := aws.Config{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.AccessSecret,
				"",
			),
		),
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
}

// Path of the underlying log file.
func (l *JobLogger) Path() string {
	return l.filePath
}

// Log a simple info.
func (l *JobLogger) Infof(format string, args ...any) {
	l.write("[INFO]", format, args...)
}

// Log a error.
func (l *JobLogger) Errorf(format string, args ...any) {
	l.write("[ERROR]", format, args...)
}

// Write something to the logger.
func (l *JobLogger) write(infoType string, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("%-8s %s %s\n", infoType, timestamp, fmt.Sprintf(format, args...))

	l.logFile.WriteString(line)
}

// Clean the file contents.
func (l *JobLogger) CleanFile() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanLocked()
}

func (l *JobLogger) cleanLocked() {
	l.logFile.Truncate(0)
	l.logFile.Seek(0, 0)
}

// CanUpload reports if a bucket was configured.
func (l *JobLogger) CanUpload() bool {
	return l.s3Client != nil
}

// UploadToS3Bucket ships the log to the bucket and truncates it.
// Empty logs are skipped.
func (l *JobLogger) UploadToS3Bucket(ctx context.Context, objectKey string) error {
	if l.s3Client == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := l.logFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() == 0 {
		return nil
	}

	if _, err := l.logFile.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind file: %w", err)
	}

	_, err = l.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(objectKey),
		Body:   l.logFile,
		ACL:    types.ObjectCannedACLPrivate,
	})
	if err != nil {
		// Keep appending after a failed upload.
		l.logFile.Seek(0, 2)
		return fmt.Errorf("failed to upload %s to S3 bucket: %w", objectKey, err)
	}

	l.cleanLocked()

	return nil
}

// Close removes the temporary file.
func (l *JobLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.logFile.Close(); err != nil {
		return err
	}
	return os.Remove(l.filePath)
}
