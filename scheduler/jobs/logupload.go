package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pokeproxy/pkg/logger"
)

// LogUploader is the job logger as seen by the upload job.
type LogUploader interface {
	CanUpload() bool
	UploadToS3Bucket(ctx context.Context, objectKey string) error
}

// UploadImportLogs sends the current import log to the bucket.
func UploadImportLogs(uploader LogUploader) error {
	if !uploader.CanUpload() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	key := fmt.Sprintf("imports/%s.log", time.Now().UTC().Format("2006-01-02T15-04-05"))
	if err := uploader.UploadToS3Bucket(ctx, key); err != nil {
		logger.WithModule("jobs").Error("couldn't upload the import log", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}
