package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"dubber/internal/config"
	"dubber/internal/logging"
	"dubber/internal/services"
	"dubber/internal/stage"
)

// ObjectPutter is the subset of the S3 client used for publication.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Exporter uploads final videos to an S3 bucket.
type Exporter struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *slog.Logger
}

// New constructs an Exporter over an existing client.
func New(client ObjectPutter, bucket, prefix string, logger *slog.Logger) *Exporter {
	return &Exporter{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logging.NewComponentLogger(logger, "export"),
	}
}

// NewFromConfig loads AWS credentials from the default chain. It returns nil
// when no bucket is configured.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Exporter, error) {
	if !cfg.ExportEnabled() {
		return nil, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region := strings.TrimSpace(cfg.Export.Region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "load aws config", "", err)
	}
	return New(s3.NewFromConfig(awsCfg), cfg.Export.S3Bucket, cfg.Export.S3Prefix, logger), nil
}

// Key returns the object key for a session's file.
func (e *Exporter) Key(sessionID, localPath string) string {
	return path.Join(e.prefix, sessionID, filepath.Base(localPath))
}

// Publish uploads localPath and returns its s3:// URI.
func (e *Exporter) Publish(ctx context.Context, sessionID, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "export", "open", localPath, err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "export", "stat", localPath, err)
	}

	key := e.Key(sessionID, localPath)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "export", "put object", key, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", e.bucket, key)
	logging.WithContext(ctx, e.logger).Info("final video exported",
		logging.String(logging.FieldEventType, "export_complete"),
		logging.String("uri", uri),
		logging.Int64("bytes", info.Size()),
	)
	return uri, nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp4":
		return "video/mp4"
	case ".srt":
		return "application/x-subrip"
	case ".mp3":
		return "audio/mpeg"
	default:
		return "application/octet-stream"
	}
}

// HealthCheck reports the publication target.
func (e *Exporter) HealthCheck(context.Context) stage.Health {
	return stage.Health{Name: "export", Ready: true, Detail: "s3://" + path.Join(e.bucket, e.prefix)}
}
