package upload

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/fmchong/intramail/internal/client/models"
	"github.com/fmchong/intramail/internal/common"
)

// S3Options configures the direct object-storage leg.
type S3Options struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// S3Uploader puts attachments straight into an S3-compatible bucket and
// returns a descriptor pointing at the public URL.
type S3Uploader struct {
	client *s3.Client
	opts   S3Options
}

func NewS3Uploader(ctx context.Context, opts S3Options) (*S3Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Uploader{client: client, opts: opts}, nil
}

// objectKey shards uploads by date so bucket listings stay navigable.
func objectKey(filename string, now time.Time) string {
	return fmt.Sprintf("%04d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(), uuid.NewString(), path.Ext(filename))
}

func (u *S3Uploader) Upload(ctx context.Context, filename string, data []byte) (models.Attachment, error) {
	key := objectKey(filename, time.Now())

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return models.Attachment{}, fmt.Errorf("%w: put object: %v", common.ErrUnavailable, err)
	}

	return models.Attachment{
		ID:   uuid.NewString(),
		Name: filename,
		Size: models.SizeLabel(int64(len(data))),
		Type: models.ClassifyFile(filename),
		URL:  u.opts.PublicBaseURL + "/" + key,
	}, nil
}
