package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/caarlos0/env/v11"
)

// PutObjectAPI is the part of the S3 client used by S3Exporter.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter uploads markup to an S3 bucket.
//
// Example usage:
//
//	client, _ := export.NewS3Client("eu-west-1")
//	exp := export.NewS3Exporter(client, "my-site", "pages/")
//	err := exp.Export(ctx, "index.html", html)
type S3Exporter struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Exporter creates an exporter that writes objects under prefix.
func NewS3Exporter(client PutObjectAPI, bucket, prefix string) *S3Exporter {
	return &S3Exporter{client: client, bucket: bucket, prefix: prefix}
}

// Export uploads html as prefix+name.
func (e *S3Exporter) Export(ctx context.Context, name string, html []byte) error {
	key := path.Join(e.prefix, name)
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(html),
		ContentLength: aws.Int64(int64(len(html))),
		ContentType:   aws.String(ContentType),
		Metadata: map[string]string{
			"export-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return exportError(fmt.Errorf("s3 upload of %s/%s failed: %w", e.bucket, key, err))
	}
	return nil
}

// envCredentials holds static AWS credentials from the standard variables.
type envCredentials struct {
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID,notEmpty"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY,notEmpty"`
	SessionToken    string `env:"AWS_SESSION_TOKEN"`
}

// EnvCredentials reads credentials from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN on every retrieval.
func EnvCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		var c envCredentials
		if err := env.Parse(&c); err != nil {
			return aws.Credentials{}, fmt.Errorf("export: read AWS credentials: %w", err)
		}
		return aws.Credentials{
			AccessKeyID:     c.AccessKeyID,
			SecretAccessKey: c.SecretAccessKey,
			SessionToken:    c.SessionToken,
			Source:          "Environment",
		}, nil
	})
}

// NewS3Client creates an S3 client for region using EnvCredentials.
func NewS3Client(region string) (*s3.Client, error) {
	if region == "" {
		return nil, exportError(fmt.Errorf("export: S3 region is required"))
	}
	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(EnvCredentials()),
	}), nil
}
