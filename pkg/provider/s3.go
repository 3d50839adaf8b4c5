package provider

import (
	"context"
	"fmt"
	"io"
	"path"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/gofastercloud/attackgraph/pkg/attack"
)

// s3Getter is the slice of the S3 client the provider needs; tests
// substitute a stub.
type s3Getter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Provider reads a feed object from S3 on every fetch.
type S3Provider struct {
	client s3Getter
	bucket string
	key    string
}

// NewS3Provider resolves AWS credentials from the default chain and
// targets the given object. Region may be empty when the environment
// already supplies one.
func NewS3Provider(ctx context.Context, bucket, key, region string) (*S3Provider, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &S3Provider{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		key:    key,
	}, nil
}

func (p *S3Provider) Name() string {
	return fmt.Sprintf("s3://%s/%s", p.bucket, p.key)
}

func (p *S3Provider) Fetch(ctx context.Context) (*attack.Feed, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &p.bucket,
		Key:    &p.key,
	})
	if err != nil {
		return nil, fmt.Errorf("get s3 object %s: %w", p.Name(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object %s: %w", p.Name(), err)
	}
	return decodeFeed(path.Base(p.key), data)
}
