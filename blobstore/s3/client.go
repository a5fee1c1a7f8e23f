package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client is the subset of *s3.Client the store uses.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var _ Client = (*s3.Client)(nil)

type options struct {
	prefix    string
	region    string
	endpoint  string
	pathStyle bool
	upload    UploadConfig
}

// Option configures New and NewDDB.
type Option func(*options)

// WithPrefix prepends prefix to every key.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithRegion overrides the region from the environment.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// WithEndpoint points the clients at a custom endpoint, e.g. LocalStack.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithPathStyle forces path-style bucket addressing.
func WithPathStyle() Option {
	return func(o *options) { o.pathStyle = true }
}

// WithUploadConfig replaces DefaultUploadConfig.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *options) { o.upload = cfg }
}

func loadConfig(ctx context.Context, opts []Option) (aws.Config, options, error) {
	o := options{upload: DefaultUploadConfig()}
	for _, fn := range opts {
		fn(&o)
	}

	var loaders []func(*config.LoadOptions) error
	if o.region != "" {
		loaders = append(loaders, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, o, fmt.Errorf("s3: load aws config: %w", err)
	}
	return cfg, o, nil
}

func newS3Client(cfg aws.Config, o options) *s3.Client {
	return s3.NewFromConfig(cfg, func(so *s3.Options) {
		so.UsePathStyle = o.pathStyle
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
	})
}

// New creates a store for bucket using the default AWS credential chain.
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	cfg, o, err := loadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return NewStore(newS3Client(cfg, o), bucket, o.prefix, WithUploadConfig(o.upload)), nil
}

// NewDDB creates a commit store for bucket whose CURRENT pointer lives in
// the DynamoDB table. Both clients share one AWS configuration.
func NewDDB(ctx context.Context, bucket, table string, opts ...Option) (*DDBCommitStore, error) {
	cfg, o, err := loadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	store := NewStore(newS3Client(cfg, o), bucket, o.prefix, WithUploadConfig(o.upload))
	ddb := dynamodb.NewFromConfig(cfg, func(do *dynamodb.Options) {
		if o.endpoint != "" {
			do.BaseEndpoint = aws.String(o.endpoint)
		}
	})
	return NewDDBCommitStore(store, ddb, table, store.URI()), nil
}
