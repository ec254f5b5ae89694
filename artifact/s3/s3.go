// Package s3 provides an S3 backed implementation of core.ArtifactStore for
// durable invite persistence across process restarts. Objects are keyed as
// "<prefix>/<invocationID>/<artifactID>"; the bucket must already exist.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/meetingmesh/artifact"
)

// Client is the subset of the S3 API the store depends on.
type Client interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *awss3.ListObjectsV2Input, optFns ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *awss3.DeleteObjectInput, optFns ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
}

// Options configures the S3 store.
type Options struct {
	Bucket string
	// Prefix namespaces all keys, optional.
	Prefix string
	Region string
	// Client overrides the S3 client (tests, S3-compatible endpoints).
	Client Client
}

// Store implements core.ArtifactStore on top of S3. The core interface is
// context-free, so calls use context.Background(); deadline control belongs
// to the caller's surrounding operation.
type Store struct {
	client Client
	opts   Options
}

// New constructs the S3 store, resolving AWS configuration from the
// environment unless a client is supplied.
func New(ctx context.Context, optFns ...func(o *Options)) (*Store, error) {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	client := opts.Client
	if client == nil {
		var cfgOpts []func(*config.LoadOptions) error
		if opts.Region != "" {
			cfgOpts = append(cfgOpts, config.WithRegion(opts.Region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client = awss3.NewFromConfig(cfg)
	}

	return &Store{client: client, opts: opts}, nil
}

func (s *Store) key(invocationID, artifactID string) string {
	return path.Join(s.opts.Prefix, invocationID, artifactID)
}

// Save stores (or overwrites) the artifact bytes for the given invocation and id.
func (s *Store) Save(invocationID, artifactID string, data []byte) error {
	_, err := s.client.PutObject(context.Background(), &awss3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.key(invocationID, artifactID)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("put artifact %s/%s: %w", invocationID, artifactID, err)
	}
	return nil
}

// Get returns the stored artifact bytes or artifact.ErrNotFound.
func (s *Store) Get(invocationID, artifactID string) ([]byte, error) {
	out, err := s.client.GetObject(context.Background(), &awss3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(s.key(invocationID, artifactID)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, artifact.ErrNotFound
		}
		return nil, fmt.Errorf("get artifact %s/%s: %w", invocationID, artifactID, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s/%s: %w", invocationID, artifactID, err)
	}
	return data, nil
}

// List returns the artifact ids stored for the invocation.
func (s *Store) List(invocationID string) ([]string, error) {
	// path.Join drops the trailing separator needed for prefix listing.
	prefix := strings.TrimSuffix(path.Join(s.opts.Prefix, invocationID), "/") + "/"

	ids := []string{}
	var token *string
	for {
		out, err := s.client.ListObjectsV2(context.Background(), &awss3.ListObjectsV2Input{
			Bucket:            aws.String(s.opts.Bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list artifacts %s: %w", invocationID, err)
		}
		for _, obj := range out.Contents {
			ids = append(ids, path.Base(aws.ToString(obj.Key)))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return ids, nil
}

// Delete removes the artifact if present or returns artifact.ErrNotFound.
// S3 deletes are idempotent, so existence is checked first to preserve the
// interface contract.
func (s *Store) Delete(invocationID, artifactID string) error {
	key := s.key(invocationID, artifactID)

	_, err := s.client.HeadObject(context.Background(), &awss3.HeadObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return artifact.ErrNotFound
		}
		return fmt.Errorf("head artifact %s/%s: %w", invocationID, artifactID, err)
	}

	if _, err := s.client.DeleteObject(context.Background(), &awss3.DeleteObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete artifact %s/%s: %w", invocationID, artifactID, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
