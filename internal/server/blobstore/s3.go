// Package blobstore persists the payload files of accepted uploads in an
// S3-compatible object store, laid out like an archive pool.
package blobstore

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/dpetrovs/archivegate/internal/server/config"
)

// Store is the write side of the pool.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader) error
}

// putObjectAPI is the slice of the S3 client the store needs.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	config *sc.Config
	client putObjectAPI
}

func NewS3Store(config *sc.Config) *S3Store {
	return &S3Store{config: config}
}

// PoolKey builds the pool path for a file of the given source package,
// e.g. "main/h/hello/hello_1.0-1.dsc". Sources named lib* get the
// four-character prefix directory the pool layout uses for them.
func PoolKey(component, source, filename string) string {
	prefix := source[:1]
	if strings.HasPrefix(source, "lib") && len(source) > 3 {
		prefix = source[:4]
	}
	return path.Join(component, prefix, source, filename)
}

func (s *S3Store) getClient() (putObjectAPI, error) {
	if s.client != nil {
		return s.client, nil
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return s.client, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body io.Reader) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}

	bucket := s.config.S3Bucket

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   body,
	})

	return err
}
