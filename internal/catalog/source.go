package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

//go:embed data/projects.yaml
var embedded embed.FS

// Source yields a catalog document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

func (EmbeddedSource) Open(context.Context) (io.ReadCloser, error) {
	return embedded.Open("data/projects.yaml")
}

func (EmbeddedSource) String() string { return "embedded:data/projects.yaml" }

// FileSource reads a catalog document from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

func (s FileSource) String() string { return "file:" + s.Path }

// S3GetObjectAPI is the slice of the S3 client the catalog needs.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a catalog document from an S3 object, letting marketing
// publish catalog updates without a redeploy.
type S3Source struct {
	Client S3GetObjectAPI
	Bucket string
	Key    string
}

func (s S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.Client == nil {
		return nil, errors.New("s3 client not configured")
	}
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

func (s S3Source) String() string { return "s3://" + s.Bucket + "/" + s.Key }

// ParseSource maps a CATALOG_SOURCE value to a Source: "embedded" (or empty),
// "s3://bucket/key", or a filesystem path. s3Client is only consulted for s3 URLs.
func ParseSource(value string, s3Client S3GetObjectAPI) (Source, error) {
	value = strings.TrimSpace(value)
	switch {
	case value == "" || value == "embedded":
		return EmbeddedSource{}, nil
	case strings.HasPrefix(value, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(value, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, fmt.Errorf("catalog: invalid s3 source %q", value)
		}
		return S3Source{Client: s3Client, Bucket: bucket, Key: key}, nil
	default:
		return FileSource{Path: strings.TrimPrefix(value, "file:")}, nil
	}
}
