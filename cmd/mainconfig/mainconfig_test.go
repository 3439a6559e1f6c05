package mainconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	appconfig "github.com/whrealtors/realty-web/internal/config"
	"github.com/whrealtors/realty-web/pkg/logging"
)

func testConfig(endpoint string) *appconfig.Config {
	return &appconfig.Config{
		AWSRegion:           "ap-south-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: endpoint,
	}
}

func TestLoadAWSConfigStaticCredentials(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	awsCfg, err := LoadAWSConfig(context.Background(), testConfig(""))
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}
	if awsCfg.Region != "ap-south-1" {
		t.Fatalf("expected region ap-south-1, got %q", awsCfg.Region)
	}
	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("retrieve credentials: %v", err)
	}
	if creds.AccessKeyID != "test" {
		t.Fatalf("expected static access key, got %q", creds.AccessKeyID)
	}
}

func TestNewS3ClientEndpointOverride(t *testing.T) {
	cfg := testConfig("http://localhost:4566")
	opts := NewS3Client(aws.Config{Region: cfg.AWSRegion}, cfg).Options()
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:4566" {
		t.Fatalf("expected endpoint override, got %q", aws.ToString(opts.BaseEndpoint))
	}
	if !opts.UsePathStyle {
		t.Fatalf("expected path-style addressing with an endpoint override")
	}

	plain := NewS3Client(aws.Config{Region: cfg.AWSRegion}, testConfig("")).Options()
	if plain.BaseEndpoint != nil || plain.UsePathStyle {
		t.Fatalf("expected default addressing without override")
	}
}

func TestNewSESClientEndpointOverride(t *testing.T) {
	cfg := testConfig("http://localhost:4566")
	opts := NewSESClient(aws.Config{Region: cfg.AWSRegion}, cfg).Options()
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:4566" {
		t.Fatalf("expected endpoint override, got %q", aws.ToString(opts.BaseEndpoint))
	}
}

func TestNewBedrockClientEndpointOverride(t *testing.T) {
	cfg := testConfig("http://localhost:4566")
	opts := NewBedrockClient(aws.Config{Region: cfg.AWSRegion}, cfg).Options()
	if aws.ToString(opts.BaseEndpoint) != "http://localhost:4566" {
		t.Fatalf("expected endpoint override, got %q", aws.ToString(opts.BaseEndpoint))
	}
	if opts.Region != "ap-south-1" {
		t.Fatalf("expected region carried over, got %q", opts.Region)
	}
}

func TestLoadCatalogEmbedded(t *testing.T) {
	cat, err := LoadCatalog(context.Background(), &appconfig.Config{CatalogSource: "embedded"}, logging.New("error"))
	if err != nil {
		t.Fatalf("load embedded catalog: %v", err)
	}
	if _, ok := cat.Lookup("sunrise-towers"); !ok {
		t.Fatalf("expected sunrise-towers in embedded catalog")
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	doc := "projects:\n  - id: test-heights\n    title: Test Heights\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := LoadCatalog(context.Background(), &appconfig.Config{CatalogSource: path}, logging.New("error"))
	if err != nil {
		t.Fatalf("load file catalog: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("expected one project, got %d", cat.Len())
	}
}

func TestLoadCatalogInvalidS3Source(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		CatalogSource:      "s3://bucket-only",
		AWSRegion:          "ap-south-1",
		AWSAccessKeyID:     "test",
		AWSSecretAccessKey: "test",
	}
	if _, err := LoadCatalog(context.Background(), cfg, logging.New("error")); err == nil {
		t.Fatalf("expected error for s3 source without key")
	}
}
