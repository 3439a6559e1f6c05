package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appconfig "github.com/whrealtors/realty-web/internal/config"
	"github.com/whrealtors/realty-web/internal/observability/metrics"
	"github.com/whrealtors/realty-web/pkg/logging"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, leadsMetrics, assistantMetrics := setupMetrics()
	if handler == nil || leadsMetrics == nil || assistantMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	leadsMetrics.ObserveCreate("created")
	assistantMetrics.ObserveReply("ramvan-villas", metrics.ReplyGreeting)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `realty_leads_create_total{status="created"} 1`) {
		t.Fatalf("expected create counter to be exported")
	}
	if !strings.Contains(rr.Body.String(), `realty_assistant_replies_total{outcome="greeting",project="ramvan-villas"} 1`) {
		t.Fatalf("expected assistant counter to be exported")
	}
}

func TestProjectTitlesFromCatalog(t *testing.T) {
	cat := loadCatalog(context.Background(), &appconfig.Config{CatalogSource: "embedded"}, logging.New("error"))
	titles := projectTitles(cat)
	if titles == nil {
		t.Fatalf("expected title resolver")
	}
	if title, ok := titles("sunrise-towers"); !ok || title == "" {
		t.Fatalf("expected title for sunrise-towers, got %q %v", title, ok)
	}
	if _, ok := titles("moonrise-towers"); ok {
		t.Fatalf("expected unknown project to miss")
	}
	if projectTitles(nil) != nil {
		t.Fatalf("expected nil resolver without catalog")
	}
}

func TestLoadCatalogFallsBackToEmbedded(t *testing.T) {
	cfg := &appconfig.Config{CatalogSource: "/does/not/exist/projects.yaml"}
	cat := loadCatalog(context.Background(), cfg, logging.New("error"))
	if cat == nil {
		t.Fatalf("expected embedded fallback")
	}
	if _, ok := cat.Lookup("krupal-habitat"); !ok {
		t.Fatalf("expected krupal-habitat in fallback catalog")
	}
}

func TestBedrockClientOnlyForBedrockProvider(t *testing.T) {
	if c := bedrockClient(context.Background(), &appconfig.Config{LLMProvider: "gemini"}, logging.New("error")); c != nil {
		t.Fatalf("expected no bedrock client for gemini provider")
	}

	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		LLMProvider:         "bedrock",
		AWSRegion:           "ap-south-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}
	if c := bedrockClient(context.Background(), cfg, logging.New("error")); c == nil {
		t.Fatalf("expected bedrock client")
	}
}

func TestSESClientOnlyForSESProvider(t *testing.T) {
	if c := sesClient(context.Background(), &appconfig.Config{EmailProvider: "sendgrid"}, logging.New("error")); c != nil {
		t.Fatalf("expected no SES client for sendgrid provider")
	}

	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		EmailProvider:       "ses",
		AWSRegion:           "ap-south-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}
	if c := sesClient(context.Background(), cfg, logging.New("error")); c == nil {
		t.Fatalf("expected SES client")
	}
}
