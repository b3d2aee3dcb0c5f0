package ocr

import (
	"context"
	"errors"
	"testing"
)

func TestDocAIConfigFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "proj-123")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "proc-456")

	cfg := DocAIConfigFromEnv()
	if cfg.ProjectID != "proj-123" {
		t.Errorf("ProjectID = %q", cfg.ProjectID)
	}
	if cfg.Location != "us" {
		t.Errorf("Location = %q, want default us", cfg.Location)
	}
	if cfg.ProcessorID != "proc-456" {
		t.Errorf("ProcessorID = %q", cfg.ProcessorID)
	}

	t.Setenv("GOOGLE_CLOUD_LOCATION", "eu")
	if got := DocAIConfigFromEnv().Location; got != "eu" {
		t.Errorf("Location = %q, want eu", got)
	}
}

func TestNewDocAIClientValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  DocAIConfig
	}{
		{"missing project", DocAIConfig{ProcessorID: "proc"}},
		{"missing processor", DocAIConfig{ProjectID: "proj"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocAIClient(context.Background(), tt.cfg)
			if !errors.Is(err, ErrMissingProcessor) {
				t.Fatalf("NewDocAIClient() error = %v, want %v", err, ErrMissingProcessor)
			}
		})
	}
}
