package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocAIConfig holds configuration for the Document AI engine.
type DocAIConfig struct {
	// ProjectID is the Google Cloud project where the processor lives.
	ProjectID string

	// Location is the processor location (e.g., "us", "eu").
	Location string

	// ProcessorID identifies the OCR processor to invoke.
	ProcessorID string
}

// DocAIConfigFromEnv reads the Document AI settings from the environment.
func DocAIConfigFromEnv() DocAIConfig {
	location := os.Getenv("GOOGLE_CLOUD_LOCATION")
	if location == "" {
		location = "us"
	}
	return DocAIConfig{
		ProjectID:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
		Location:    location,
		ProcessorID: os.Getenv("DOCUMENT_AI_PROCESSOR_ID"),
	}
}

// DocAIClient implements Recognizer using a Google Document AI OCR
// processor. Each recognized token becomes one fragment.
type DocAIClient struct {
	client        *documentai.DocumentProcessorClient
	processorName string
}

// NewDocAIClient creates a Document AI-backed recognizer. It fails before
// any network call when the project or processor is unset.
func NewDocAIClient(ctx context.Context, cfg DocAIConfig) (*DocAIClient, error) {
	const op = "NewDocAIClient"

	if cfg.ProjectID == "" || cfg.ProcessorID == "" {
		return nil, NewOCRError(op, ErrMissingProcessor, "")
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)

	opts := []option.ClientOption{option.WithEndpoint(endpoint)}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to create Document AI client")
	}

	return &DocAIClient{
		client: client,
		processorName: fmt.Sprintf("projects/%s/locations/%s/processors/%s",
			cfg.ProjectID, cfg.Location, cfg.ProcessorID),
	}, nil
}

// Name returns the engine tag.
func (d *DocAIClient) Name() string { return "docai" }

// Recognize submits the image as a raw document and flattens page tokens
// into fragments.
func (d *DocAIClient) Recognize(ctx context.Context, imagePath string) ([]Fragment, error) {
	const op = "Recognize"

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to read image %s", imagePath))
	}

	req := &documentaipb.ProcessRequest{
		Name: d.processorName,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  imageData,
				MimeType: mimeTypeForImage(imagePath),
			},
		},
		SkipHumanReview: true,
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrRequestFailed, fmt.Sprintf("Document AI call failed: %v", err))
	}

	return convertDocAIDocument(resp.GetDocument()), nil
}

// convertDocAIDocument flattens token layouts into fragments. Tokens
// without a usable four-vertex polygon are dropped.
func convertDocAIDocument(doc *documentaipb.Document) []Fragment {
	if doc == nil {
		return nil
	}

	var fragments []Fragment
	for _, page := range doc.Pages {
		for _, token := range page.Tokens {
			layout := token.GetLayout()
			if layout == nil {
				continue
			}

			text := textForAnchor(doc.Text, layout.GetTextAnchor())
			if strings.TrimSpace(text) == "" {
				continue
			}

			quad, ok := quadForLayout(layout, page.GetDimension())
			if !ok {
				continue
			}

			fragments = append(fragments, Fragment{
				Quad:       quad,
				Text:       strings.TrimSpace(text),
				Confidence: float64(layout.GetConfidence()),
			})
		}
	}
	return fragments
}

// textForAnchor assembles the text behind a layout's anchor segments. The
// anchor indexes are byte offsets into the document text.
func textForAnchor(text string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}
	var sb strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start, end := seg.GetStartIndex(), seg.GetEndIndex()
		if start < 0 || end > int64(len(text)) || start >= end {
			continue
		}
		sb.WriteString(text[start:end])
	}
	return sb.String()
}

// quadForLayout prefers absolute pixel vertices and falls back to
// normalized vertices scaled by the page dimension.
func quadForLayout(layout *documentaipb.Document_Page_Layout, dim *documentaipb.Document_Page_Dimension) (Quad, bool) {
	var quad Quad

	poly := layout.GetBoundingPoly()
	if poly == nil {
		return quad, false
	}

	if verts := poly.GetVertices(); len(verts) >= 4 {
		for i := 0; i < 4; i++ {
			quad[i] = Point{X: float64(verts[i].GetX()), Y: float64(verts[i].GetY())}
		}
		return quad, true
	}

	if verts := poly.GetNormalizedVertices(); len(verts) >= 4 && dim != nil {
		w, h := float64(dim.GetWidth()), float64(dim.GetHeight())
		for i := 0; i < 4; i++ {
			quad[i] = Point{X: float64(verts[i].GetX()) * w, Y: float64(verts[i].GetY()) * h}
		}
		return quad, true
	}

	return quad, false
}

// RecognizeLines returns fragment texts at or above minConfidence, sorted
// by vertical center.
func (d *DocAIClient) RecognizeLines(ctx context.Context, imagePath string, minConfidence float64) ([]string, error) {
	fragments, err := d.Recognize(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	return LinesFromFragments(fragments, minConfidence), nil
}

// Close closes the underlying Document AI client.
func (d *DocAIClient) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}

func mimeTypeForImage(imagePath string) string {
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".png":
		return "image/png"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
