package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionClient implements Recognizer using Google Cloud Vision document
// text detection. Each recognized word becomes one fragment.
type VisionClient struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionClient creates a Vision-backed recognizer with credentials from
// the environment. It expects either GOOGLE_APPLICATION_CREDENTIALS path or
// GOOGLE_CREDENTIALS JSON in env.
func NewVisionClient(ctx context.Context) (*VisionClient, error) {
	const op = "NewVisionClient"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionClient{client: client}, nil
}

// Name returns the engine tag.
func (v *VisionClient) Name() string { return "vision" }

// Recognize runs document text detection and flattens word annotations into
// fragments.
func (v *VisionClient) Recognize(ctx context.Context, imagePath string) ([]Fragment, error) {
	const op = "Recognize"

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to read image %s", imagePath))
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrRequestFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, nil
	}

	imageResp := resp.Responses[0]
	if imageResp.Error != nil {
		return nil, WrapOCRError(op, ErrRequestFailed, fmt.Sprintf("Vision API error: %s", imageResp.Error.Message))
	}

	return convertVisionResponse(imageResp), nil
}

// convertVisionResponse walks the full text annotation down to word level.
// Words without a full four-vertex bounding box are dropped.
func convertVisionResponse(resp *visionpb.AnnotateImageResponse) []Fragment {
	annotation := resp.FullTextAnnotation
	if annotation == nil {
		return nil
	}

	var fragments []Fragment
	for _, page := range annotation.Pages {
		for _, block := range page.Blocks {
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					if word.BoundingBox == nil || len(word.BoundingBox.Vertices) < 4 {
						continue
					}

					var text strings.Builder
					for _, symbol := range word.Symbols {
						text.WriteString(symbol.Text)
					}
					if text.Len() == 0 {
						continue
					}

					var quad Quad
					for i := 0; i < 4; i++ {
						vertex := word.BoundingBox.Vertices[i]
						quad[i] = Point{X: float64(vertex.X), Y: float64(vertex.Y)}
					}

					fragments = append(fragments, Fragment{
						Quad:       quad,
						Text:       text.String(),
						Confidence: float64(word.Confidence),
					})
				}
			}
		}
	}
	return fragments
}

// RecognizeLines returns fragment texts at or above minConfidence, sorted
// by vertical center.
func (v *VisionClient) RecognizeLines(ctx context.Context, imagePath string, minConfidence float64) ([]string, error) {
	fragments, err := v.Recognize(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	return LinesFromFragments(fragments, minConfidence), nil
}

// Close closes the underlying Vision client.
func (v *VisionClient) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
