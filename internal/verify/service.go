// Package verify implements the document-validation pipeline: orientation
// normalization, OCR, line reconstruction, heuristic field extraction and
// rule-based validity scoring for student cards and pharmacist licenses.
//
// Each validation call is a linear pipeline run to completion within one
// request. A Service carries only an injected OCR provider client and
// immutable thresholds, so independent calls may run concurrently. Every
// temporary image artifact produced during a call is deleted before the
// call returns, on every exit path.
//
// Failures never escape as errors from the public Verify methods: a
// provider outage or an undecodable image surfaces as a ValidationResult
// with Valid=false and a diagnostic message, so callers always get a
// uniform structured outcome.
package verify

import (
	"context"

	"github.com/rs/zerolog"

	"idverify/internal/logger"
	"idverify/internal/ocr"
)

// Config holds the pipeline thresholds. The observed deployments disagree
// on several of these values, so they are injected rather than hardcoded.
type Config struct {
	// StudentConfidenceFloor filters fragments for the student-card flow.
	StudentConfidenceFloor float64

	// LicenseConfidenceFloor filters fragments for the license flow.
	LicenseConfidenceFloor float64

	// ProbeConfidenceFloor is the low floor used by cheap orientation
	// probes.
	ProbeConfidenceFloor float64

	// LineMergeThreshold is the vertical-center distance in pixels below
	// which fragments merge into one line.
	LineMergeThreshold float64

	// MinTextLength is the reconstructed-text length at or below which the
	// first OCR pass counts as insufficient and the enhancement fallback
	// search starts.
	MinTextLength int

	// CardMinAspectRatio is the width/height ratio above which an image
	// passes the card-shape test outright.
	CardMinAspectRatio float64

	// TextDensityThreshold is the recognized-text area above which a
	// non-landscape image still passes the card-shape test.
	TextDensityThreshold float64
}

// DefaultConfig returns the threshold set of the latest observed ruleset.
func DefaultConfig() Config {
	return Config{
		StudentConfidenceFloor: 0.8,
		LicenseConfidenceFloor: 0.7,
		ProbeConfidenceFloor:   0.3,
		LineMergeThreshold:     15,
		MinTextLength:          10,
		CardMinAspectRatio:     1.4,
		TextDensityThreshold:   30000,
	}
}

// Service runs document validations against an injected OCR provider.
type Service struct {
	recognizer ocr.Recognizer
	cfg        Config
	log        zerolog.Logger
}

// NewService creates a validation service. The recognizer is shared,
// read-only state; the service is safe for concurrent use.
func NewService(recognizer ocr.Recognizer, cfg Config) *Service {
	return &Service{
		recognizer: recognizer,
		cfg:        cfg,
		log:        logger.WithEngine(recognizer.Name()).With().Str("component", "verify").Logger(),
	}
}

// probe is the cheap low-floor line extraction handed to orientation
// selection.
func (s *Service) probe(ctx context.Context, imagePath string) ([]string, error) {
	return s.recognizer.RecognizeLines(ctx, imagePath, s.cfg.ProbeConfidenceFloor)
}

// RawLines runs recognition on the image as-is and returns the surviving
// fragments together with the reconstructed lines the validators would see
// at the given confidence floor. No orientation handling, no rules.
func (s *Service) RawLines(ctx context.Context, imagePath string, minConfidence float64) ([]ocr.Fragment, []string, error) {
	fragments, err := s.recognizer.Recognize(ctx, imagePath)
	if err != nil {
		return nil, nil, err
	}
	lines := MergeLines(fragments, minConfidence, s.cfg.LineMergeThreshold)
	return ocr.FilterByConfidence(fragments, minConfidence), lines, nil
}

// failureResult builds the uniform overall-failure outcome.
func (s *Service) failureResult(docType DocumentType, message string) *ValidationResult {
	return &ValidationResult{
		Valid:        false,
		DocumentType: docType,
		Fields:       Fields{},
		Message:      message,
		OCREngine:    s.recognizer.Name(),
	}
}
