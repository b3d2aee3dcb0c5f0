package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"idverify/internal/config"
	"idverify/internal/logger"
	"idverify/internal/ocr"
	"idverify/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate an identity document image",
	Long: `Validate a document photo against the rules for its document type.

The image is normalized (EXIF orientation, trial-OCR rotation), run through
the configured OCR engine, and checked by the document type's keyword and
field rules. The verdict, reconstructed text and extracted fields are
printed; validation never aborts on provider failures, an invalid verdict
with a diagnostic message is returned instead.

Required environment variables depend on the engine (see OCR_ENGINE):
  clova:  CLOVA_OCR_URL, CLOVA_SECRET_KEY
  vision: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS
  docai:  the vision credentials plus GOOGLE_CLOUD_PROJECT,
          GOOGLE_CLOUD_LOCATION, DOCUMENT_AI_PROCESSOR_ID`,
}

var verifyStudentCmd = &cobra.Command{
	Use:   "student [image-file]",
	Short: "Validate a pharmacy student card photo",
	Long: `Validate a university student card photo.

A card is accepted when the text reads as a student card, shows a pharmacy
affiliation, and the image has card shape. When the plain image yields an
invalid verdict or too little text, enhanced variants of the image are
tried and the best outcome wins.`,
	Example: `  # Validate a student card
  idverify verify student card.jpg

  # Machine-readable result
  idverify verify student card.jpg --json

  # Give slow provider calls more time
  idverify verify student card.jpg --timeout 120`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd, args[0], verify.DocumentTypeStudent)
	},
}

var verifyLicenseCmd = &cobra.Command{
	Use:   "license [image-file]",
	Short: "Validate a pharmacist license photo",
	Long: `Validate a pharmacist license photo.

A license is accepted when all required license keywords are present and
the holder name, license number and issue date could all be extracted.`,
	Example: `  # Validate a license
  idverify verify license license.jpg

  # Machine-readable result
  idverify verify license license.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVerify(cmd, args[0], verify.DocumentTypeLicense)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.AddCommand(verifyStudentCmd)
	verifyCmd.AddCommand(verifyLicenseCmd)

	for _, c := range []*cobra.Command{verifyStudentCmd, verifyLicenseCmd} {
		c.Flags().Bool("json", false, "Output the full result as JSON")
		c.Flags().Int("timeout", 0, "Overall timeout in seconds (default from OCR_TIMEOUT_SECONDS)")
	}
}

// errDocumentRejected marks a run that completed but judged the document
// invalid. Execute maps it to a distinct exit code so scripted callers can
// tell a rejection from an operational failure.
var errDocumentRejected = errors.New("document rejected")

func runVerify(cmd *cobra.Command, imagePath string, docType verify.DocumentType) error {
	requestID := uuid.NewString()
	log := logger.WithRequestID(requestID).With().Str("component", "verify-cmd").Logger()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if err := validateImageFile(imagePath, log); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration invalid")
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if timeoutSecs <= 0 {
		// Budget for the whole best-of-N search, not one provider call.
		timeoutSecs = cfg.OCRTimeoutSeconds * 6
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	service, closeRec, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRec()

	log.Info().
		Str("file", imagePath).
		Str("document_type", string(docType)).
		Str("engine", cfg.OCREngine).
		Msg("Starting document validation")

	start := time.Now()
	var result *verify.ValidationResult
	switch docType {
	case verify.DocumentTypeStudent:
		result = service.VerifyStudentCard(ctx, imagePath)
	case verify.DocumentTypeLicense:
		result = service.VerifyLicense(ctx, imagePath)
	default:
		return fmt.Errorf("unknown document type: %s", docType)
	}

	log.Info().
		Bool("valid", result.Valid).
		Dur("duration", time.Since(start)).
		Int("text_length", len(result.Text)).
		Msg("Document validation completed")

	if err := outputResult(result, jsonOutput); err != nil {
		return err
	}
	if !result.Valid {
		// The verdict is already on stdout; keep cobra from printing the
		// sentinel as a command error.
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return errDocumentRejected
	}
	return nil
}

// validateImageFile checks the path points at a plausible image file before
// any provider call is paid for.
func validateImageFile(imagePath string, log zerolog.Logger) error {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", imagePath).Msg("Image file not found")
			return fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", imagePath).Msg("Permission denied accessing image file")
			return fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().Str("file", imagePath).Msg("Path is not a regular file")
		return fmt.Errorf("path is not a regular file: %s", imagePath)
	}
	if fileInfo.Size() == 0 {
		log.Error().Str("file", imagePath).Msg("Image file is empty")
		return fmt.Errorf("image file is empty: %s", imagePath)
	}

	lower := strings.ToLower(imagePath)
	if !strings.HasSuffix(lower, ".jpg") && !strings.HasSuffix(lower, ".jpeg") && !strings.HasSuffix(lower, ".png") {
		log.Warn().Str("file", imagePath).Msg("File does not have a common image extension")
	}
	return nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling validation")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// buildService wires the configured OCR engine into a validation service.
// Provider credentials come straight from the environment; cfg only carries
// the engine choice and call behaviour. The returned closer releases the
// provider client, when it holds one.
func buildService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*verify.Service, func(), error) {
	clovaCfg := ocr.ClovaConfigFromEnv()
	clovaCfg.MaxRetries = cfg.OCRMaxRetries

	engineCfg := ocr.EngineConfig{
		Engine:  cfg.OCREngine,
		Clova:   clovaCfg,
		DocAI:   ocr.DocAIConfigFromEnv(),
		Timeout: time.Duration(cfg.OCRTimeoutSeconds) * time.Second,
	}

	recognizer, err := ocr.NewRecognizer(ctx, engineCfg)
	if err != nil {
		log.Error().Err(err).Str("engine", cfg.OCREngine).Msg("Failed to create OCR client")
		return nil, nil, fmt.Errorf("failed to create OCR client for engine %q: %w", cfg.OCREngine, err)
	}

	closer := func() {
		if c, ok := recognizer.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close OCR client")
			}
		}
	}

	service := verify.NewService(recognizer, verify.Config{
		StudentConfidenceFloor: cfg.StudentConfidenceFloor,
		LicenseConfidenceFloor: cfg.LicenseConfidenceFloor,
		ProbeConfidenceFloor:   cfg.ProbeConfidenceFloor,
		LineMergeThreshold:     cfg.LineMergeThreshold,
		MinTextLength:          cfg.MinTextLength,
		CardMinAspectRatio:     cfg.CardMinAspectRatio,
		TextDensityThreshold:   cfg.TextDensityThreshold,
	})
	return service, closer, nil
}

// outputResult prints a validation result to stdout.
func outputResult(result *verify.ValidationResult, jsonOutput bool) error {
	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	verdict := "VALID"
	if !result.Valid {
		verdict = "INVALID"
	}
	fmt.Printf("Result:   %s (%s, engine %s)\n", verdict, result.DocumentType, result.OCREngine)
	if result.Message != "" {
		fmt.Printf("Message:  %s\n", result.Message)
	}
	if len(result.Fields) > 0 {
		names := make([]string, 0, len(result.Fields))
		for name := range result.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("Fields:")
		for _, name := range names {
			value := result.Fields[name]
			if value == "" {
				value = "-"
			}
			fmt.Printf("  %-14s %s\n", name, value)
		}
	}
	return nil
}
