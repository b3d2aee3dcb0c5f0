package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"idverify/internal/config"
	"idverify/internal/imageproc"
	"idverify/internal/logger"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr [image-file]",
	Short: "Run raw OCR and print reconstructed text lines",
	Long: `Run the configured OCR engine on an image and print the reconstructed
reading-order lines, without any document-type rules.

This is the debugging view of the pipeline: the same confidence filter and
line merge the validators use, applied to the image as-is. Useful for
tuning thresholds and inspecting what the rules actually see.`,
	Example: `  # Print reconstructed lines
  idverify ocr card.jpg

  # Keep low-confidence fragments
  idverify ocr card.jpg --min-confidence 0.3

  # Lines plus per-fragment detail as JSON
  idverify ocr card.jpg --json

  # Preview what an enhancement level feeds the validators
  idverify ocr card.jpg --enhance aggressive
  idverify ocr dark-photo.jpg --enhance auto`,
	Args: cobra.ExactArgs(1),
	RunE: runRawOCR,
}

// rawOCROutput is the JSON shape printed with --json.
type rawOCROutput struct {
	FileName  string     `json:"file_name"`
	Engine    string     `json:"engine"`
	Lines     []string   `json:"lines"`
	Fragments []fragment `json:"fragments"`
}

type fragment struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	CenterY    float64 `json:"center_y"`
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	ocrCmd.Flags().Float64("min-confidence", -1, "Confidence floor (default from STUDENT_CONFIDENCE_FLOOR)")
	ocrCmd.Flags().Bool("json", false, "Output as JSON")
	ocrCmd.Flags().Int("timeout", 0, "Processing timeout in seconds (default from OCR_TIMEOUT_SECONDS)")
	ocrCmd.Flags().String("enhance", "none", "Enhancement level: none, mild, medium, aggressive, denoise_line or auto")
}

func runRawOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr-cmd")

	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	enhance, _ := cmd.Flags().GetString("enhance")

	imagePath := args[0]
	if err := validateImageFile(imagePath, log); err != nil {
		return err
	}

	target := imagePath
	if enhance != "" && enhance != string(imageproc.LevelNone) {
		level := imageproc.Level(enhance)
		if enhance == "auto" {
			stats, err := imageproc.ComputeStats(imagePath)
			if err != nil {
				return fmt.Errorf("failed to analyze image: %w", err)
			}
			level = imageproc.ChooseLevel(stats)
			log.Info().
				Float64("brightness", stats.Brightness).
				Float64("contrast", stats.Contrast).
				Str("level", string(level)).
				Msg("Auto-selected enhancement level")
		}
		enhanced, err := imageproc.Enhance(imagePath, level)
		if err != nil {
			return fmt.Errorf("enhancement failed: %w", err)
		}
		if enhanced != imagePath {
			defer imageproc.Cleanup(enhanced)
		}
		target = enhanced
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Configuration invalid")
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if minConfidence < 0 {
		minConfidence = cfg.StudentConfidenceFloor
	}
	if timeoutSecs <= 0 {
		timeoutSecs = cfg.OCRTimeoutSeconds
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	service, closeRec, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRec()

	start := time.Now()
	fragments, lines, err := service.RawLines(ctx, target, minConfidence)
	if err != nil {
		log.Error().Err(err).Str("file", imagePath).Msg("OCR failed")
		return fmt.Errorf("OCR failed: %w", err)
	}

	log.Info().
		Int("fragments", len(fragments)).
		Int("lines", len(lines)).
		Dur("duration", time.Since(start)).
		Msg("Raw OCR completed")

	if jsonOutput {
		out := rawOCROutput{
			FileName:  imagePath,
			Engine:    cfg.OCREngine,
			Lines:     lines,
			Fragments: make([]fragment, 0, len(fragments)),
		}
		for _, f := range fragments {
			out.Fragments = append(out.Fragments, fragment{
				Text:       f.Text,
				Confidence: f.Confidence,
				CenterY:    f.VerticalCenter(),
			})
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(strings.Join(lines, "\n"))
	if len(lines) > 0 {
		fmt.Println()
	}
	return nil
}
