package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"idverify/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "idverify",
	Short: "idverify - document validation for student cards and pharmacist licenses",
	Long: `idverify validates Korean identity documents from photos.

It runs OCR on the submitted image, reconstructs reading-order text lines,
extracts structured fields with heuristic rules and decides validity per
document type. Supported document types are university student cards
(pharmacy affiliation required) and pharmacist licenses.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("idverify executed")

		fmt.Println("idverify - document validation CLI")
		fmt.Println("Use --help to see available commands and options.")
	},
}

// Execute runs the CLI and returns the process exit code: 0 on success, 2
// when a document was processed but rejected, 1 on any other failure. The
// caller exits, so deferred cleanup inside commands has already run.
func Execute() int {
	log := logger.WithComponent("cmd")

	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errDocumentRejected) {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
	}
	return exitCode(err)
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errDocumentRejected):
		return 2
	default:
		return 1
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
