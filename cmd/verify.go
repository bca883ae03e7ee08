package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"addressproof/internal/config"
	"addressproof/internal/logger"
	"addressproof/internal/upload"
	"addressproof/internal/verifier"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [document]",
	Short: "Verify an address-proof document",
	Long: `Read a PDF, JPEG or PNG document with OCR and check that it shows an
address inside the configured region. When --name is given, the document must
also contain the name (at least two of its words, or all of them if shorter).

Only the first page of a PDF is read.

The command exits with status 0 when the document is accepted, 2 when it was
read but rejected, and 1 when it could not be verified at all.

Environment variables:
  OCR_ENGINE - tesseract (default), vision or documentai
  OCR_LANGUAGE - recognition language (default: eng)
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - for Google engines`,
	Example: `  # Check a scanned electricity bill
  addressproof verify bill.pdf

  # Also check the uploader's name
  addressproof verify aadhaar.jpg --name "John Mehta"

  # Full result as JSON including the OCR text
  addressproof verify bill.pdf --json --raw -o result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

// VerifyOutput represents the JSON output structure when --json flag is used
type VerifyOutput struct {
	*verifier.Result
	Message            string `json:"message"`
	FileName           string `json:"file_name"`
	FileSize           int64  `json:"file_size"`
	ContentType        string `json:"content_type"`
	ProcessingDuration string `json:"processing_duration"`
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringP("name", "n", "", "Name the document must contain")
	verifyCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	verifyCmd.Flags().Bool("json", false, "Output as JSON")
	verifyCmd.Flags().Bool("raw", false, "Include the OCR text in the output")
	verifyCmd.Flags().Int("timeout", 120, "Processing timeout in seconds")
}

func runVerify(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("verify")

	name, _ := cmd.Flags().GetString("name")
	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	includeRaw, _ := cmd.Flags().GetBool("raw")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	path := args[0]

	log.Info().
		Str("file", path).
		Bool("name_given", name != "").
		Bool("json", jsonOutput).
		Int("timeout", timeoutSecs).
		Msg("Starting verification")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fileInfo, err := validateDocumentFile(path, cfg.GetUploadPolicy(), log)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", path).
			Msg("Failed to read document")
		return fmt.Errorf("failed to read document: %w", err)
	}
	contentType := upload.DetectContentType(path, data)
	if _, err := cfg.GetUploadPolicy().Validate(contentType, int64(len(data))); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	ctx, cancel := createContextWithTimeout(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	v, engine, err := newVerifier(ctx, cfg, nil, log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close OCR engine")
		}
	}()

	req, err := verifier.NewRequest(data, contentType, name)
	if err != nil {
		return err
	}

	startTime := time.Now()
	result, err := v.Verify(ctx, req)
	if err != nil {
		return handleVerifyError(err, log)
	}

	out := VerifyOutput{
		Result:             result,
		Message:            result.Message(),
		FileName:           filepath.Base(fileInfo.Name()),
		FileSize:           fileInfo.Size(),
		ContentType:        contentType,
		ProcessingDuration: time.Since(startTime).String(),
	}
	if err := outputResult(out, outputPath, jsonOutput, includeRaw, log); err != nil {
		return err
	}

	if !result.IsValid {
		return fmt.Errorf("%w: %s", errDocumentRejected, result.FailureKind)
	}
	return nil
}

// validateDocumentFile checks that the file exists, is a regular file and fits the upload policy
func validateDocumentFile(path string, policy upload.Policy, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", path).
				Msg("Document not found")
			return nil, fmt.Errorf("document not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", path).
				Msg("Permission denied accessing document")
			return nil, fmt.Errorf("permission denied accessing document: %s", path)
		}
		return nil, fmt.Errorf("error accessing document: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", path).
			Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", path, upload.ErrEmpty)
	}
	if fileInfo.Size() > policy.Limit() {
		log.Error().
			Str("file", path).
			Int64("size", fileInfo.Size()).
			Int64("max_size", policy.Limit()).
			Msg("Document exceeds maximum size limit")
		return nil, fmt.Errorf("%s: %w (%d bytes, maximum is %d bytes)", path, upload.ErrTooLarge, fileInfo.Size(), policy.Limit())
	}

	return fileInfo, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling verification")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// handleVerifyError provides user-friendly error messages for verification faults
func handleVerifyError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Verification failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("verification timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("verification was canceled")
	default:
		return fmt.Errorf("verification failed: %w", err)
	}
}

// outputResult writes the verdict as a message or as JSON
func outputResult(out VerifyOutput, outputPath string, jsonOutput, includeRaw bool, log zerolog.Logger) error {
	if !includeRaw {
		stripped := *out.Result
		stripped.RawExtractedText = ""
		out.Result = &stripped
	}

	var data []byte
	if jsonOutput {
		var err error
		data, err = json.MarshalIndent(out, "", "  ")
		if err != nil {
			log.Error().Err(err).Msg("Failed to marshal JSON output")
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		data = append(data, '\n')
	} else {
		text := out.Message + "\n"
		if includeRaw {
			text += "\n=== Extracted Text ===\n\n" + out.RawExtractedText + "\n"
		}
		data = []byte(text)
	}

	if outputPath == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(data)).
		Msg("Verification result written to file")
	return nil
}
