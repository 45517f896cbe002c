package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "retaileda/internal/errors"
)

// InputExtensions are the spreadsheet formats the loader reads
var InputExtensions = []string{".xlsx", ".xlsm", ".csv"}

// FileValidator checks the files and directories a run reads and writes
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist: %w", path, err)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputFile checks the input spreadsheet before loading. Failures
// are LOAD errors carrying the path.
func (v *FileValidator) ValidateInputFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return apperrors.NewLoadError("cannot open input file", err).
			WithContext("path", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(InputExtensions, ext) {
		return apperrors.NewLoadError(fmt.Sprintf("unsupported file type %q", ext), nil).
			WithContext("path", path)
	}

	// Excel leaves "~$" lock files next to open workbooks.
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewLoadError("input is an Excel lock file", nil).
			WithContext("path", path)
	}
	return nil
}

// ValidateOutputDirectory checks dir exists and is writable. It does not
// create it.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return apperrors.NewRenderError("output directory is not available", err).
			WithContext("directory", dir)
	}
	if !info.IsDir() {
		return apperrors.NewRenderError("output path is not a directory", nil).
			WithContext("directory", dir)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewRenderError("output directory is not writable", err).
			WithContext("directory", dir)
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
