package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "aqiclean/internal/errors"
	"aqiclean/internal/infrastructure"
	"aqiclean/pkg/contracts/domain"
)

// Validator checks inputs and outputs of the pipeline before they are used
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new validator
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   infrastructure.WithComponent(logger, "validator"),
	}
}

// ValidateSheet checks the struct constraints of a parsed year sheet:
// a city, a positive four-digit year and non-empty month headers.
func (v *Validator) ValidateSheet(sheet *domain.RawYearSheet) error {
	if sheet == nil {
		return apperrors.NewAppValidationError("sheet is nil")
	}
	if err := v.validate.Struct(sheet); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.NewAppError(apperrors.ErrTypeValidation, "sheet validation failed", err)
		}

		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		v.logger.Warn("Sheet failed validation",
			slog.String("file", sheet.SourcePath),
			slog.String("fields", strings.Join(fields, ", ")))
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("invalid sheet %s: %s", sheet.SourcePath, strings.Join(fields, ", ")), err).
			WithContext("file", sheet.SourcePath)
	}
	return nil
}

// ValidateOutputPath checks that path can be written as a file without
// touching the filesystem: it must not be a directory, and its nearest
// existing ancestor must be a directory.
func (v *Validator) ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewAppValidationError("output path is empty")
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		v.logger.Error("Output path is a directory", slog.String("path", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("output path %s is a directory, not a file", path))
	case err == nil:
		return nil
	case !os.IsNotExist(err):
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("failed to stat output path %s", path), err)
	}

	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				v.logger.Error("Output parent is not a directory",
					slog.String("path", path),
					slog.String("parent", dir))
				return apperrors.NewAppValidationError(fmt.Sprintf("cannot create %s: %s is not a directory", path, dir))
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return apperrors.NewAppError(apperrors.ErrTypeValidation,
				fmt.Sprintf("failed to stat %s", dir), err)
		}
		if parent := filepath.Dir(dir); parent == dir {
			return nil
		}
	}
}
