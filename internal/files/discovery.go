package files

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "aqiclean/internal/errors"
	"aqiclean/internal/infrastructure"
	"aqiclean/pkg/contracts/domain"
)

// yearPattern matches the first run of four digits in a file name
var yearPattern = regexp.MustCompile(`\d{4}`)

// ExtractYear returns the leftmost four-digit run in name as a year.
// "0000" is not a year.
func ExtractYear(name string) (int, bool) {
	match := yearPattern.FindString(name)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil || year == 0 {
		return 0, false
	}
	return year, true
}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// DiscoveryResult is the outcome of walking a root directory
type DiscoveryResult struct {
	Cities  []string
	Sheets  []domain.SheetFile
	Skipped []FileInfo // workbooks without a usable year token
}

// Discovery provides file discovery operations
type Discovery struct {
	extension  string
	lockPrefix string
	logger     *slog.Logger
}

// NewDiscovery creates a discovery instance matching workbooks with the
// given extension (case-insensitive) and ignoring names starting with
// lockPrefix.
func NewDiscovery(extension, lockPrefix string, logger *slog.Logger) *Discovery {
	return &Discovery{
		extension:  strings.ToLower(extension),
		lockPrefix: lockPrefix,
		logger:     infrastructure.WithComponent(logger, "discovery"),
	}
}

// ListCities lists the immediate, non-hidden subdirectories of root in
// lexical order. Each subdirectory name is a city.
func (d *Discovery) ListCities(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("root directory %s", root)).
				WithContext("path", root)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read directory %s", root), err)
	}

	var cities []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !isDir(root, entry) {
			continue
		}
		cities = append(cities, name)
	}

	sort.Strings(cities)
	return cities, nil
}

// FindSheets finds the workbooks directly inside cityDir, sorted by name.
// Office lock files are ignored.
func (d *Discovery) FindSheets(cityDir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(cityDir)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read directory %s", cityDir), err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if d.lockPrefix != "" && strings.HasPrefix(name, d.lockPrefix) {
			d.logger.Debug("Ignoring lock file", slog.String("file", name))
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), d.extension) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(cityDir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// Discover enumerates every city under root and resolves the year of each
// of its workbooks. Files without a year are skipped and reported, never
// failing the walk.
func (d *Discovery) Discover(root string) (*DiscoveryResult, error) {
	cities, err := d.ListCities(root)
	if err != nil {
		return nil, err
	}

	result := &DiscoveryResult{Cities: cities}
	for _, city := range cities {
		sheets, err := d.FindSheets(filepath.Join(root, city))
		if err != nil {
			return nil, err
		}

		for _, f := range sheets {
			year, ok := ExtractYear(f.Name)
			if !ok {
				d.logger.Warn("Skipping workbook without year in name",
					slog.String("city", city),
					slog.String("file", f.Path))
				result.Skipped = append(result.Skipped, f)
				continue
			}
			result.Sheets = append(result.Sheets, domain.SheetFile{
				City: city,
				Path: f.Path,
				Name: f.Name,
				Year: year,
			})
		}
	}

	d.logger.Info("Discovery complete",
		slog.String("root", root),
		slog.Int("cities", len(result.Cities)),
		slog.Int("sheets", len(result.Sheets)),
		slog.Int("skipped", len(result.Skipped)))

	return result, nil
}

// isDir reports whether entry is a directory, following symlinks
func isDir(parent string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	return err == nil && info.IsDir()
}
