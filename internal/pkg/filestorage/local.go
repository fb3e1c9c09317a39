package filestorage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/mosc/eventadmin/internal/pkg/logger"
)

// LocalStorage keeps gallery photos on the local filesystem.
type LocalStorage struct {
	basePath string // root directory for stored files
	baseURL  string // URL prefix the root is served under
}

// NewLocalStorage creates a new LocalStorage instance and makes sure
// basePath exists.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// cleanName rejects names that are empty or contain path separators.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}
	return name, nil
}

// SaveFileWithPath saves a file to a subdirectory under a uuid name.
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, dir string) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, errors.New("no file uploaded")
	}
	dir, err := cleanName(dir)
	if err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := filepath.Join(ls.basePath, dir)
	if err := os.MkdirAll(fullDirPath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDirPath).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	uniqueFilename := uuid.New().String() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	info := &FileInfo{
		Name:     uniqueFilename,
		Path:     dir + "/" + uniqueFilename,
		URL:      ls.url(dir, uniqueFilename),
		FileSize: size,
	}
	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", info.Path).Msg("File saved successfully")
	return info, nil
}

// DeleteFile removes dir/name. Deleting a missing file succeeds.
func (ls *LocalStorage) DeleteFile(dir, name string) error {
	dir, err := cleanName(dir)
	if err != nil {
		return err
	}
	name, err = cleanName(name)
	if err != nil {
		return err
	}

	physicalPath := filepath.Join(ls.basePath, dir, name)
	if err := os.Remove(physicalPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// ListFiles returns the regular files in dir, newest first. A missing
// directory yields an empty list.
func (ls *LocalStorage) ListFiles(dir string) ([]FileInfo, error) {
	dir, err := cleanName(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(ls.basePath, dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []FileInfo{}, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:     e.Name(),
			Path:     dir + "/" + e.Name(),
			URL:      ls.url(dir, e.Name()),
			FileSize: fi.Size(),
			ModTime:  fi.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ModTime.After(files[j].ModTime) })
	return files, nil
}

// ListDirs returns the names of the directories under the root, sorted.
func (ls *LocalStorage) ListDirs() ([]string, error) {
	entries, err := os.ReadDir(ls.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage root: %w", err)
	}
	dirs := []string{}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// BasePath returns the storage root, used for static file serving.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

func (ls *LocalStorage) url(dir, name string) string {
	return ls.baseURL + "/" + dir + "/" + name
}
