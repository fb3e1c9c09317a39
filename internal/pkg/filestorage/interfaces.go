package filestorage

import (
	"errors"
	"mime/multipart"
	"time"
)

// ErrInvalidPath is returned for names that would escape the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// FileInfo represents information about a stored file
type FileInfo struct {
	Name     string    // File name inside its directory
	Path     string    // Path relative to the storage root
	URL      string    // Public URL
	FileSize int64     // Size in bytes
	ModTime  time.Time // Last modification
}

// FileStorage defines the gallery storage operations
type FileStorage interface {
	// SaveFileWithPath stores a file under dir with a generated name
	SaveFileWithPath(fileHeader *multipart.FileHeader, dir string) (*FileInfo, error)

	// DeleteFile removes dir/name; missing files are not an error
	DeleteFile(dir, name string) error

	// ListFiles lists the files of dir, newest first
	ListFiles(dir string) ([]FileInfo, error)

	// ListDirs lists the subdirectories of the storage root
	ListDirs() ([]string, error)
}
