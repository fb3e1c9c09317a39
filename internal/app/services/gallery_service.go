package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mosc/eventadmin/internal/app/models/dto"
	"github.com/mosc/eventadmin/internal/pkg/apperrors"
	"github.com/mosc/eventadmin/internal/pkg/filestorage"
	"github.com/mosc/eventadmin/internal/pkg/logger"
)

// MaxGalleryPhotoSize is the largest accepted gallery upload.
const MaxGalleryPhotoSize = 10 << 20

var (
	albumNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

	galleryImageTypes = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	}
)

// GalleryService manages the locally stored photo albums shown on the public
// pages.
type GalleryService interface {
	ListAlbums() ([]dto.GalleryAlbum, error)
	ListPhotos(album string) ([]dto.GalleryPhoto, error)
	UploadPhotos(album string, files []*multipart.FileHeader) ([]dto.GalleryPhoto, error)
	DeletePhoto(album, name string) error
}

type galleryServiceImpl struct {
	storage filestorage.FileStorage
}

// NewGalleryService creates a new gallery service instance
func NewGalleryService(storage filestorage.FileStorage) GalleryService {
	return &galleryServiceImpl{storage: storage}
}

// AlbumTitle turns an album directory name into a display title.
func AlbumTitle(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func validateAlbum(album string) error {
	if !albumNamePattern.MatchString(album) {
		return apperrors.NewValidationError("album", "Album names may only contain lowercase letters, digits and dashes")
	}
	return nil
}

func toGalleryPhoto(album string, f filestorage.FileInfo) dto.GalleryPhoto {
	return dto.GalleryPhoto{Name: f.Name, Album: album, URL: f.URL, Size: f.FileSize, UploadedAt: f.ModTime}
}

func (s *galleryServiceImpl) ListAlbums() ([]dto.GalleryAlbum, error) {
	dirs, err := s.storage.ListDirs()
	if err != nil {
		return nil, fmt.Errorf("error listing gallery albums: %w", err)
	}
	albums := make([]dto.GalleryAlbum, 0, len(dirs))
	for _, d := range dirs {
		if !albumNamePattern.MatchString(d) {
			continue
		}
		files, err := s.storage.ListFiles(d)
		if err != nil {
			logger.Warn().Err(err).Str("album", d).Msg("Skipping unreadable gallery album")
			continue
		}
		a := dto.GalleryAlbum{Name: d, Title: AlbumTitle(d), PhotoCount: len(files)}
		if len(files) > 0 {
			a.CoverURL = files[0].URL
		}
		albums = append(albums, a)
	}
	return albums, nil
}

func (s *galleryServiceImpl) ListPhotos(album string) ([]dto.GalleryPhoto, error) {
	if err := validateAlbum(album); err != nil {
		return nil, err
	}
	files, err := s.storage.ListFiles(album)
	if err != nil {
		return nil, fmt.Errorf("error listing album %s: %w", album, err)
	}
	photos := make([]dto.GalleryPhoto, 0, len(files))
	for _, f := range files {
		if galleryImageTypes[strings.ToLower(filepath.Ext(f.Name))] {
			photos = append(photos, toGalleryPhoto(album, f))
		}
	}
	return photos, nil
}

// UploadPhotos stores every file or none: the batch is checked before the
// first file is written.
func (s *galleryServiceImpl) UploadPhotos(album string, files []*multipart.FileHeader) ([]dto.GalleryPhoto, error) {
	if err := validateAlbum(album); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("files", "At least one photo is required")
	}
	for _, fh := range files {
		if !galleryImageTypes[strings.ToLower(filepath.Ext(fh.Filename))] {
			return nil, apperrors.NewValidationError("files", fmt.Sprintf("%s is not a supported image type", fh.Filename))
		}
		if fh.Size > MaxGalleryPhotoSize {
			return nil, apperrors.NewValidationError("files", fmt.Sprintf("%s is larger than 10 MB", fh.Filename))
		}
	}

	photos := make([]dto.GalleryPhoto, 0, len(files))
	for _, fh := range files {
		info, err := s.storage.SaveFileWithPath(fh, album)
		if err != nil {
			return photos, fmt.Errorf("error saving %s: %w", fh.Filename, err)
		}
		photos = append(photos, toGalleryPhoto(album, *info))
	}
	return photos, nil
}

func (s *galleryServiceImpl) DeletePhoto(album, name string) error {
	if err := validateAlbum(album); err != nil {
		return err
	}
	if err := s.storage.DeleteFile(album, name); err != nil {
		if errors.Is(err, filestorage.ErrInvalidPath) {
			return apperrors.NewBadRequestError(fmt.Sprintf("Invalid photo name %q", name))
		}
		return fmt.Errorf("error deleting %s/%s: %w", album, name, err)
	}
	return nil
}
