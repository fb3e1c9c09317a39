package dto

import "time"

// GalleryAlbum is one directory of the public photo gallery.
type GalleryAlbum struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	PhotoCount int    `json:"photoCount"`
	CoverURL   string `json:"coverUrl,omitempty"`
}

// GalleryPhoto is one stored picture.
type GalleryPhoto struct {
	Name       string    `json:"name"`
	Album      string    `json:"album"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}
