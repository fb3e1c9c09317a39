package filestorage

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	_ = w.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestSaveListDelete(t *testing.T) {
	root := t.TempDir()
	ls, err := NewLocalStorage(root, "/gallery-files/")
	if err != nil {
		t.Fatal(err)
	}

	info, err := ls.SaveFileWithPath(fileHeader(t, "Photo.JPG", []byte("jpeg")), "gala-2025")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(info.Name, ".jpg") || info.FileSize != 4 {
		t.Errorf("unexpected info: %+v", info)
	}
	if !strings.HasPrefix(info.URL, "/gallery-files/gala-2025/") {
		t.Errorf("url = %s", info.URL)
	}
	if _, err := os.Stat(filepath.Join(root, "gala-2025", info.Name)); err != nil {
		t.Errorf("file not written: %v", err)
	}

	files, err := ls.ListFiles("gala-2025")
	if err != nil || len(files) != 1 {
		t.Fatalf("ListFiles = %v, %v", files, err)
	}
	dirs, _ := ls.ListDirs()
	if len(dirs) != 1 || dirs[0] != "gala-2025" {
		t.Errorf("dirs = %v", dirs)
	}

	if err := ls.DeleteFile("gala-2025", info.Name); err != nil {
		t.Fatal(err)
	}
	if err := ls.DeleteFile("gala-2025", info.Name); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ls.ListFiles("../etc"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
	if err := ls.DeleteFile("album", "../../x"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
	files, err := ls.ListFiles("missing")
	if err != nil || len(files) != 0 {
		t.Errorf("missing album should be empty, got %v %v", files, err)
	}
}
