package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hosteldesk/backend/pkg/utils"
)

// DiskImageStore writes uploads into a local directory served at /uploads.
type DiskImageStore struct {
	dir string
}

func NewDiskImageStore(dir string) *DiskImageStore {
	return &DiskImageStore{dir: dir}
}

func (d *DiskImageStore) Dir() string { return d.dir }

func (d *DiskImageStore) Save(name string, content io.Reader) (string, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	fileName := utils.UploadFileName(name)
	f, err := os.Create(filepath.Join(d.dir, fileName))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		return "", err
	}
	return "/uploads/" + fileName, nil
}
