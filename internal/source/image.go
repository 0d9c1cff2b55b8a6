package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
)

// DirSource treats a directory of scanned images (or a single image
// file) as a document, one image per page, in filename order.
type DirSource struct {
	paths []string
}

// NewDirSource lists the jpg/png files under path.
func NewDirSource(path string) (*DirSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch filepath.Ext(entry.Name()) {
			case ".jpg", ".jpeg", ".png":
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
		if len(paths) == 0 {
			return nil, fmt.Errorf("no images found in %s", path)
		}
	} else {
		paths = []string{path}
	}
	return &DirSource{paths: paths}, nil
}

func (s *DirSource) PageCount() int {
	return len(s.paths)
}

// RenderPage decodes the image for a page. DPI is ignored: scans are
// already rasterized at whatever resolution they were captured.
func (s *DirSource) RenderPage(index int, dpi int) (image.Image, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(s.paths[index]), err)
	}
	return img, nil
}

func (s *DirSource) Close() error {
	return nil
}
