package render

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/districting/internal/districting"
	"github.com/banshee-data/districting/internal/fsutil"
	"github.com/banshee-data/districting/internal/security"
)

// Output writes rendered artefacts under a single directory. Relative names
// are joined to Dir; anything resolving outside Dir is rejected.
type Output struct {
	FS  fsutil.FileSystem
	Dir string
}

// NewOutput returns an Output rooted at dir on the OS filesystem.
func NewOutput(dir string) *Output {
	return &Output{FS: fsutil.OSFileSystem{}, Dir: dir}
}

func (o *Output) resolve(name string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(o.Dir, name)
	}
	if err := security.ValidatePathWithinDirectory(path, o.Dir); err != nil {
		return "", fmt.Errorf("invalid output path %q: %w", name, err)
	}
	return path, nil
}

func (o *Output) write(name string, data []byte) (string, error) {
	path, err := o.resolve(name)
	if err != nil {
		return "", err
	}
	if err := o.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := o.FS.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// WritePNG renders sol with PlotPNG and returns the written path.
func (o *Output) WritePNG(name, title string, sol *districting.Solution) (string, error) {
	var buf bytes.Buffer
	if err := PlotPNG(&buf, title, sol); err != nil {
		return "", err
	}
	return o.write(name, buf.Bytes())
}

// WriteHTML renders sol with HTMLMap and returns the written path.
func (o *Output) WriteHTML(name, title string, sol *districting.Solution) (string, error) {
	var buf bytes.Buffer
	if err := HTMLMap(&buf, title, sol); err != nil {
		return "", err
	}
	return o.write(name, buf.Bytes())
}

// WriteReport writes r as JSON when name ends in .json and as text otherwise.
func (o *Output) WriteReport(name string, r *Report) (string, error) {
	var buf bytes.Buffer
	var err error
	if filepath.Ext(name) == ".json" {
		err = r.WriteJSON(&buf)
	} else {
		err = r.WriteText(&buf)
	}
	if err != nil {
		return "", fmt.Errorf("failed to format report: %w", err)
	}
	return o.write(name, buf.Bytes())
}
