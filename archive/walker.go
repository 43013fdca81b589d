// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/text/encoding"
)

// Entry is a regular file inside archive visited by Walk. Name is entry path
// with non UTF-8 names converted from forced code page (if any).
type Entry struct {
	Archive string
	Name    string
	File    *zip.File
}

// ReadAll returns uncompressed content of the entry.
func (e *Entry) ReadAll() ([]byte, error) {
	r, err := e.File.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open %q in %q: %w", e.Name, e.Archive, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read %q in %q: %w", e.Name, e.Archive, err)
	}
	return data, nil
}

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. If an error is returned, processing stops.
type WalkFunc func(e *Entry) error

// Walk walks all files in the archive with names starting with prefix,
// calling walkFn for each. When cp is not nil names not marked as UTF-8 are
// decoded with it before matching. Entries with path traversal components
// ("..") or absolute paths fail the walk.
func Walk(archive, prefix string, cp encoding.Encoding, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := DecodeName(f, cp)
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := walkFn(&Entry{Archive: archive, Name: name, File: f}); err != nil {
			return err
		}
	}
	return nil
}

// DecodeName returns entry name, converting names of entries without UTF-8
// flag from cp. Name is returned unchanged when conversion fails.
func DecodeName(f *zip.File, cp encoding.Encoding) string {
	name := f.FileHeader.Name
	if cp == nil || !f.FileHeader.NonUTF8 {
		return name
	}
	if n, err := cp.NewDecoder().String(name); err == nil {
		return n
	}
	return name
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
