package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"trigo/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates empty report. When destination cannot be created report
// goes to temporary file.
func (conf *ReporterConfig) Prepare() (*Report, error) {
	f, err := os.Create(conf.Destination)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err != nil {
			return nil, fmt.Errorf("unable to create report: %w", err)
		}
	}
	return &Report{entries: make(map[string]entry), file: f}, nil
}

// entry is either a path on disk (archived on close) or data kept in memory.
type entry struct {
	path  string
	stamp time.Time
	data  []byte
}

// Report collects logs, configuration and per icon artifacts of a single run
// into zip archive. Not safe for concurrent use.
type Report struct {
	entries map[string]entry
	file    *os.File
	workDir string
}

// Name returns absolute name of the report archive.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store registers file or directory to be archived on close under name.
// Nil report ignores the call so callers do not have to check for debug mode.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if old, ok := r.entries[name]; ok && old.path != path {
		panic(fmt.Sprintf("report entry %q already points to %s, refusing %s", name, old.path, path))
	}
	r.entries[name] = entry{path: path}
}

// StoreData registers in-memory data to be archived as file name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	if _, ok := r.entries[name]; ok {
		panic(fmt.Sprintf("report entry %q already exists", name))
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// WorkDir returns temporary directory for per icon debug artifacts. It is
// created on first use, archived under unique run name and removed on close.
// Nil report has no directory.
func (r *Report) WorkDir() (string, error) {
	if r == nil {
		return "", nil
	}
	if len(r.workDir) > 0 {
		return r.workDir, nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("unable to generate run id: %w", err)
	}
	dir, err := os.MkdirTemp("", misc.GetAppName()+"-")
	if err != nil {
		return "", fmt.Errorf("unable to create work directory: %w", err)
	}
	r.Store(misc.GetAppName()+"-"+id.String(), dir)
	r.workDir = dir
	return dir, nil
}

// Close writes the archive and removes work directory.
func (r *Report) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	defer r.file.Close()

	if err := r.write(); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	if len(r.workDir) > 0 {
		if err := os.RemoveAll(r.workDir); err != nil {
			return fmt.Errorf("unable to remove work directory: %w", err)
		}
	}
	return nil
}

func (r *Report) write() (err error) {
	arc := zip.NewWriter(r.file)
	defer func() {
		if e := arc.Close(); err == nil {
			err = e
		}
	}()

	now := time.Now()
	names := slices.Sorted(maps.Keys(r.entries))

	manifest := new(bytes.Buffer)
	for _, name := range names {
		e := r.entries[name]
		stamp, src := e.stamp, e.path
		if stamp.IsZero() {
			stamp = now
		}
		if len(src) == 0 {
			src = "<data>"
		}
		fmt.Fprintf(manifest, "%s\t%s\t%s\n", stamp.UTC().Format(time.RFC3339), name, src)
	}
	if err := addFile(arc, "MANIFEST", now, manifest); err != nil {
		return err
	}

	for _, name := range names {
		e := r.entries[name]
		if len(e.path) == 0 {
			if err := addFile(arc, name, e.stamp, bytes.NewReader(e.data)); err != nil {
				return err
			}
			continue
		}
		if err := addPath(arc, name, e.path); err != nil {
			return err
		}
	}
	return nil
}

// addPath archives regular files found at path under name. Missing paths are
// skipped: logs may not have been created at all.
func addPath(arc *zip.Writer, name, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		return addFile(arc, filepath.ToSlash(filepath.Join(name, rel)), info.ModTime(), f)
	})
}

func addFile(arc *zip.Writer, name string, stamp time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: stamp})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
