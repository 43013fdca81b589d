package generate

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

type zipEntry struct {
	name    string
	data    []byte
	nonUTF8 bool
}

func createZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, NonUTF8: e.nonUTF8})
		if err != nil {
			t.Fatalf("CreateHeader() error = %v", err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	writeFile(t, path, buf.Bytes())
}

func pngData(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func paths(inputs []Input) []string {
	res := make([]string, 0, len(inputs))
	for _, in := range inputs {
		res = append(res, in.Path)
	}
	return res
}

func equalPaths(t *testing.T, got []Input, want []string) {
	t.Helper()
	g := paths(got)
	if len(g) != len(want) {
		t.Fatalf("paths = %q, want %q", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("paths = %q, want %q", g, want)
		}
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	svg := []byte(plainIcon)
	writeFile(t, filepath.Join(dir, "icons", "icon10.svg"), svg)
	writeFile(t, filepath.Join(dir, "icons", "icon2.svg"), svg)
	writeFile(t, filepath.Join(dir, "icons", "icon1.SVG"), svg)
	writeFile(t, filepath.Join(dir, "icons", "readme.txt"), []byte("text"))
	writeFile(t, filepath.Join(dir, "icons", "fake.svg"), pngData(t))
	writeFile(t, filepath.Join(dir, "icons", "sub", "nested.svg"), svg)
	writeFile(t, filepath.Join(dir, "single.svg"), svg)
	createZip(t, filepath.Join(dir, "pack.zip"), []zipEntry{
		{name: "set/b.svg", data: svg},
		{name: "set/a.svg", data: svg},
		{name: "set/notes.md", data: []byte("notes")},
		{name: "other/c.svg", data: svg},
	})

	icons := filepath.Join(dir, "icons")
	tests := []struct {
		name    string
		sources []string
		want    []string
	}{
		{
			name:    "directory",
			sources: []string{icons},
			want: []string{
				filepath.Join(icons, "icon1.SVG"),
				filepath.Join(icons, "icon2.svg"),
				filepath.Join(icons, "icon10.svg"),
				filepath.Join(icons, "sub", "nested.svg"),
			},
		},
		{
			name:    "file",
			sources: []string{filepath.Join(dir, "single.svg")},
			want:    []string{filepath.Join(dir, "single.svg")},
		},
		{
			name:    "glob",
			sources: []string{filepath.Join(icons, "icon*.svg")},
			want:    []string{filepath.Join(icons, "icon2.svg"), filepath.Join(icons, "icon10.svg")},
		},
		{
			name:    "whole archive",
			sources: []string{filepath.Join(dir, "pack.zip")},
			want: []string{
				filepath.Join(dir, "pack.zip", "other", "c.svg"),
				filepath.Join(dir, "pack.zip", "set", "a.svg"),
				filepath.Join(dir, "pack.zip", "set", "b.svg"),
			},
		},
		{
			name:    "path in archive",
			sources: []string{filepath.Join(dir, "pack.zip", "set")},
			want: []string{
				filepath.Join(dir, "pack.zip", "set", "a.svg"),
				filepath.Join(dir, "pack.zip", "set", "b.svg"),
			},
		},
		{
			name:    "sources keep order and duplicates are dropped",
			sources: []string{filepath.Join(dir, "single.svg"), filepath.Join(icons, "icon2.svg"), filepath.Join(dir, "single.svg")},
			want:    []string{filepath.Join(dir, "single.svg"), filepath.Join(icons, "icon2.svg")},
		},
		{
			name:    "empty glob",
			sources: []string{filepath.Join(dir, "*.nothing")},
			want:    []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Collect(context.Background(), tt.sources, nil, newTestLogger(t))
			if err != nil {
				t.Fatalf("Collect() error = %v", err)
			}
			equalPaths(t, got, tt.want)
			for _, in := range got {
				if !bytes.Equal(in.Content, svg) {
					t.Errorf("content of %s = %q", in.Path, in.Content)
				}
			}
		})
	}
}

func TestCollect_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.svg"), []byte(plainIcon))
	writeFile(t, filepath.Join(dir, "image.png"), pngData(t))

	tests := []struct {
		name    string
		source  string
		wantErr error
	}{
		{name: "missing", source: filepath.Join(dir, "missing.svg")},
		{name: "file with tail", source: filepath.Join(dir, "a.svg", "b.svg")},
		{name: "missing in directory", source: filepath.Join(dir, "nope", "b.svg")},
		{name: "binary", source: filepath.Join(dir, "image.png"), wantErr: ErrNotSVG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Collect(context.Background(), []string{tt.source}, nil, newTestLogger(t))
			if err == nil {
				t.Fatal("Collect() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCollect_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.svg"), []byte(plainIcon))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Collect(ctx, []string{dir}, nil, newTestLogger(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Collect() error = %v, want context.Canceled", err)
	}
}

func TestCollect_ArchiveCodePage(t *testing.T) {
	dir := t.TempDir()
	name, err := charmap.CodePage866.NewEncoder().String("иконки/стрелка.svg")
	if err != nil {
		t.Fatalf("encode name: %v", err)
	}
	archive := filepath.Join(dir, "old.zip")
	createZip(t, archive, []zipEntry{{name: name, data: []byte(plainIcon), nonUTF8: true}})

	got, err := Collect(context.Background(), []string{filepath.Join(archive, "иконки")}, charmap.CodePage866, newTestLogger(t))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	equalPaths(t, got, []string{filepath.Join(archive, "иконки", "стрелка.svg")})
}
