package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"trigo/archive"
)

// ErrNotSVG is returned for explicitly specified files which are recognized
// as binary content of known type.
var ErrNotSVG = errors.New("not an SVG file")

// sniffLen is enough for every matcher filetype knows about.
const sniffLen = 262

// collector accumulates inputs from all sources.
type collector struct {
	cp   encoding.Encoding
	log  *zap.Logger
	seen map[string]bool
	res  []Input
}

// Collect expands command line sources into inputs. Source could be an SVG
// file, a directory (searched recursively for "*.svg"), a glob pattern or
// a path inside zip archive ("icons.zip/path/in/archive"). Inputs produced
// by a single source are naturally ordered, sources keep their order and
// duplicates are dropped. cp, when not nil, is used to decode non UTF-8
// names in archives.
func Collect(ctx context.Context, sources []string, cp encoding.Encoding, log *zap.Logger) ([]Input, error) {
	c := &collector{cp: cp, log: log, seen: make(map[string]bool)}
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := len(c.res)
		if err := c.source(ctx, src); err != nil {
			return nil, err
		}
		added := c.res[start:]
		sort.SliceStable(added, func(i, j int) bool {
			return natural.Less(added[i].Path, added[j].Path)
		})
		if len(added) == 0 {
			log.Warn("Nothing to process", zap.String("source", src))
		}
	}
	return c.res, nil
}

func (c *collector) source(ctx context.Context, src string) error {
	if _, err := os.Stat(src); err != nil && hasMeta(src) {
		matches, err := filepath.Glob(src)
		if err != nil {
			return fmt.Errorf("bad pattern (%s): %w", src, err)
		}
		sort.Sort(natural.StringSlice(matches))
		for _, m := range matches {
			if err := c.path(ctx, m, false); err != nil {
				return err
			}
		}
		return nil
	}
	return c.path(ctx, src, true)
}

// path determines the input type (directory, archive, or single file) and
// collects accordingly.
func (c *collector) path(ctx context.Context, src string, explicit bool) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))
		if len(head) == 0 {
			break
		}

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return c.dir(ctx, head)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := c.archive(ctx, head, filepath.ToSlash(tail)); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			return nil
		}
		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		data, err := os.ReadFile(head)
		if err != nil {
			return fmt.Errorf("unable to read input: %w", err)
		}
		if kind, binary := sniff(data); binary {
			if explicit {
				return fmt.Errorf("%w (%s): detected %s", ErrNotSVG, head, kind)
			}
			c.log.Debug("Skipping file, recognized as binary", zap.String("file", head), zap.String("type", kind))
			return nil
		}
		c.add(src, data)
		return nil
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// dir walks directory tree finding svg files.
func (c *collector) dir(ctx context.Context, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			c.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() || !isSVGName(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			c.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if kind, binary := sniff(data); binary {
			c.log.Debug("Skipping file, recognized as binary", zap.String("file", path), zap.String("type", kind))
			return nil
		}
		c.add(path, data)
		return nil
	})
}

// archive walks all files inside archive and finds svg files under "prefix".
func (c *collector) archive(ctx context.Context, path, prefix string) error {
	return archive.Walk(path, prefix, c.cp, func(e *archive.Entry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !isSVGName(e.Name) {
			return nil
		}
		data, err := e.ReadAll()
		if err != nil {
			return err
		}
		if kind, binary := sniff(data); binary {
			c.log.Debug("Skipping file in archive, recognized as binary",
				zap.String("archive", e.Archive), zap.String("file", e.Name), zap.String("type", kind))
			return nil
		}
		c.add(filepath.Join(path, filepath.FromSlash(e.Name)), data)
		return nil
	})
}

func (c *collector) add(path string, data []byte) {
	if c.seen[path] {
		c.log.Debug("Skipping duplicate input", zap.String("path", path))
		return
	}
	c.seen[path] = true
	c.res = append(c.res, Input{Path: path, Content: data})
}

func isArchiveFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// sniff reports known binary content.
func sniff(data []byte) (string, bool) {
	if len(data) > sniffLen {
		data = data[:sniffLen]
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", false
	}
	return kind.MIME.Value, true
}

func isSVGName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".svg")
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, `*?[`)
}
