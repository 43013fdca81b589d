package generate

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/srwiley/oksvg"
	"go.uber.org/zap"

	"trigo/config"
	"trigo/utils/images"
)

// Previewer saves raster previews of generated icons.
type Previewer struct {
	dir        string
	height     int
	background color.Color
	log        *zap.Logger
}

// NewPreviewer prepares destination directory. Background is any SVG color
// specification, "none" or empty means transparent.
func NewPreviewer(cfg *config.PreviewConfig, log *zap.Logger) (*Previewer, error) {
	bg, err := oksvg.ParseSVGColor(cfg.Background)
	if err != nil {
		return nil, fmt.Errorf("bad preview background %q: %w", cfg.Background, err)
	}
	if err := os.MkdirAll(cfg.Destination, 0755); err != nil {
		return nil, fmt.Errorf("unable to create preview directory: %w", err)
	}
	return &Previewer{
		dir:        cfg.Destination,
		height:     cfg.Height,
		background: bg,
		log:        log,
	}, nil
}

// Save renders icon preview SVG and writes it as "<name>.png". Returns name of
// the written file.
func (p *Previewer) Save(icon *Icon) (string, error) {
	img, err := images.RasterizeSVG([]byte(icon.Preview), 0, p.height, p.background)
	if err != nil {
		return "", fmt.Errorf("unable to rasterize %s: %w", icon.Path, err)
	}
	data, err := images.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("unable to encode preview for %s: %w", icon.Path, err)
	}
	name := filepath.Join(p.dir, config.CleanFileName(icon.Name)+".png")
	if err := os.WriteFile(name, data, 0644); err != nil {
		return "", fmt.Errorf("unable to write preview: %w", err)
	}
	p.log.Debug("Preview saved", zap.String("icon", icon.Path), zap.String("file", name),
		zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	return name, nil
}
