package generate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tdewolff/parse/v2/strconv"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"trigo/config"
	"trigo/optimize"
	"trigo/state"
)

// Run is "generate" command action.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("generate")

	sources := cmd.Args().Slice()
	if len(sources) == 0 {
		return errors.New("no input source has been specified")
	}

	// flags override configuration only when they were actually specified
	icons := env.Cfg.Icons
	applyFlags(cmd, &icons, log)

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		if err := env.ForceZipCodePage(cp); err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
		} else {
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", env.CodePageName()))
		}
	}

	log.Info("Processing starting", zap.Strings("sources", sources), zap.String("destination", icons.Output))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	count, err := process(ctx, &icons, sources, log)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("%d icons generated successfully", count), zap.String("output", icons.Output))
	return nil
}

// process handles the core generation logic independently of CLI framework.
func process(ctx context.Context, cfg *config.IconsConfig, sources []string, log *zap.Logger) (int, error) {
	env := state.EnvFromContext(ctx)

	inputs, err := Collect(ctx, sources, env.CodePage, log)
	if err != nil {
		return 0, err
	}

	opts := OptionsFromConfig(cfg)
	icons, err := Process(inputs, cfg.Template, &opts, log)
	if err != nil {
		return 0, err
	}
	if err := storeDebug(env.Rpt, inputs, icons); err != nil {
		log.Warn("Unable to store debug artifacts", zap.Error(err))
	}

	texts := make([]string, 0, len(icons))
	values := Values{Count: len(icons), Output: cfg.Output, Names: make([]string, 0, len(icons))}
	for _, icon := range icons {
		texts = append(texts, icon.Text)
		values.Names = append(values.Names, icon.Name)
	}
	header, err := expandTemplate(config.HeaderTemplateFieldName, cfg.Header, values)
	if err != nil {
		return 0, err
	}
	footer, err := expandTemplate(config.FooterTemplateFieldName, cfg.Footer, values)
	if err != nil {
		return 0, err
	}

	if dir := filepath.Dir(cfg.Output); len(dir) > 0 {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("unable to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(cfg.Output, []byte(Assemble(texts, header, footer)), 0644); err != nil {
		return 0, fmt.Errorf("unable to write output: %w", err)
	}
	env.Rpt.Store("result-"+filepath.Base(cfg.Output), cfg.Output)

	if len(cfg.Preview.Destination) > 0 {
		p, err := NewPreviewer(&cfg.Preview, log)
		if err != nil {
			return 0, err
		}
		for _, icon := range icons {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			// previews are optional, broken one does not fail the run
			if _, err := p.Save(icon); err != nil {
				log.Warn("Unable to save preview", zap.String("icon", icon.Path), zap.Error(err))
			}
		}
	}
	return len(icons), nil
}

// OptionsFromConfig converts configuration section to rendering options.
func OptionsFromConfig(cfg *config.IconsConfig) Options {
	return Options{
		Optimize:       optimizeOptions(&cfg.Optimize),
		Postfix:        cfg.Postfix,
		NameStyle:      cfg.NameStyle,
		AccentColor:    cfg.Markdown.AccentColor,
		MarkdownHeight: cfg.Markdown.Height,
	}
}

func optimizeOptions(cfg *config.OptimizeConfig) optimize.Options {
	return optimize.Options{
		Min:         cfg.Min,
		RemoveColor: cfg.RemoveColor,
		RemoveTitle: cfg.RemoveTitle,
		RemoveRoot:  cfg.RemoveRoot,
		RemoveAttrs: cfg.RemoveAttrs,
		Height:      cfg.Height,
		MinWidth:    cfg.MinWidth,
		OffsetX:     cfg.OffsetX,
		OffsetY:     cfg.OffsetY,
	}
}

// storeDebug puts source, resulting tree and generated text of every icon
// into report work directory.
func storeDebug(rpt *config.Report, inputs []Input, icons []*Icon) error {
	if rpt == nil {
		return nil
	}
	dir, err := rpt.WorkDir()
	if err != nil {
		return err
	}
	for i, icon := range icons {
		sub := filepath.Join(dir, fmt.Sprintf("%03d-%s", i+1, config.CleanFileName(icon.Name)))
		if err := os.MkdirAll(sub, 0755); err != nil {
			return err
		}
		files := []struct {
			name string
			data []byte
		}{
			{"source.svg", inputs[i].Content},
			{"tree.txt", []byte(icon.Path + "\n\n" + icon.Result.Dump())},
			{"result.svg", []byte(icon.Result.Markup)},
			{"embed.svg", []byte(icon.Embed)},
			{"output.txt", []byte(icon.Text)},
		}
		for _, f := range files {
			if err := os.WriteFile(filepath.Join(sub, f.name), f.data, 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyFlags(cmd *cli.Command, icons *config.IconsConfig, log *zap.Logger) {
	if cmd.IsSet("out") {
		icons.Output = cmd.String("out")
	}
	if cmd.IsSet("tpl") {
		icons.Template = cmd.String("tpl")
	}
	if cmd.IsSet("postfix") {
		icons.Postfix = cmd.String("postfix")
	}
	if cmd.IsSet("name-style") {
		if style, err := config.ParseNameStyle(cmd.String("name-style")); err != nil {
			log.Warn("Unknown name style requested, ignoring", zap.String("style", cmd.String("name-style")), zap.Error(err))
		} else {
			icons.NameStyle = style
		}
	}
	if cmd.IsSet("preview") {
		icons.Preview.Destination = cmd.String("preview")
	}

	opt := &icons.Optimize
	for name, dst := range map[string]*bool{
		"min":         &opt.Min,
		"removeColor": &opt.RemoveColor,
		"removeTitle": &opt.RemoveTitle,
		"removeRoot":  &opt.RemoveRoot,
	} {
		if cmd.IsSet(name) {
			*dst = cmd.Bool(name)
		}
	}
	for name, dst := range map[string]*float64{
		"height":   &opt.Height,
		"minWidth": &opt.MinWidth,
		"offsetX":  &opt.OffsetX,
		"offsetY":  &opt.OffsetY,
	} {
		if !cmd.IsSet(name) {
			continue
		}
		if v, ok := parseNumber(cmd.String(name)); ok {
			*dst = v
		} else {
			log.Warn("Unable to parse numeric option, ignoring", zap.String("option", name), zap.String("value", cmd.String(name)))
		}
	}
	if cmd.IsSet("removeAttrs") {
		opt.RemoveAttrs = splitList(cmd.StringSlice("removeAttrs"))
	}
}

// parseNumber accepts single finite number surrounded by optional whitespace.
func parseNumber(s string) (float64, bool) {
	b := []byte(strings.TrimSpace(s))
	if len(b) == 0 {
		return 0, false
	}
	v, n := strconv.ParseFloat(b)
	if n != len(b) || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// splitList flattens comma separated values dropping empty ones.
func splitList(values []string) []string {
	var res []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); len(part) > 0 {
				res = append(res, part)
			}
		}
	}
	return res
}
