package generate

import (
	"strings"

	cli "github.com/urfave/cli/v3"

	"trigo/config"
)

// Flags returns "generate" command flags. Every flag overrides corresponding
// configuration value only when specified.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write generated text to `FILE` (default from configuration: icons.generated.ts)"},
		&cli.StringFlag{Name: "tpl", Usage: "output `TEMPLATE`, supported tokens: $name, $svg, $string, $path, $viewBox, $markdown"},
		&cli.StringFlag{Name: "postfix", Usage: "append `TEXT` to every $name"},
		&cli.StringFlag{Name: "name-style", Usage: "$name `STYLE` (supported styles: " + strings.Join(config.NameStyleNames(), ", ") + ")"},
		&cli.StringFlag{Name: "height", Usage: "resize icons to `SIZE` height"},
		&cli.StringFlag{Name: "minWidth", Usage: "make icons at least `SIZE` wide, content is centered"},
		&cli.StringFlag{Name: "offsetX", Usage: "translate icons horizontally by `SIZE`"},
		&cli.StringFlag{Name: "offsetY", Usage: "translate icons vertically by `SIZE`"},
		&cli.BoolFlag{Name: "min", Value: true, Usage: "minify icons"},
		&cli.BoolFlag{Name: "removeColor", Usage: "replace colors with currentColor"},
		&cli.BoolFlag{Name: "removeTitle", Usage: "remove titles, title attributes are kept as <title> elements"},
		&cli.BoolFlag{Name: "removeRoot", Usage: "remove root <svg> element, its viewBox is available as $viewBox"},
		&cli.StringSliceFlag{Name: "removeAttrs", Usage: "remove attributes matching `PATTERN` ([element:]attribute[:value]), may be repeated or comma separated"},
		&cli.StringFlag{Name: "preview", Usage: "save PNG previews of generated icons to `DIRECTORY`"},
		&cli.StringFlag{Name: "force-zip-cp",
			Usage: "Force `ENCODING` for ALL non UTF-8 file names in processed archives (see IANA.org for character set names)"},
	}
}
