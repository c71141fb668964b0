package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/praetorian-inc/linenorm"
	"github.com/praetorian-inc/linenorm/pkg/catalog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// applyConfig copies config-file and environment values under section onto
// the flags of cmd that were not set on the command line.
func applyConfig(cmd *cobra.Command, section string) error {
	var firstErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := section + "." + f.Name
		if f.Changed || !viper.IsSet(key) {
			return
		}
		if err := f.Value.Set(viper.GetString(key)); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("invalid config value for %s: %w", key, err)
		}
	})
	return firstErr
}

// loadCatalog loads the builtin catalog, or a YAML catalog from path, and
// applies the comma-separated include/exclude name filters.
func loadCatalog(path, include, exclude string) (*catalog.Catalog, error) {
	var (
		c   *catalog.Catalog
		err error
	)
	if path != "" {
		c, err = linenorm.LoadCatalogFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading patterns from %s: %w", path, err)
		}
	} else {
		c, err = catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("loading builtin patterns: %w", err)
		}
	}

	if include == "" && exclude == "" {
		return c, nil
	}
	filtered, err := catalog.Filter(c, catalog.FilterConfig{
		Include: catalog.ParseNames(include),
		Exclude: catalog.ParseNames(exclude),
	})
	if err != nil {
		return nil, fmt.Errorf("filtering patterns: %w", err)
	}
	return filtered, nil
}

// colorEnabled resolves --color against the output writer. "auto" colors only
// terminals and honours NO_COLOR.
func colorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("unknown color mode: %s (want auto, always or never)", mode)
	}
}

// palette colors sections by pattern id.
type palette struct {
	colors []*color.Color
	plain  *color.Color
	dim    *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		colors: []*color.Color{
			color.New(color.FgHiBlack),
			color.New(color.FgHiMagenta),
			color.New(color.FgHiCyan),
			color.New(color.FgYellow),
			color.New(color.FgHiRed),
			color.New(color.FgHiBlue),
			color.New(color.FgHiGreen),
			color.New(color.FgWhite),
		},
		plain: color.New(color.Bold),
		dim:   color.New(color.FgHiBlack),
	}

	all := append([]*color.Color{p.plain, p.dim}, p.colors...)
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *palette) section(id uint) *color.Color {
	return p.colors[int(id)%len(p.colors)]
}

// highlight renders text with every section colored by its pattern id.
func (p *palette) highlight(l *linenorm.Line) string {
	var out []byte
	pos := 0
	for _, s := range l.Sections {
		out = append(out, l.Text[pos:s.Start]...)
		out = append(out, p.section(s.PatternID).Sprint(string(l.Text[s.Start:s.End]))...)
		pos = s.End
	}
	out = append(out, l.Text[pos:]...)
	return string(out)
}
