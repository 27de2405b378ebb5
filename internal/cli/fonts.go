package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barcodewheel/pkg/typeset"
)

// fontsCommand creates the fonts command for inspecting font matches.
func (c *CLI) fontsCommand() *cobra.Command {
	var (
		fontFiles []string
		bold      bool
		italic    bool
	)

	cmd := &cobra.Command{
		Use:   "fonts [family...]",
		Short: "Show which font files the given families resolve to",
		Long: `Show which font files the given families resolve to.

Each family is matched against the system fonts the same way 'generate'
matches the --font flag, so this answers "which file will my labels
actually use". Without arguments the generic families sans-serif, serif
and monospace are matched.

The first run scans the system fonts and caches the index; later runs
reuse it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFonts(cmd.Context(), args, fontFiles, bold, italic)
		},
	}

	cmd.Flags().StringArrayVar(&fontFiles, "font-file", nil, "extra font file to index (repeatable)")
	cmd.Flags().BoolVar(&bold, "bold", false, "match the bold face")
	cmd.Flags().BoolVar(&italic, "italic", false, "match the italic face")

	return cmd
}

// runFonts resolves each family and prints the matched face.
func (c *CLI) runFonts(ctx context.Context, families, fontFiles []string, bold, italic bool) error {
	if len(families) == 0 {
		families = []string{"sans-serif", "serif", "monospace"}
	}

	cacheDir, err := fontCacheDir()
	if err != nil {
		return fmt.Errorf("font cache: %w", err)
	}

	prog := newProgress(c.Logger)
	shaper, err := typeset.NewShaper(typeset.Options{
		CacheDir: cacheDir,
		Fonts:    fontFiles,
		Bold:     bold,
		Italic:   italic,
		Logger:   c.Logger,
	})
	if err != nil {
		return fmt.Errorf("scan fonts: %w", err)
	}
	prog.done("Scanned system fonts")

	if ctx.Err() != nil {
		return ctx.Err()
	}

	missing := 0
	for _, family := range families {
		face, err := shaper.Face(family)
		if err != nil {
			printWarning("%s: no match (%v)", family, err)
			missing++
			continue
		}
		printKeyValue(family, face.Family)
		if face.Index > 0 {
			printFile(fmt.Sprintf("%s #%d", face.File, face.Index))
		} else {
			printFile(face.File)
		}
	}

	if missing > 0 {
		return fmt.Errorf("%d of %d families had no match", missing, len(families))
	}
	return nil
}
