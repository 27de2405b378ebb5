package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/barcodewheel/pkg/pipeline"
	"github.com/matzehuels/barcodewheel/pkg/render"
)

// convertCommand creates the convert command for SVG conversion.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		engineName string
		scale      float64
	)

	cmd := &cobra.Command{
		Use:   "convert [file.svg]",
		Short: "Convert an SVG file to PDF or PNG",
		Long: `Convert an SVG file to PDF or PNG.

Conversion needs an external renderer: rsvg-convert (librsvg) or
headless Chrome. The auto engine tries rsvg-convert first and falls
back to Chrome. Works on any SVG file, not just wheels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			for _, format := range formats {
				if !binaryFormats[format] {
					return fmt.Errorf("convert produces pdf or png, got %q", format)
				}
			}
			return c.runConvert(cmd.Context(), args[0], output, formats, engineName, scale)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format>; '-' for stdout)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", pipeline.FormatPDF, "output formats, comma separated: pdf, png")
	cmd.Flags().StringVar(&engineName, "engine", pipeline.DefaultEngine, "conversion engine: auto (default), rsvg, chrome")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG scale factor")

	return cmd
}

// runConvert reads the SVG once and writes each requested conversion.
func (c *CLI) runConvert(ctx context.Context, input, output string, formats []string, engineName string, scale float64) error {
	svg, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	eng, err := render.NewEngine(engineName)
	if err != nil {
		return err
	}
	c.Logger.Debug("selected conversion engine", "engine", eng.Name())

	if output == pipeName {
		if len(formats) != 1 {
			return fmt.Errorf("writing to stdout requires a single format, got %d", len(formats))
		}
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("refusing to write %s to a terminal (pipe it or use --output)", formats[0])
		}
		data, err := convertTo(ctx, eng, formats[0], svg, scale)
		if err != nil {
			return fmt.Errorf("convert to %s: %w", formats[0], err)
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	base := basePath(output, input)
	single := len(formats) == 1

	for _, format := range formats {
		prog := newProgress(c.Logger)
		data, err := convertTo(ctx, eng, format, svg, scale)
		if err != nil {
			return fmt.Errorf("convert to %s: %w", format, err)
		}

		path := base + "." + format
		if single && output != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		prog.done(fmt.Sprintf("Converted %s", path))
	}
	return nil
}

// convertTo runs one conversion through the engine.
func convertTo(ctx context.Context, eng render.Engine, format string, svg []byte, scale float64) ([]byte, error) {
	switch format {
	case pipeline.FormatPDF:
		return eng.ToPDF(ctx, svg)
	case pipeline.FormatPNG:
		return eng.ToPNG(ctx, svg, scale)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}
