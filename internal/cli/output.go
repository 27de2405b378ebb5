package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/matzehuels/barcodewheel/pkg/pipeline"
)

// pipeName is the conventional stdout placeholder for --output.
const pipeName = "-"

// defaultBase names output files when no input path or --output gives
// one (e.g. a catalog loaded from MongoDB).
const defaultBase = "wheel"

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	pipeline.FormatSVG:  true,
	pipeline.FormatJSON: true,
	pipeline.FormatPDF:  true,
	pipeline.FormatPNG:  true,
}

// binaryFormats never go to a terminal.
var binaryFormats = map[string]bool{
	pipeline.FormatPDF: true,
	pipeline.FormatPNG: true,
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
// This is used when generating multiple files (e.g., catalog.svg, catalog.pdf).
func basePath(output, input string) string {
	if output == "" {
		if input == "" {
			return defaultBase
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	// Strip known format extensions from output path
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == pipeName {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// artifactWriteParams bundles everything writeArtifacts needs to place
// the rendered outputs and summarize the run.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string // source path the base name falls back to
	output    string // --output value: exact path, base path, or "-"
	cached    bool
	products  int
	slices    int
}

// writeArtifacts writes each requested artifact to disk (or stdout for
// "-") and prints the summary block.
//
// With a single format, --output names the file exactly. With several,
// it acts as a base path and each file gets the format extension.
func writeArtifacts(p artifactWriteParams) error {
	if p.output == pipeName {
		if len(p.formats) != 1 {
			return fmt.Errorf("writing to stdout requires a single format, got %d", len(p.formats))
		}
		format := p.formats[0]
		if binaryFormats[format] && term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("refusing to write %s to a terminal (pipe it or use --output)", format)
		}
		_, err := os.Stdout.Write(p.artifacts[format])
		return err
	}

	base := basePath(p.output, p.input)
	single := len(p.formats) == 1

	printSuccess("Wheel complete")
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}

		path := base + "." + format
		if single && p.output != "" {
			path = p.output
		}

		out, err := openOutput(path)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		printFile(path)
	}
	printStats(p.products, p.slices, p.cached)
	return nil
}
