package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barcodewheel/pkg/barcode"
	"github.com/matzehuels/barcodewheel/pkg/pipeline"
	renderwheel "github.com/matzehuels/barcodewheel/pkg/render/wheel"
	"github.com/matzehuels/barcodewheel/pkg/upc"
)

// barcodeCommand creates the barcode command for single-symbol output.
func (c *CLI) barcodeCommand() *cobra.Command {
	var (
		output     string
		symbology  string
		backend    string
		foreground string
		background string
	)

	cmd := &cobra.Command{
		Use:   "barcode [data]",
		Short: "Encode a single barcode and write it as SVG",
		Long: `Encode a single barcode and write it as standalone SVG.

UPC-A data is validated and zero-padded the same way catalog UPCs are,
so 'barcode 123' draws the code for 00000000123. Other symbologies take
the data verbatim.

With no --output the SVG goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBarcode(cmd.Context(), args[0], symbology, backend, foreground, background, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&symbology, "symbology", string(barcode.UPCA), "barcode symbology: upca (default), ean13, code128, qr")
	cmd.Flags().StringVar(&backend, "backend", pipeline.DefaultBackend, "barcode backend: auto (default), zint, module")
	cmd.Flags().StringVar(&foreground, "foreground", "", "bar color (default #000000)")
	cmd.Flags().StringVar(&background, "background", "", "quiet-zone color (default #FFFFFF)")

	return cmd
}

// runBarcode encodes one symbol and writes the standalone SVG.
func (c *CLI) runBarcode(ctx context.Context, data, symbology, backend, foreground, background, output string) error {
	sym, err := barcode.ParseSymbology(symbology)
	if err != nil {
		return err
	}

	if sym == barcode.UPCA {
		code, err := upc.Parse(data)
		if err != nil {
			return err
		}
		data = code.String()
	}

	enc, err := barcode.NewEncoder(backend)
	if err != nil {
		return err
	}

	symbol, err := enc.Encode(ctx, sym, data)
	if err != nil {
		return err
	}
	c.Logger.Debug("encoded symbol", "symbology", sym, "rects", len(symbol.Rects))

	svg, err := renderwheel.RenderSymbolSVG(symbol, renderwheel.WithColors(foreground, background))
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	if _, err := out.Write(svg); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if output != "" && output != pipeName {
		printSuccess("Barcode encoded")
		printFile(output)
	}
	return nil
}
