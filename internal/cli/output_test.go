package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{name: "derived from input", output: "", input: "catalog.csv", want: "catalog"},
		{name: "no input no output", output: "", input: "", want: "wheel"},
		{name: "svg extension stripped", output: "out.svg", input: "catalog.csv", want: "out"},
		{name: "pdf extension stripped", output: "deep/dir/out.pdf", input: "", want: "deep/dir/out"},
		{name: "bare output kept", output: "artifacts/out", input: "", want: "artifacts/out"},
		{name: "unknown extension kept", output: "wheel.backup", input: "", want: "wheel.backup"},
		{name: "layout document input", output: "", input: "catalog.layout.json", want: "catalog.layout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := basePath(tt.output, tt.input)
			if got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestOpenOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")

	w, err := openOutput(path)
	if err != nil {
		t.Fatalf("openOutput() error: %v", err)
	}
	if _, err := w.Write([]byte("<svg/>")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("file content = %q, want %q", data, "<svg/>")
	}
}

func TestOpenOutputStdout(t *testing.T) {
	for _, path := range []string{"", pipeName} {
		w, err := openOutput(path)
		if err != nil {
			t.Fatalf("openOutput(%q) error: %v", path, err)
		}
		// Close must not close the real stdout
		if err := w.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	}
}

func TestWriteArtifactsSingleFormat(t *testing.T) {
	out := filepath.Join(t.TempDir(), "my-wheel.svg")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"svg": []byte("<svg/>")},
		formats:   []string{"svg"},
		input:     "catalog.csv",
		output:    out,
		products:  3,
		slices:    3,
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("file content = %q", data)
	}
}

func TestWriteArtifactsMultipleFormats(t *testing.T) {
	base := filepath.Join(t.TempDir(), "wheel")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{
			"svg":  []byte("<svg/>"),
			"json": []byte("{}"),
		},
		formats:  []string{"svg", "json"},
		output:   base,
		products: 2,
		slices:   2,
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	for _, ext := range []string{"svg", "json"} {
		if _, err := os.Stat(base + "." + ext); err != nil {
			t.Errorf("missing %s artifact: %v", ext, err)
		}
	}
}

func TestWriteArtifactsSkipsMissing(t *testing.T) {
	base := filepath.Join(t.TempDir(), "wheel")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"svg": []byte("<svg/>")},
		formats:   []string{"svg", "pdf"},
		output:    base,
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	if _, err := os.Stat(base + ".pdf"); !os.IsNotExist(err) {
		t.Error("absent artifacts should not produce files")
	}
}

func TestWriteArtifactsDefaultsToInputName(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "catalog.csv")

	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"svg": []byte("<svg/>")},
		formats:   []string{"svg"},
		input:     input,
	})
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "catalog.svg")); err != nil {
		t.Errorf("expected catalog.svg next to the input: %v", err)
	}
}

func TestWriteArtifactsStdoutSingleFormatOnly(t *testing.T) {
	err := writeArtifacts(artifactWriteParams{
		artifacts: map[string][]byte{"svg": nil, "json": nil},
		formats:   []string{"svg", "json"},
		output:    pipeName,
	})
	if err == nil {
		t.Fatal("writing two formats to stdout should fail")
	}
}
