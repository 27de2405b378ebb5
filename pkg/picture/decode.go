package picture

import (
	"bytes"

	// Raster formats the loader can decode and downscale.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var magicTable = []struct {
	prefix []byte
	mime   string
}{
	{[]byte("\x89PNG\r\n\x1a\n"), "image/png"},
	{[]byte("\xff\xd8\xff"), "image/jpeg"},
	{[]byte("GIF87a"), "image/gif"},
	{[]byte("GIF89a"), "image/gif"},
	{[]byte("BM"), "image/bmp"},
	{[]byte("II*\x00"), "image/tiff"},
	{[]byte("MM\x00*"), "image/tiff"},
}

// sniffMIME detects a picture's media type from its leading bytes.
// SVG is matched by tag since it may start with an XML declaration,
// a doctype or comments. Returns "" for unknown content.
func sniffMIME(data []byte) string {
	for _, m := range magicTable {
		if bytes.HasPrefix(data, m.prefix) {
			return m.mime
		}
	}
	if len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return "image/webp"
	}

	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if bytes.Contains(head, []byte("<svg")) {
		return "image/svg+xml"
	}
	return ""
}

// mimeForFormat maps image.DecodeConfig format names to media types.
func mimeForFormat(format string) string {
	switch format {
	case "png", "jpeg", "gif", "bmp", "tiff", "webp":
		return "image/" + format
	default:
		return ""
	}
}
