package usecase

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var formatMIME = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

// MIMEType maps a schema format to the content type served for it.
func MIMEType(format string) string {
	f := strings.ToLower(strings.TrimPrefix(format, "."))
	if m, ok := formatMIME[f]; ok {
		return m
	}
	if strings.Contains(f, "/") {
		return f
	}
	switch f {
	case "pbf", "mvt":
		return "application/vnd.mapbox-vector-tile"
	}
	return "application/octet-stream"
}

// checkFormat sniffs data and compares it to the schema format. Formats
// without a known signature only reject text bodies, which upstream servers
// send as error pages.
func checkFormat(format string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty body, want %s", format)
	}

	detected := mimetype.Detect(data)

	want := MIMEType(format)
	if strings.HasPrefix(want, "image/") {
		if detected.Is(want) {
			return nil
		}
		return fmt.Errorf("got %s, want %s", detected.String(), want)
	}

	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return fmt.Errorf("got %s, want %s", detected.String(), format)
		}
	}
	return nil
}
