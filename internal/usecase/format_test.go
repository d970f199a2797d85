package usecase

import "testing"

func TestCheckFormat(t *testing.T) {
	jpeg := []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")

	tests := []struct {
		name    string
		format  string
		data    []byte
		wantErr bool
	}{
		{"png", "png", pngTile, false},
		{"png with dot", ".PNG", pngTile, false},
		{"jpeg as jpg", "jpg", jpeg, false},
		{"jpeg for png", "png", jpeg, true},
		{"html for png", "png", []byte("<html>error</html>"), true},
		{"empty", "png", nil, true},
		{"binary vector tile", "pbf", []byte{0x1a, 0x8f, 0x02, 0x0a, 0x05}, false},
		{"json error for vector tile", "pbf", []byte(`{"error":"not found"}`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFormat(tt.format, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkFormat(%q) err = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"png":        "image/png",
		"JPEG":       "image/jpeg",
		"pbf":        "application/vnd.mapbox-vector-tile",
		"image/avif": "image/avif",
		"bin":        "application/octet-stream",
	}
	for in, want := range tests {
		if got := MIMEType(in); got != want {
			t.Errorf("MIMEType(%q) = %q, want %q", in, got, want)
		}
	}
}
