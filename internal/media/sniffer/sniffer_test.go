package sniffer

import (
	"net/http"
	"testing"
)

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want MediaType
		ext  string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}, TypeJPEG, ".jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00}, TypePNG, ".png"},
		{"gif", []byte("GIF89a......"), TypeGIF, ".gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP, ".webp"},
		{"heic", []byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00"), TypeHEIC, ".heic"},
		{"bmp", []byte("BM\x00\x00\x00\x00\x00\x00\x00\x00\x36\x00\x00\x00"), TypeBMP, ".bmp"},
		{"text", []byte("hello world"), TypeUnknown, ".bin"},
		{"empty", nil, TypeUnknown, ".bin"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Detect(tc.data)
			if got.Type != tc.want {
				t.Fatalf("type = %s, want %s", got.Type, tc.want)
			}
			if got.Extension() != tc.ext {
				t.Fatalf("ext = %s, want %s", got.Extension(), tc.ext)
			}
			if got.MIME == "" {
				t.Fatal("mime must not be empty")
			}
		})
	}
}

func TestMimeTypeFromHTTP(t *testing.T) {
	h := http.Header{}
	if got := MimeTypeFromHTTP(h); got != "" {
		t.Fatalf("empty header = %q", got)
	}
	h.Set("Content-Type", "image/jpeg; charset=binary")
	if got := MimeTypeFromHTTP(h); got != "image/jpeg" {
		t.Fatalf("got %q", got)
	}
}
