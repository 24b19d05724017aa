package sniffer

import (
	"bytes"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypeJPEG    MediaType = "jpeg"
	TypePNG     MediaType = "png"
	TypeGIF     MediaType = "gif"
	TypeWEBP    MediaType = "webp"
	TypeHEIC    MediaType = "heic"
	TypeBMP     MediaType = "bmp"
	TypeUnknown MediaType = "bin"
)

type Result struct {
	Type MediaType
	MIME string
}

// Extension is the file suffix used when the image is staged on disk.
func (r Result) Extension() string {
	return "." + string(r.Type)
}

var unknown = Result{Type: TypeUnknown, MIME: "application/octet-stream"}

// Detect inspects the leading bytes of data. Content that matches no known
// image signature is reported as TypeUnknown rather than rejected.
func Detect(data []byte) Result {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	switch {
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}
	case isGIF(head):
		return Result{Type: TypeGIF, MIME: "image/gif"}
	case isWEBP(head):
		return Result{Type: TypeWEBP, MIME: "image/webp"}
	case isHEIC(head):
		return Result{Type: TypeHEIC, MIME: "image/heic"}
	case isBMP(head):
		return Result{Type: TypeBMP, MIME: "image/bmp"}
	}
	return unknown
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return bytes.HasPrefix(head, pngMagic)
}

func isGIF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a"))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}

func isHEIC(head []byte) bool {
	if len(head) < 12 || string(head[4:8]) != "ftyp" {
		return false
	}
	switch string(head[8:12]) {
	case "heic", "heix", "mif1", "msf1":
		return true
	}
	return false
}

func isBMP(head []byte) bool {
	return len(head) >= 14 && head[0] == 'B' && head[1] == 'M'
}

// MimeTypeFromHTTP returns the media type of a part header without parameters.
func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}
