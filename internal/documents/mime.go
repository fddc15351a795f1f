package documents

import (
	"github.com/gabriel-vasile/mimetype"
)

// allowedContentTypes are checked against the sniffed bytes, never the client header.
var allowedContentTypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
}

const allowedDescription = "PDF, JPEG or PNG"

// detectContentType returns the canonical content type of data when it is allowed.
func detectContentType(data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	for _, allowed := range allowedContentTypes {
		if detected.Is(allowed) {
			return allowed, true
		}
	}
	return detected.String(), false
}
