package bill

import (
	"bytes"
	"io"

	"github.com/h2non/filetype"
	"github.com/samber/lo"
)

// acceptedContentTypes are the only receipt types a bill can carry.
// Matching is exact: "image/JPEG" is not accepted.
var acceptedContentTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif"}

// IsAcceptable reports whether a declared content type is an accepted receipt picture
func IsAcceptable(contentType string) bool {
	return lo.Contains(acceptedContentTypes, contentType)
}

// sniffHeaderSize is how many leading bytes filetype needs to identify a picture
const sniffHeaderSize = 262

// sniffPicture reads the leading bytes of body and reports whether they are a
// picture of an accepted type. It returns a reader yielding the full content.
func sniffPicture(body io.Reader) (bool, io.Reader, error) {
	head := make([]byte, sniffHeaderSize)
	n, err := io.ReadFull(body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, nil, err
	}
	head = head[:n]

	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return false, io.MultiReader(bytes.NewReader(head), body), nil
	}
	return IsAcceptable(kind.MIME.Value), io.MultiReader(bytes.NewReader(head), body), nil
}
