package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedDataURI = errors.New("malformed data URI")

// EncodeDataURI renders payload as "data:<mime>;base64,<payload>".
func EncodeDataURI(mimeType string, payload []byte) string {
	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(payload)))
	sb.WriteString("data:")
	sb.WriteString(mimeType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(payload))
	return sb.String()
}

func DecodeDataURI(uri string) (string, []byte, error) {
	mimeType, encoded, err := splitDataURI(uri)
	if err != nil {
		return "", nil, err
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedDataURI, err)
	}
	return mimeType, payload, nil
}

// PayloadSize returns the decoded byte length without decoding. Malformed
// input reports zero.
func PayloadSize(uri string) int64 {
	_, encoded, err := splitDataURI(uri)
	if err != nil {
		return 0
	}
	n := base64.StdEncoding.DecodedLen(len(encoded))
	n -= strings.Count(encoded[max(0, len(encoded)-2):], "=")
	return int64(n)
}

// MimeType returns the declared type of a data URI, or "" when malformed.
func MimeType(uri string) string {
	mimeType, _, err := splitDataURI(uri)
	if err != nil {
		return ""
	}
	return mimeType
}

func splitDataURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", ErrMalformedDataURI
	}
	header, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", ErrMalformedDataURI
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", ErrMalformedDataURI
	}
	return mimeType, encoded, nil
}
