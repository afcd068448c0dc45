package twitter

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/andybalholm/brotli"
	json "github.com/json-iterator/go"
)

// decodeBody undoes the Content-Encoding layers of body. Encodings are
// listed in the order they were applied, so they are removed in reverse.
func decodeBody(body []byte, contentEncoding string) ([]byte, error) {
	if contentEncoding == "" {
		return body, nil
	}

	encodings := strings.Split(contentEncoding, ",")
	for i := len(encodings) - 1; i >= 0; i-- {
		var r io.Reader
		src := bytes.NewReader(body)

		switch enc := strings.ToLower(strings.TrimSpace(encodings[i])); enc {
		case "", "identity":
			continue
		case "gzip", "x-gzip":
			zr, err := gzip.NewReader(src)
			if err != nil {
				return nil, fmt.Errorf("gzip: %w", err)
			}
			defer zr.Close()
			r = zr
		case "deflate":
			// Servers disagree on whether deflate means zlib-wrapped or raw.
			if zr, err := zlib.NewReader(src); err == nil {
				defer zr.Close()
				r = zr
			} else {
				r = flate.NewReader(bytes.NewReader(body))
			}
		case "br":
			r = brotli.NewReader(src)
		default:
			return nil, fmt.Errorf("unsupported content encoding %q", enc)
		}

		decoded, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read %s body: %w", strings.TrimSpace(encodings[i]), err)
		}
		body = decoded
	}
	return body, nil
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// DecodedBody returns the response body with its content encoding removed.
func (e *Exchange) DecodedBody() ([]byte, error) {
	body, err := decodeBody(e.Body, e.ContentEncoding())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return body, nil
}

// DecodeJSON decodes the response body into v. A missing body, a non-JSON
// content type, a bad encoding or malformed JSON all fail with
// ErrDecodeFailure.
func (e *Exchange) DecodeJSON(v any) error {
	if ct := e.Header.Get("Content-Type"); ct != "" && !isJSONContentType(ct) {
		return fmt.Errorf("%w: content type %q", ErrDecodeFailure, ct)
	}

	body, err := e.DecodedBody()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrDecodeFailure)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return nil
}
