package twitter

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{"data":{"user":{"result":{"__typename":"User","rest_id":"12"}}}}`

func compress(t *testing.T, encoding string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	var w io.WriteCloser
	switch encoding {
	case "gzip":
		w = gzip.NewWriter(&buf)
	case "zlib":
		w = zlib.NewWriter(&buf)
	case "flate":
		fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
		require.NoError(t, err)
		w = fw
	case "br":
		w = brotli.NewWriter(&buf)
	default:
		t.Fatalf("unknown encoding %q", encoding)
	}
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeBody(t *testing.T) {
	t.Parallel()
	plain := []byte(samplePayload)

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{"identity", "identity", plain},
		{"none", "", plain},
		{"gzip", "gzip", compress(t, "gzip", plain)},
		{"gzip upper case", "GZIP", compress(t, "gzip", plain)},
		{"deflate zlib", "deflate", compress(t, "zlib", plain)},
		{"deflate raw", "deflate", compress(t, "flate", plain)},
		{"brotli", "br", compress(t, "br", plain)},
		{"stacked", "gzip, br", compress(t, "br", compress(t, "gzip", plain))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeBody(tt.body, tt.encoding)
			require.NoError(t, err)
			assert.Equal(t, samplePayload, string(got))
		})
	}
}

func TestDecodeBody_Errors(t *testing.T) {
	t.Parallel()
	_, err := decodeBody([]byte("x"), "compress")
	assert.Error(t, err)

	_, err = decodeBody([]byte("not gzip"), "gzip")
	assert.Error(t, err)
}

func TestIsJSONContentType(t *testing.T) {
	t.Parallel()
	assert.True(t, isJSONContentType("application/json"))
	assert.True(t, isJSONContentType("application/json; charset=utf-8"))
	assert.True(t, isJSONContentType("application/problem+json"))
	assert.False(t, isJSONContentType("text/html; charset=utf-8"))
	assert.False(t, isJSONContentType(""))
}

func TestExchange_DecodeJSON(t *testing.T) {
	t.Parallel()
	ex := &Exchange{
		URL:    "https://x.com/i/api/graphql/abc/UserByScreenName",
		Header: http.Header{"Content-Type": {"application/json"}, "Content-Encoding": {"gzip"}},
		Body:   compress(t, "gzip", []byte(samplePayload)),
	}

	var resp userResponse
	require.NoError(t, ex.DecodeJSON(&resp))
	assert.Equal(t, "12", resp.user().RestID)
	assert.True(t, resp.user().isUser())
}

func TestExchange_DecodeJSON_Failures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		ex   *Exchange
	}{
		{"html content type", &Exchange{
			Header: http.Header{"Content-Type": {"text/html"}},
			Body:   []byte(samplePayload),
		}},
		{"empty body", &Exchange{
			Header: http.Header{"Content-Type": {"application/json"}},
		}},
		{"whitespace body", &Exchange{
			Header: http.Header{"Content-Type": {"application/json"}},
			Body:   []byte("  \n"),
		}},
		{"malformed json", &Exchange{
			Header: http.Header{"Content-Type": {"application/json"}},
			Body:   []byte(`{"data":`),
		}},
		{"bad encoding", &Exchange{
			Header: http.Header{"Content-Type": {"application/json"}, "Content-Encoding": {"gzip"}},
			Body:   []byte(samplePayload),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var resp userResponse
			assert.ErrorIs(t, tt.ex.DecodeJSON(&resp), ErrDecodeFailure)
		})
	}
}

func TestExchange_DecodeJSON_NoContentType(t *testing.T) {
	t.Parallel()
	ex := &Exchange{Body: []byte(samplePayload)}
	var resp userResponse
	require.NoError(t, ex.DecodeJSON(&resp))
	assert.Equal(t, "12", resp.user().RestID)
}
