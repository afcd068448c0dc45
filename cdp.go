package twitter

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// cdpHeader converts DevTools response headers to an http.Header. DevTools
// joins repeated headers with newlines; they are split back apart here.
func cdpHeader(headers proto.NetworkHeaders) http.Header {
	h := make(http.Header, len(headers))
	for name, value := range headers {
		for _, v := range strings.Split(headerString(value), "\n") {
			h.Add(name, v)
		}
	}
	return h
}

func headerString(v gson.JSON) string {
	if v.Nil() {
		return ""
	}
	return v.Str()
}

// cdpExchange builds an Exchange from a DevTools response and the body
// returned by Network.getResponseBody. DevTools hands out bodies with the
// content encoding already removed, so the header is dropped to match.
func cdpExchange(method string, resp *proto.NetworkResponse, body *proto.NetworkGetResponseBodyResult) (*Exchange, error) {
	raw := []byte(body.Body)
	if body.Base64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body.Body)
		if err != nil {
			return nil, fmt.Errorf("decode base64 body: %w", err)
		}
		raw = decoded
	}

	header := cdpHeader(resp.Headers)
	header.Del("Content-Encoding")

	return &Exchange{
		URL:    resp.URL,
		Method: method,
		Status: resp.Status,
		Header: header,
		Body:   raw,
	}, nil
}
