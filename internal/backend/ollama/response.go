package ollama

import (
	"compress/flate"
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
)

const acceptEncoding = "gzip, deflate, br"

// readResponse reads the whole body of resp, undoing any content encoding the
// upstream applied.
func readResponse(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))); encoding {
	case "", "identity":
	case "gzip":
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "error creating gzip reader")
		}
		defer gzReader.Close()
		reader = gzReader
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		flReader := flate.NewReader(resp.Body)
		defer flReader.Close()
		reader = flReader
	default:
		return nil, errors.Errorf("unsupported content encoding %q", encoding)
	}

	return io.ReadAll(reader)
}
