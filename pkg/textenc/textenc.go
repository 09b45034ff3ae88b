package textenc

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Decode converts body from the named character set to UTF-8. An empty,
// UTF-8 or ASCII charset returns the body unchanged.
func Decode(body []byte, charset string) ([]byte, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	switch name {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return body, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}

	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("decode charset %q: %w", charset, err)
	}
	return decoded, nil
}
