package ini

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// readSource reads the whole input as text. A UTF-8 or UTF-16 byte order
// mark selects the decoding and is dropped; input without one is read as
// UTF-8 with invalid bytes replaced. The result is NFC-normalized so that
// group and host names compare by their visible form.
func readSource(r io.Reader) ([]byte, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, decoder))
	if err != nil {
		return nil, err
	}
	return norm.NFC.Bytes(data), nil
}
