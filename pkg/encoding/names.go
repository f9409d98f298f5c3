// Package encoding converts names from legacy 8-bit and CJK text encodings to UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for an encoding label that is not recognized.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// Decoder converts one name to UTF-8.
type Decoder func(string) string

// NewDecoder returns a Decoder for a WHATWG encoding label such as
// "euc-kr", "shift_jis", "gbk" or "windows-1252".
// An empty label or "utf-8" returns a nil Decoder: names are used as-is.
func NewDecoder(label string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return nil, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	return func(s string) string {
		return ToUTF8(s, enc)
	}, nil
}

// ToUTF8 decodes s from enc. Strings that are already valid UTF-8 are kept,
// and input enc cannot decode is returned unchanged.
func ToUTF8(s string, enc encoding.Encoding) string {
	if utf8.ValidString(s) {
		return s
	}
	result, _, err := transform.String(enc.NewDecoder(), s)
	if err != nil {
		return s
	}
	return result
}
