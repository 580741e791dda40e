package parser

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	errInvalidUTF8  = errors.New("invalid utf-8 byte sequence")
	errControlChars = errors.New("decoded text contains C1 control or replacement characters")
)

// Strategy is one way of turning source bytes into text.
type Strategy struct {
	Name       string
	Permissive bool
	Decode     func([]byte) (string, error)
}

// DefaultStrategies returns the strict decode chain followed by the permissive pass.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "utf-8", Decode: decodeUTF8},
		{Name: "latin-1", Decode: singleByte(charmap.ISO8859_1)},
		{Name: "iso-8859-1", Decode: singleByte(charmap.ISO8859_1)},
		{Name: "cp1252", Decode: singleByte(charmap.Windows1252)},
		{Name: "utf-8 (ignore errors)", Permissive: true, Decode: decodeUTF8Lossy},
	}
}

func stripBOM(b []byte) ([]byte, error) {
	return unicode.UTF8BOM.NewDecoder().Bytes(b)
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errInvalidUTF8
	}
	out, err := stripBOM(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeUTF8Lossy(b []byte) (string, error) {
	text := strings.ToValidUTF8(string(b), "")
	return strings.TrimPrefix(text, "\ufeff"), nil
}

// singleByte decodes with a code page and rejects output that only makes
// sense as a misread of another encoding.
func singleByte(cm *charmap.Charmap) func([]byte) (string, error) {
	return func(b []byte) (string, error) {
		out, err := cm.NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		text := string(out)
		for _, r := range text {
			if (r >= 0x80 && r <= 0x9f) || r == utf8.RuneError {
				return "", errControlChars
			}
		}
		return text, nil
	}
}
