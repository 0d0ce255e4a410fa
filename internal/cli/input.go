package cli

import (
	"fmt"
	"io"
	"os"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

// InputOptions selects where subject text comes from and how it is decoded.
type InputOptions struct {
	File     string // read from file instead of the argument
	Encoding string // "utf-8" | "utf-16le" | "utf-16be"
	NFC      bool   // normalize to NFC before matching
}

// ValidEncodings defines the accepted --encoding values.
var ValidEncodings = []string{"utf-8", "utf-16le", "utf-16be"}

func decoder(name string) (encoding.Encoding, error) {
	switch name {
	case "", "utf-8":
		return unicode.UTF8, nil
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	}
	return nil, fmt.Errorf("unknown encoding %q: must be one of %v", name, ValidEncodings)
}

// read returns the subject as UTF-8. args holds the optional positional
// input; without it the file or stdin is read.
func (o *InputOptions) read(args []string, stdin io.Reader) ([]byte, error) {
	enc, err := decoder(o.Encoding)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid input options", err)
	}

	var raw []byte
	switch {
	case len(args) > 0:
		raw = []byte(args[0])
	case o.File != "":
		raw, err = os.ReadFile(o.File)
	default:
		raw, err = io.ReadAll(stdin)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "reading input", err)
	}

	text, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "decoding input", err)
	}
	if o.NFC {
		text = norm.NFC.Bytes(text)
	}
	return text, nil
}

// units returns text as UTF-16 code units.
func units(text []byte) []uint16 {
	return utf16.Encode([]rune(string(text)))
}
