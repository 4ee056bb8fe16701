package btc

import (
	"errors"
	"fmt"
	"math"
)

// MaxOutputScriptLength is the longest script a single length byte can
// describe.
const MaxOutputScriptLength = math.MaxUint8

var (
	// ErrScriptTooLong is returned when an output script cannot be prefixed
	// with a single-byte length.
	ErrScriptTooLong = errors.New("output script too long")

	// ErrMalformedScript is returned when a length-prefixed script does not
	// match its length prefix.
	ErrMalformedScript = errors.New("malformed length-prefixed script")
)

// EncodeOutputScript prepends the script with its length encoded on a single
// byte. This is the form in which redeemer output scripts are passed to the
// deposit contract.
func EncodeOutputScript(script []byte) ([]byte, error) {
	if len(script) > MaxOutputScriptLength {
		return nil, fmt.Errorf(
			"script has [%d] bytes, at most [%d] allowed: [%w]",
			len(script),
			MaxOutputScriptLength,
			ErrScriptTooLong,
		)
	}

	prefixed := make([]byte, 0, len(script)+1)
	prefixed = append(prefixed, byte(len(script)))
	prefixed = append(prefixed, script...)

	return prefixed, nil
}

// DecodeOutputScript strips the single-byte length prefix from the script.
func DecodeOutputScript(prefixed []byte) ([]byte, error) {
	if len(prefixed) == 0 {
		return nil, fmt.Errorf("empty script: [%w]", ErrMalformedScript)
	}

	length := int(prefixed[0])
	if length != len(prefixed)-1 {
		return nil, fmt.Errorf(
			"length prefix [%d] does not match script length [%d]: [%w]",
			length,
			len(prefixed)-1,
			ErrMalformedScript,
		)
	}

	script := make([]byte, length)
	copy(script, prefixed[1:])

	return script, nil
}
