/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package crossword

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	ErrInvalidPuzzle = errors.New("invalid puzzle")
	ErrUnknownCell   = errors.New("unknown cell")
	ErrMalformedEdit = errors.New("malformed edit")
)

// ParseEdit decodes one live channel frame. A frame must be a single JSON
// object carrying exactly x, y and c, with c holding at most one character.
func ParseEdit(data []byte) (Edit, error) {
	var frame struct {
		X *int    `json:"x"`
		Y *int    `json:"y"`
		C *string `json:"c"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&frame); err != nil {
		return Edit{}, fmt.Errorf("%w: %w", ErrMalformedEdit, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return Edit{}, fmt.Errorf("%w: trailing data after frame", ErrMalformedEdit)
	}

	if frame.X == nil || frame.Y == nil || frame.C == nil {
		return Edit{}, fmt.Errorf("%w: frame must carry x, y and c", ErrMalformedEdit)
	}

	if utf8.RuneCountInString(*frame.C) > 1 {
		return Edit{}, fmt.Errorf("%w: %q is more than one character", ErrMalformedEdit, *frame.C)
	}

	return Edit{X: *frame.X, Y: *frame.Y, C: normalize(*frame.C)}, nil
}
