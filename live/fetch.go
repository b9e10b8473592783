/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package live

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Seednode/crosswire/crossword"
)

const maxPuzzleSize = 1 << 20

// LoadError reports a puzzle fetch that did not produce a usable puzzle.
type LoadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load %s: unexpected status %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("load %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// FetchPuzzle downloads and validates the puzzle at dataURL. Any failure is
// returned as a *LoadError.
func FetchPuzzle(ctx context.Context, client *http.Client, dataURL string) (crossword.Puzzle, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dataURL, nil)
	if err != nil {
		return crossword.Puzzle{}, &LoadError{URL: dataURL, Err: err}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return crossword.Puzzle{}, &LoadError{URL: dataURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return crossword.Puzzle{}, &LoadError{URL: dataURL, StatusCode: resp.StatusCode}
	}

	puzzle, err := crossword.Decode(io.LimitReader(resp.Body, maxPuzzleSize))
	if err != nil {
		return crossword.Puzzle{}, &LoadError{URL: dataURL, StatusCode: resp.StatusCode, Err: err}
	}

	return puzzle, nil
}
