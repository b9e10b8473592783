/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package live

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DataSuffix = "/data"
	LiveSuffix = "/live"
)

// Endpoints are the addresses derived from a puzzle page URL.
type Endpoints struct {
	Page string
	Data string
	Live string
}

// ParseEndpoints appends the data and live suffixes to a puzzle page URL,
// switching the live address to ws or wss to match the page's scheme.
func ParseEndpoints(page string) (Endpoints, error) {
	u, err := url.Parse(page)
	if err != nil {
		return Endpoints{}, fmt.Errorf("parse page url: %w", err)
	}

	var liveScheme string

	switch u.Scheme {
	case "http":
		liveScheme = "ws"
	case "https":
		liveScheme = "wss"
	default:
		return Endpoints{}, fmt.Errorf("page url %q: scheme must be http or https", page)
	}

	if u.Host == "" {
		return Endpoints{}, fmt.Errorf("page url %q: missing host", page)
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""

	data := *u
	data.Path += DataSuffix

	live := *u
	live.Scheme = liveScheme
	live.Path += LiveSuffix

	return Endpoints{Page: u.String(), Data: data.String(), Live: live.String()}, nil
}
