// Package iptv parses M3U playlist documents into channel entries.
package iptv

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"
)

var (
	reTvgName    = regexp.MustCompile(`tvg-name="([^"]*)"`)
	reTvgLogo    = regexp.MustCompile(`tvg-logo="([^"]*)"`)
	reTvgCountry = regexp.MustCompile(`tvg-country="([^"]*)"`)
	reGroup      = regexp.MustCompile(`group-title="([^"]*)"`)
	reCommaName  = regexp.MustCompile(`,([^\n\r\t]*)$`)
)

// ErrNoName is returned internally for EXTINF lines that carry no usable name.
var ErrNoName = errors.New("no name from EXTINF")

// Entry is one channel parsed out of a playlist.
type Entry struct {
	Name        string
	StreamURL   string
	GroupTitle  string
	LogoURL     string
	CountryCode string
}

// ParseM3U reads an M3U playlist from r and returns its channel entries.
// EXTINF lines without a following URL, and URL lines without a preceding
// EXTINF, are skipped as malformed.
func ParseM3U(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	// Some playlists carry very long EXTINF lines.
	const maxSize = 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxSize)

	var extinfLine string
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(strings.ToUpper(trimmed), "#EXTINF"):
			extinfLine = trimmed
		case strings.HasPrefix(trimmed, "#"), trimmed == "":
			// Directives we do not use, and blank lines.
		default:
			if extinfLine == "" {
				continue
			}
			name, err := channelName(extinfLine)
			if err != nil {
				extinfLine = ""
				continue
			}
			entries = append(entries, Entry{
				Name:        name,
				StreamURL:   trimmed,
				GroupTitle:  matchFirst(reGroup, extinfLine),
				LogoURL:     matchFirst(reTvgLogo, extinfLine),
				CountryCode: matchFirst(reTvgCountry, extinfLine),
			})
			extinfLine = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func matchFirst(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// channelName extracts the channel name: tvg-name, or the text after the
// last comma of the EXTINF line.
func channelName(extinf string) (string, error) {
	if n := matchFirst(reTvgName, extinf); n != "" {
		return n, nil
	}
	if n := matchFirst(reCommaName, extinf); n != "" {
		return n, nil
	}
	return "", ErrNoName
}
