package iptv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseM3U_ExtractsEntries(t *testing.T) {
	playlist := `#EXTM3U
#EXTINF:-1 tvg-name="News One" tvg-logo="http://logos/news.png" tvg-country="US" group-title="News",News One Alt
http://streams.example.com/news1.m3u8
#EXTINF:-1,Sports Central
http://streams.example.com/sports.m3u8
`

	entries, err := ParseM3U(strings.NewReader(playlist))
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	assert.Equal(t, "News One", entries[0].Name, "tvg-name wins over the comma name")
	assert.Equal(t, "http://streams.example.com/news1.m3u8", entries[0].StreamURL)
	assert.Equal(t, "News", entries[0].GroupTitle)
	assert.Equal(t, "http://logos/news.png", entries[0].LogoURL)
	assert.Equal(t, "US", entries[0].CountryCode)

	assert.Equal(t, "Sports Central", entries[1].Name)
	assert.Empty(t, entries[1].GroupTitle)
}

func TestParseM3U_SkipsMalformedBlocks(t *testing.T) {
	playlist := `#EXTM3U
http://orphan-url-without-extinf/stream
#EXTINF:-1,
#EXTINF:-1,Named After Empty
http://streams.example.com/ok.m3u8

#EXTINF:-1,Dangling entry with no URL
`

	entries, err := ParseM3U(strings.NewReader(playlist))
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "Named After Empty", entries[0].Name)
	assert.Equal(t, "http://streams.example.com/ok.m3u8", entries[0].StreamURL)
}

func TestParseM3U_EmptyInput(t *testing.T) {
	entries, err := ParseM3U(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
