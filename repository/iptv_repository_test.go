package repository

import (
	"testing"

	"videolib/models"

	"github.com/stretchr/testify/assert"
)

const testPlaylist = `#EXTM3U
#EXTINF:-1 tvg-name="News One" tvg-logo="http://logos/news.png" group-title="News",News One
http://streams.example.com/news1.m3u8
#EXTINF:-1 group-title="Sports",Sports Central
http://streams.example.com/sports.m3u8
`

func setupIPTVRepo(t *testing.T) (*IPTVRepository, func()) {
	testDB, cleanup := newTestDB(t)
	return NewIPTVRepository(testDB), cleanup
}

func TestIPTVRepository_CreatePlaylistImportsChannels(t *testing.T) {
	repo, cleanup := setupIPTVRepo(t)
	defer cleanup()

	playlist, err := repo.CreatePlaylist("starter.m3u", testPlaylist, 1)
	assert.NoError(t, err)
	assert.NotZero(t, playlist.ID)

	channels, err := repo.ListActiveChannels()
	assert.NoError(t, err)
	assert.Len(t, channels, 2)

	assert.Equal(t, "News One", channels[0].Name)
	assert.Equal(t, "News", channels[0].GroupTitle)
	assert.Equal(t, "http://logos/news.png", channels[0].LogoURL)
	assert.Equal(t, "http://streams.example.com/news1.m3u8", channels[0].StreamURL)
	assert.Equal(t, "HD", channels[0].Quality)
	assert.True(t, channels[0].IsLive)
	assert.Equal(t, 1, channels[0].AddedBy)
}

func TestIPTVRepository_PlaylistExists(t *testing.T) {
	repo, cleanup := setupIPTVRepo(t)
	defer cleanup()

	exists, err := repo.PlaylistExists("starter.m3u")
	assert.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.CreatePlaylist("starter.m3u", testPlaylist, 1)
	assert.NoError(t, err)

	exists, err = repo.PlaylistExists("starter.m3u")
	assert.NoError(t, err)
	assert.True(t, exists)

	playlists, err := repo.ListPlaylists()
	assert.NoError(t, err)
	assert.Len(t, playlists, 1)
	assert.Equal(t, "starter.m3u", playlists[0].Name)
}

func TestIPTVRepository_AddChannelDefaults(t *testing.T) {
	repo, cleanup := setupIPTVRepo(t)
	defer cleanup()

	ch := &models.IPTVChannel{Name: "Bare", StreamURL: "http://streams.example.com/bare", IsLive: true}
	err := repo.AddChannel(ch)
	assert.NoError(t, err)
	assert.Equal(t, "General", ch.GroupTitle)
	assert.Equal(t, "HD", ch.Quality)
	assert.True(t, ch.IsActive)
}

func TestIPTVRepository_DeactivateChannel(t *testing.T) {
	repo, cleanup := setupIPTVRepo(t)
	defer cleanup()

	ch := &models.IPTVChannel{Name: "Old", StreamURL: "http://streams.example.com/old", IsLive: true}
	assert.NoError(t, repo.AddChannel(ch))

	assert.NoError(t, repo.DeactivateChannel(ch.ID))

	channels, err := repo.ListActiveChannels()
	assert.NoError(t, err)
	assert.Empty(t, channels)

	err = repo.DeactivateChannel(9999)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
