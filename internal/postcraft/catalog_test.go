package postcraft

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEntries(t *testing.T) {
	tests := []struct {
		platform Platform
		theme    Theme
		types    []PostType
	}{
		{LinkedIn, ThemeLight, []PostType{LinkedInText, LinkedInImage}},
		{X, ThemeDark, []PostType{XTweet, XThread}},
		{Instagram, ThemeLight, []PostType{InstagramPost, InstagramStory, InstagramReel}},
	}

	for _, tt := range tests {
		t.Run(string(tt.platform), func(t *testing.T) {
			cfg, ok := Config(tt.platform)
			require.True(t, ok)
			assert.Equal(t, tt.platform, cfg.Name)
			assert.Equal(t, tt.theme, cfg.Theme)
			assert.NotEmpty(t, cfg.LogoColor)
			if diff := cmp.Diff(tt.types, cfg.PostTypes); diff != "" {
				t.Errorf("post types mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.types[0], DefaultPostType(tt.platform))
		})
	}
}

func TestPlatformsOrder(t *testing.T) {
	assert.Equal(t, []Platform{LinkedIn, X, Instagram}, Platforms)
}

func TestConfigReturnsCopy(t *testing.T) {
	cfg, ok := Config(LinkedIn)
	require.True(t, ok)
	cfg.PostTypes[0] = "Mutated"

	again, _ := Config(LinkedIn)
	assert.Equal(t, LinkedInText, again.PostTypes[0])
}

func TestConfigUnknownPlatform(t *testing.T) {
	_, ok := Config("Mastodon")
	assert.False(t, ok)
	assert.False(t, Allows("Mastodon", LinkedInText))
	assert.Empty(t, DefaultPostType("Mastodon"))
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows(X, XThread))
	assert.True(t, Allows(Instagram, InstagramReel))
	assert.False(t, Allows(LinkedIn, XThread))
	assert.False(t, Allows(X, LinkedInImage))
	assert.False(t, Allows(Instagram, ""))
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"linkedin", LinkedIn},
		{"LinkedIn", LinkedIn},
		{" li ", LinkedIn},
		{"x", X},
		{"Twitter", X},
		{"instagram", Instagram},
		{"IG", Instagram},
	}
	for _, tt := range tests {
		got, err := ParsePlatform(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParsePlatform("myspace")
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "platform", verr.Field)
}

func TestParsePostType(t *testing.T) {
	tests := []struct {
		platform Platform
		in       string
		want     PostType
	}{
		{LinkedIn, "", LinkedInText},
		{LinkedIn, "image", LinkedInImage},
		{LinkedIn, "image post", LinkedInImage},
		{X, "thread", XThread},
		{X, "Tweet", XTweet},
		{Instagram, "photo", InstagramPost},
		{Instagram, "Reel Script/Idea", InstagramReel},
		{Instagram, "story", InstagramStory},
	}
	for _, tt := range tests {
		got, err := ParsePostType(tt.platform, tt.in)
		require.NoError(t, err, "%s %q", tt.platform, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParsePostTypeRejectsOtherPlatforms(t *testing.T) {
	_, err := ParsePostType(LinkedIn, "thread")
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "postType", verr.Field)

	_, err = ParsePostType(X, "reel")
	require.ErrorAs(t, err, &verr)
}
