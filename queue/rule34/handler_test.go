package rule34

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"image_bot/entities"
)

func TestPostEmbed(t *testing.T) {
	post := &entities.Post{
		ID:        4521,
		FileURL:   "https://example.com/full.png",
		SampleURL: "https://example.com/sample.jpg",
		Width:     2560,
		Height:    1440,
		Score:     12345,
		Source:    "https://example.com/artist",
	}

	embed := postEmbed(post)
	require.Equal(t, embedColor, embed.Color)
	require.Equal(t, "Rule34 Post", embed.Author.Name)
	require.Equal(t, "https://rule34.xxx/index.php?page=post&s=view&id=4521", embed.Author.URL)
	require.Equal(t, "https://example.com/full.png", embed.Image.URL)
	require.Equal(t, "[🔗 Original Source](https://example.com/artist)", embed.Description)
	require.Equal(t, &discordgo.MessageEmbedFooter{Text: "⭐ 12,345"}, embed.Footer)
}

func TestPostEmbedLargeImage(t *testing.T) {
	post := &entities.Post{
		ID:        1,
		FileURL:   "https://example.com/full.png",
		SampleURL: "https://example.com/sample.jpg",
		Width:     4000,
		Height:    3000,
	}

	embed := postEmbed(post)
	require.Equal(t, "https://example.com/sample.jpg", embed.Image.URL)
	require.Empty(t, embed.Description)
	require.Equal(t, "⭐ 0", embed.Footer.Text)
}

func TestNormalizeTags(t *testing.T) {
	require.Equal(t, "", normalizeTags(" None "))
	require.Equal(t, "", normalizeTags("Error"))
	require.Equal(t, "cat_ears -dog", normalizeTags(" cat_ears -dog "))
}
