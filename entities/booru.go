package entities

import (
	"fmt"
	"strings"
)

// Post is a single image-board search result.
type Post struct {
	ID         int64  `json:"id"`
	FileURL    string `json:"file_url"`
	SampleURL  string `json:"sample_url"`
	PreviewURL string `json:"preview_url,omitempty"`
	Width      int64  `json:"width"`
	Height     int64  `json:"height"`
	Score      int64  `json:"score"`
	Source     string `json:"source"`
	Tags       string `json:"tags,omitempty"`
}

// Tag is a single entry of the tag autocomplete endpoint.
type Tag struct {
	Name  string `json:"name"`
	Count int64  `json:"count,omitempty"`
}

var ImageTypes = []string{".png", ".jpeg", ".jpg", ".webp", ".gif"}

// IsImage reports whether the post's file is a still or animated image rather than a video.
func (p *Post) IsImage() bool {
	file := strings.ToLower(p.FileURL)
	for _, ext := range ImageTypes {
		if strings.HasSuffix(file, ext) {
			return true
		}
	}
	return false
}

// DisplayURL prefers the downsized sample for very large files.
func (p *Post) DisplayURL() string {
	if p.Width*p.Height >= 4_200_000 && p.SampleURL != "" {
		return p.SampleURL
	}
	return p.FileURL
}

func (p *Post) PageURL(host string) string {
	return fmt.Sprintf("https://%s/index.php?page=post&s=view&id=%d", host, p.ID)
}
