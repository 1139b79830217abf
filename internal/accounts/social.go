package accounts

import (
	"strings"

	"github.com/folio-social/folio/internal/models"
)

// Platforms is the allow-list of social platforms an account can link, in display order
var Platforms = []string{
	"facebook",
	"instagram",
	"twitter",
	"linkedin",
	"github",
	"youtube",
	"tiktok",
	"website",
}

// BuildSocialLinks keeps the allow-listed, non-empty handles in Platforms order
func BuildSocialLinks(handles map[string]string) []models.SocialLink {
	links := make([]models.SocialLink, 0, len(handles))
	for _, p := range Platforms {
		h := strings.TrimSpace(handles[p])
		if h == "" {
			continue
		}
		links = append(links, models.SocialLink{Platform: p, Handle: h})
	}
	return links
}
