package cards

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/samber/lo"
	"github.com/wrouesnel/ratingcard/pkg/assetstore"
)

// Sprite is a UI image from the resource directory and where it goes.
type Sprite struct {
	Name string
	Box  Box
}

// Entry is one score tile, already resolved to text and sprite names.
type Entry struct {
	Difficulty int
	// Cover resolves the cover art. It runs concurrently with the other covers of the card.
	Cover      func() (image.Image, error)
	Version    string
	Title      string
	Score      int
	Judgements string
	Rating     string
	// Badges are positioned relative to the tile.
	Badges []Sprite
}

// Card is everything drawn for one player.
type Card struct {
	UserName string
	Avatar   string
	Level    int
	Rating   int
	Summary  string
	// Backdrop sprites are drawn straight after the logo, Overlays after the header frames.
	Backdrop []Sprite
	Overlays []Sprite
	// Lists are the best and best-new grids.
	Lists [2][]Entry
}

// Profile is the fixed per-game artwork description.
type Profile struct {
	Name   string
	Layout Layout
	// RatingDigits is the zero-padded width of the integer rating.
	RatingDigits int
	RatingTiers  RatingTiers
	// Difficulties maps a difficulty index to its tile background sprite.
	Difficulties map[int]string
	// TextColors overrides the tile text colour per difficulty.
	TextColors map[int]color.NRGBA
	// Ranks is the ordered score grade sequence.
	Ranks    []string
	Versions VersionLabels
	// Sprites are the game specific badge and decoration sprites.
	Sprites []string
}

func rankSprite(rank string) string { return fmt.Sprintf("score/score_%s.png", rank) }

// RequiredSprites lists every file under the resource directory the profile can draw.
func (p *Profile) RequiredSprites() []string {
	names := []string{
		spriteBackground, spriteLogo, spritePlate, spriteIconFrame,
		spriteNameFrame, spriteSummaryFrame, spriteLevelFrame,
		assetstore.FallbackImage,
	}
	tiers := append(lo.RangeFrom(0, len(p.RatingTiers.Bounds)), p.RatingTiers.Fallback)
	for _, tier := range lo.Uniq(tiers) {
		names = append(names, ratingSheetSprite(tier), ratingHeaderSprite(tier))
	}
	names = append(names, lo.Values(p.Difficulties)...)
	names = append(names, lo.Map(p.Ranks, func(rank string, _ int) string { return rankSprite(rank) })...)
	names = append(names, p.Sprites...)

	names = lo.Uniq(names)
	sort.Strings(names)
	return names
}

// TextColor returns the tile text colour for difficulty.
func (p *Profile) TextColor(difficulty int) color.NRGBA {
	if c, ok := p.TextColors[difficulty]; ok {
		return c
	}
	return white
}

// VersionLabels maps a catalog version name to its short label.
type VersionLabels map[string]string

// Label returns the short label for version, or "" when the version is not mapped.
func (v VersionLabels) Label(version string) string {
	return v[version]
}
