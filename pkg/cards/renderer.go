// Package cards composites rating cards from score payloads and game artwork.
package cards

import (
	"context"
	"fmt"
	"image"
	"io"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/wrouesnel/ratingcard/pkg/assetstore"
	"github.com/wrouesnel/ratingcard/pkg/textwidth"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sprite names shared by every game.
const (
	spriteBackground   = "bg.png"
	spriteLogo         = "logo.png"
	spritePlate        = "plate.png"
	spriteIconFrame    = "icon_bg.png"
	spriteNameFrame    = "name_bg.png"
	spriteSummaryFrame = "extra_bg.png"
	spriteLevelFrame   = "rating/level_bg.png"
)

// JPEGQuality is the output encoding quality.
const JPEGQuality = 90

// prefetchLimit bounds concurrent cover and avatar loads within one render.
const prefetchLimit = 8

var (
	ErrInvalidDifficulty = errors.New("difficulty has no tile artwork")
	ErrInvalidRank       = errors.New("rank is outside the rank sequence")
)

func ratingSheetSprite(tier int) string  { return fmt.Sprintf("rating/num_%d.png", tier) }
func ratingHeaderSprite(tier int) string { return fmt.Sprintf("rating/header_%d.png", tier) }

// Renderer draws cards for one game. It is safe for concurrent use; every call to Render
// works on its own canvas.
type Renderer struct {
	profile *Profile
	assets  *assetstore.Store
	fonts   *FontSet
	logger  *zap.Logger
}

// NewRenderer returns a renderer for profile drawing with assets and fonts.
func NewRenderer(profile *Profile, assets *assetstore.Store, fonts *FontSet) *Renderer {
	return &Renderer{
		profile: profile,
		assets:  assets,
		fonts:   fonts,
		logger:  zap.L().With(zap.String("subsystem", "cards"), zap.String("game", profile.Name)),
	}
}

// Profile returns the game profile.
func (r *Renderer) Profile() *Profile {
	return r.profile
}

// Assets returns the asset store the renderer draws from.
func (r *Renderer) Assets() *assetstore.Store {
	return r.assets
}

type resolvedImages struct {
	avatar image.Image
	covers [2][]image.Image
}

// resolve loads the avatar and every cover concurrently. Avatar failures leave the avatar
// nil; cover failures (which only happen when even the fallback is unreadable) abort.
func (r *Renderer) resolve(ctx context.Context, card *Card) (*resolvedImages, error) {
	resolved := new(resolvedImages)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchLimit)

	g.Go(func() error {
		avatar, err := r.assets.Avatar(gctx, card.Avatar)
		if err != nil {
			r.logger.Warn("Avatar could not be resolved, leaving it blank",
				zap.String("avatar", card.Avatar), zap.Error(err))
			return nil
		}
		resolved.avatar = avatar
		return nil
	})

	for listIdx := range card.Lists {
		list := card.Lists[listIdx]
		covers := make([]image.Image, len(list))
		resolved.covers[listIdx] = covers
		for i := range list {
			i, entry := i, list[i]
			g.Go(func() error {
				var err error
				if entry.Cover == nil {
					covers[i], err = r.assets.Fallback()
				} else {
					covers[i], err = entry.Cover()
				}
				return errors.Wrapf(err, "cover for %q", entry.Title)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

// Render draws card and returns the image scaled to the output resolution.
func (r *Renderer) Render(ctx context.Context, card *Card) (image.Image, error) {
	start := time.Now()
	layout := r.profile.Layout

	resolved, err := r.resolve(ctx, card)
	if err != nil {
		return nil, errors.Wrap(err, "Render: resolving images")
	}

	background, err := r.assets.Sprite(spriteBackground)
	if err != nil {
		return nil, errors.Wrap(err, "Render: background")
	}
	canvas := NewCanvas(background, layout.Canvas, r.fonts)
	defer canvas.Close()

	if err := r.drawHeader(canvas, card, resolved.avatar); err != nil {
		return nil, errors.Wrap(err, "Render: header")
	}
	for listIdx, list := range card.Lists {
		if err := r.drawGrid(canvas, list, resolved.covers[listIdx], layout.ListTops[listIdx]); err != nil {
			return nil, errors.Wrapf(err, "Render: list %d", listIdx)
		}
	}

	out := imaging.Resize(canvas.Image(), layout.Output.X, layout.Output.Y, imaging.Lanczos)

	elapsed := time.Since(start)
	renderDuration.WithLabelValues(r.profile.Name).Observe(elapsed.Seconds())
	r.logger.Info("Generated image", zap.String("user_name", card.UserName), zap.Duration("duration", elapsed))
	return out, nil
}

func (r *Renderer) drawSprite(c *Canvas, s Sprite, at image.Point) error {
	img, err := r.assets.Scaled(s.Name, s.Box.W, s.Box.H)
	if err != nil {
		return err
	}
	c.Composite(img, s.Box.Offset(at))
	return nil
}

func (r *Renderer) drawSprites(c *Canvas, sprites []Sprite, at image.Point) error {
	for _, s := range sprites {
		if err := r.drawSprite(c, s, at); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawHeader(c *Canvas, card *Card, avatar image.Image) error {
	h := r.profile.Layout.Header
	origin := image.Point{}
	tier := r.profile.RatingTiers.Index(card.Rating)

	if err := r.drawSprite(c, Sprite{spriteLogo, h.Logo}, origin); err != nil {
		return err
	}
	if err := r.drawSprites(c, card.Backdrop, origin); err != nil {
		return err
	}
	if err := r.drawSprites(c, []Sprite{
		{spritePlate, h.Plate},
		{spriteIconFrame, h.IconFrame},
	}, origin); err != nil {
		return err
	}

	if avatar != nil {
		c.Fill(h.AvatarBacking, white)
		c.Composite(avatar, h.Avatar)
	}

	if err := r.drawSprite(c, Sprite{ratingHeaderSprite(tier), h.RatingHeader}, origin); err != nil {
		return err
	}
	if err := r.drawRating(c, card.Rating, tier); err != nil {
		return err
	}

	if err := r.drawSprites(c, []Sprite{
		{spriteNameFrame, h.NameFrame},
		{spriteLevelFrame, h.LevelFrame},
		{spriteSummaryFrame, h.SummaryFrame},
	}, origin); err != nil {
		return err
	}
	if err := r.drawSprites(c, card.Overlays, origin); err != nil {
		return err
	}

	if err := c.Text(h.Level, strconv.Itoa(card.Level), h.LevelColor); err != nil {
		return err
	}
	if err := c.Text(h.Name, card.UserName, h.NameColor); err != nil {
		return err
	}
	return c.StrokedText(h.Summary, card.Summary, h.SummaryColor, h.SummaryStroke, h.SummaryStrokeColor)
}

func (r *Renderer) drawRating(c *Canvas, rating int, tier int) error {
	digits := r.profile.Layout.Header.Digits
	sheet, err := r.assets.Sprite(ratingSheetSprite(tier))
	if err != nil {
		return err
	}
	glyphs, err := ratingGlyphs(FormatRating(rating, r.profile.RatingDigits), digits)
	if err != nil {
		return err
	}
	for _, glyph := range glyphs {
		c.Composite(sheetCell(sheet, glyph.Cell, digits), glyph.Box)
	}
	return nil
}

func (r *Renderer) drawGrid(c *Canvas, entries []Entry, covers []image.Image, top int) error {
	for i, entry := range entries {
		at := r.profile.Layout.Grid.Cell(i, top)
		if err := r.drawTile(c, i, entry, covers[i], at); err != nil {
			return errors.Wrapf(err, "entry %d", i+1)
		}
	}
	return nil
}

func (r *Renderer) drawTile(c *Canvas, index int, entry Entry, cover image.Image, at image.Point) error {
	tile := r.profile.Layout.Tile

	difficulty, ok := r.profile.Difficulties[entry.Difficulty]
	if !ok {
		return errors.Wrapf(ErrInvalidDifficulty, "difficulty %d", entry.Difficulty)
	}
	if err := r.drawSprite(c, Sprite{difficulty, Box{X: tile.Difficulty.X, Y: tile.Difficulty.Y}}, at); err != nil {
		return err
	}
	c.Composite(cover, tile.Cover.Offset(at))

	col := r.profile.TextColor(entry.Difficulty)
	if err := c.Text(tile.Index.Offset(at), fmt.Sprintf("#%d", index+1), col); err != nil {
		return err
	}
	if err := c.Text(tile.Version.Offset(at), entry.Version, col); err != nil {
		return err
	}
	if err := r.drawSprites(c, entry.Badges, at); err != nil {
		return err
	}

	title := textwidth.Fit(entry.Title, TitleThreshold, TitleBudget, TitleEllipsis)
	if err := c.Text(tile.Title.Offset(at), title, col); err != nil {
		return err
	}
	if err := c.Text(tile.Score.Offset(at), strconv.Itoa(entry.Score), col); err != nil {
		return err
	}
	if err := c.Text(tile.Judgements.Offset(at), entry.Judgements, col); err != nil {
		return err
	}
	return c.Text(tile.Rating.Offset(at), entry.Rating, col)
}

// EncodeJPEG writes img as a JPEG.
func EncodeJPEG(w io.Writer, img image.Image) error {
	return errors.Wrap(imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)), "EncodeJPEG")
}

// RatingLine formats the per-entry "constant -> rating" text.
func RatingLine(songRating float64, rating float64) string {
	return fmt.Sprintf("%.1f -> %.2f", songRating, rating)
}
