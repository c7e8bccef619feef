package cards

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// OngekiMusic identifies a track.
type OngekiMusic struct {
	MusicID string `json:"music_id"`
	Name    string `json:"name"`
	Artist  string `json:"artist"`
}

// OngekiPlaylog is the play result behind a rating entry.
type OngekiPlaylog struct {
	IsFullCombo        bool `json:"is_full_combo"`
	IsFullBell         bool `json:"is_full_bell"`
	IsAllBreak         bool `json:"is_all_break"`
	JudgeMiss          int  `json:"judge_miss"`
	JudgeHit           int  `json:"judge_hit"`
	JudgeBreak         int  `json:"judge_break"`
	JudgeCriticalBreak int  `json:"judge_critical_break"`
	// TechScoreRank is 1-based.
	TechScoreRank int `json:"tech_score_rank"`
}

// OngekiRating is one entry of a best list.
type OngekiRating struct {
	Difficulty int           `json:"difficulty"`
	Music      OngekiMusic   `json:"music"`
	Score      int           `json:"score"`
	Rating     float64       `json:"rating"`
	Playlog    OngekiPlaylog `json:"playlog"`
	SongRating float64       `json:"song_rating"`
}

// OngekiUser is the player summary.
type OngekiUser struct {
	UserName          string         `json:"user_name"`
	Avatar            string         `json:"avatar"`
	Level             int            `json:"level"`
	BattlePoint       int            `json:"battle_point"`
	Rating            int            `json:"rating"`
	CalcRating        float64        `json:"calc_rating"`
	BestRating        float64        `json:"best_rating"`
	BestNewRating     float64        `json:"best_new_rating"`
	BestRatingList    []OngekiRating `json:"best_rating_list"`
	BestNewRatingList []OngekiRating `json:"best_new_rating_list"`
}

// OngekiParams are the per-request drawing options. The zero value is the default.
type OngekiParams struct {
	// ShowBreak adds the BREAK count to the judgement line.
	ShowBreak bool `json:"show_break"`
}

// OngekiRequest is the render request body.
type OngekiRequest struct {
	Data   OngekiUser   `json:"data"`
	Params OngekiParams `json:"params"`
}

// O.N.G.E.K.I. lamp sprites. Both lamps are always drawn, unlit when not achieved.
const (
	OngekiComboAB   = "score/score_detail_ab.png"
	OngekiComboFC   = "score/score_detail_fc.png"
	OngekiComboBase = "score/score_detail_fc_base.png"
	OngekiBellFB    = "score/score_detail_fb.png"
	OngekiBellBase  = "score/score_detail_fb_base.png"
)

// OngekiUnknownVersion labels songs missing from the catalog.
const OngekiUnknownVersion = "?"

// OngekiComboBadge picks the combo lamp: ALL BREAK over FULL COMBO over unlit.
func OngekiComboBadge(p OngekiPlaylog) string {
	switch {
	case p.IsAllBreak:
		return OngekiComboAB
	case p.IsFullCombo:
		return OngekiComboFC
	default:
		return OngekiComboBase
	}
}

// OngekiBellBadge picks the bell lamp.
func OngekiBellBadge(p OngekiPlaylog) string {
	if p.IsFullBell {
		return OngekiBellFB
	}
	return OngekiBellBase
}

// OngekiJudgements formats the judgement counts.
func OngekiJudgements(p OngekiPlaylog, params OngekiParams) string {
	if params.ShowBreak {
		return fmt.Sprintf("%d-%d-%d", p.JudgeBreak, p.JudgeHit, p.JudgeMiss)
	}
	return fmt.Sprintf("%d-%d", p.JudgeHit, p.JudgeMiss)
}

// OngekiBattleRank maps battle points to the rank emblem and its backing plate.
type OngekiBattleRank struct {
	Bounds []int
	Plates []int
}

// Index returns the emblem and plate index for battle points. Points past the last bound
// fall back to the first emblem.
func (b OngekiBattleRank) Index(battlePoint int) (int, int) {
	for i, bound := range b.Bounds {
		if battlePoint < bound {
			return i, b.Plates[i]
		}
	}
	return 0, 0
}

//nolint:gochecknoglobals
var ongekiBattleRanks = OngekiBattleRank{
	Bounds: []int{200, 500, 1000, 1500, 2000, 2500, 3000, 3500, 4000, 4500, 5000, 6000, 7000, 8000, 9000,
		10000, 11000, 12000, 13000, 14000, 15000, 17000, 19000, 20000, 999999},
	Plates: []int{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 3, 3, 3, 4, 5, 6, 7},
}

func ongekiRankSprite(i int) string  { return fmt.Sprintf("rating/rank_%d.png", i) }
func ongekiPlateSprite(i int) string { return fmt.Sprintf("rating/rank_bg_%d.png", i) }

func ongekiSprites() []string {
	names := []string{OngekiComboAB, OngekiComboFC, OngekiComboBase, OngekiBellFB, OngekiBellBase}
	for i, plate := range ongekiBattleRanks.Plates {
		names = append(names, ongekiRankSprite(i), ongekiPlateSprite(plate))
	}
	return lo.Uniq(names)
}

// OngekiProfile is the O.N.G.E.K.I. artwork description.
func OngekiProfile() *Profile {
	return &Profile{
		Name:         "ongeki",
		Layout:       OngekiLayout(),
		RatingDigits: 5,
		RatingTiers: RatingTiers{
			// The final bound is below its predecessor, so 19000 and up use the fallback tier.
			Bounds:   []int{4000, 7000, 9000, 11000, 13000, 15000, 17000, 18000, 19000, 2000},
			Fallback: 10,
		},
		Difficulties: map[int]string{
			0:  "pattern_basic.png",
			1:  "pattern_advanced.png",
			2:  "pattern_expert.png",
			3:  "pattern_master.png",
			10: "pattern_lunatic.png",
		},
		TextColors: map[int]color.NRGBA{
			10: {R: 205, G: 37, B: 36, A: 255},
		},
		Ranks: []string{"d", "c", "b", "bb", "bbb", "a", "aa", "aaa", "s", "ss", "sss", "sssplus"},
		Versions: VersionLabels{
			"オンゲキ":          "ONGEKI",
			"オンゲキ PLUS":     "ONGEKI+",
			"SUMMER":        "SUMMER",
			"SUMMER PLUS":   "SUMMER+",
			"R.E.D.":        "R.E.D.",
			"R.E.D. PLUS":   "R.E.D.+",
			"bright":        "BRIGHT",
			"bright MEMORY": "BRIGHT+",
			"Re:Fresh":      "REFRESH",
		},
		Sprites: ongekiSprites(),
	}
}

// OngekiRenderer draws O.N.G.E.K.I. cards.
type OngekiRenderer struct {
	*Renderer
}

// NewOngekiRenderer wraps a renderer built from OngekiProfile.
func NewOngekiRenderer(r *Renderer) *OngekiRenderer {
	return &OngekiRenderer{r}
}

func (r *OngekiRenderer) rankSprite(techScoreRank int) (string, error) {
	ranks := r.profile.Ranks
	idx := techScoreRank - 1
	if idx < 0 || idx >= len(ranks) {
		return "", errors.Wrapf(ErrInvalidRank, "tech score rank %d", techScoreRank)
	}
	return rankSprite(ranks[idx]), nil
}

func (r *OngekiRenderer) entry(rating OngekiRating, params OngekiParams) (Entry, error) {
	p := rating.Playlog
	rank, err := r.rankSprite(p.TechScoreRank)
	if err != nil {
		return Entry{}, err
	}

	title, artist := rating.Music.Name, rating.Music.Artist
	version := OngekiUnknownVersion
	if song, ok := r.assets.Catalog().Lookup(title, artist); ok {
		version = r.profile.Versions.Label(song.Version)
	}

	return Entry{
		Difficulty: rating.Difficulty,
		Cover: func() (image.Image, error) {
			img, _, _, err := r.assets.CoverFor(title, artist)
			return img, err
		},
		Version:    version,
		Title:      title,
		Score:      rating.Score,
		Judgements: OngekiJudgements(p, params),
		Rating:     RatingLine(rating.SongRating, rating.Rating),
		Badges: []Sprite{
			{Name: rank, Box: Box{X: 298, Y: 36, W: 95, H: 44}},
			{Name: OngekiComboBadge(p), Box: Box{X: 146, Y: 82, W: 120, H: 36}},
			{Name: OngekiBellBadge(p), Box: Box{X: 268, Y: 82, W: 120, H: 36}},
		},
	}, nil
}

// Card converts a payload into a card.
func (r *OngekiRenderer) Card(user OngekiUser, params OngekiParams) (*Card, error) {
	rank, plate := ongekiBattleRanks.Index(user.BattlePoint)
	card := &Card{
		UserName: user.UserName,
		Avatar:   user.Avatar,
		Level:    user.Level,
		Rating:   user.Rating,
		Summary:  fmt.Sprintf("%.3f | %.3f | %.3f", user.BestRating, user.BestNewRating, user.CalcRating),
		Overlays: []Sprite{
			{Name: ongekiPlateSprite(plate), Box: Box{X: 1800, Y: 80, W: 130, H: 280}},
			{Name: ongekiRankSprite(rank), Box: Box{X: 1826, Y: 195}},
		},
	}

	for listIdx, list := range [2][]OngekiRating{user.BestRatingList, user.BestNewRatingList} {
		entries := make([]Entry, 0, len(list))
		for i, rating := range list {
			entry, err := r.entry(rating, params)
			if err != nil {
				return nil, errors.Wrapf(err, "list %d entry %d", listIdx, i+1)
			}
			entries = append(entries, entry)
		}
		card.Lists[listIdx] = entries
	}
	return card, nil
}

// Render draws the card for user.
func (r *OngekiRenderer) Render(ctx context.Context, user OngekiUser, params OngekiParams) (image.Image, error) {
	card, err := r.Card(user, params)
	if err != nil {
		return nil, errors.Wrap(err, "OngekiRenderer.Render")
	}
	return r.Renderer.Render(ctx, card)
}
