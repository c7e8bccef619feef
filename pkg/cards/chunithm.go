package cards

import (
	"context"
	"fmt"
	"image"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ChunithmMusic identifies a track.
type ChunithmMusic struct {
	MusicID string `json:"music_id"`
	Name    string `json:"name"`
	Artist  string `json:"artist"`
}

// ChunithmPlaylog is the play result behind a rating entry.
type ChunithmPlaylog struct {
	Difficulty    int           `json:"difficulty"`
	IsFullCombo   bool          `json:"is_full_combo"`
	IsAllJustice  bool          `json:"is_all_justice"`
	IsClear       bool          `json:"is_clear"`
	JudgeMiss     int           `json:"judge_miss"`
	JudgeAttack   int           `json:"judge_attack"`
	JudgeJustice  int           `json:"judge_justice"`
	JudgeCritical int           `json:"judge_critical"`
	Rank          int           `json:"rank"`
	Music         ChunithmMusic `json:"music"`
}

// ChunithmRating is one entry of a best list.
type ChunithmRating struct {
	Score      int             `json:"score"`
	Rating     float64         `json:"rating"`
	Playlog    ChunithmPlaylog `json:"playlog"`
	SongRating float64         `json:"song_rating"`
	ImageName  string          `json:"image_name"`
	Version    *string         `json:"version"`
}

// ChunithmUser is the player summary.
type ChunithmUser struct {
	UserName          string           `json:"user_name"`
	Character         string           `json:"character"`
	Level             int              `json:"level"`
	Rating            int              `json:"rating"`
	BestRating        float64          `json:"best_rating"`
	BestNewRating     float64          `json:"best_new_rating"`
	BestRatingList    []ChunithmRating `json:"best_rating_list"`
	BestNewRatingList []ChunithmRating `json:"best_new_rating_list"`
}

// ChunithmParams are the per-request drawing options. The zero value is the default.
type ChunithmParams struct {
	// ShowJustice adds the JUSTICE count to the judgement line.
	ShowJustice bool `json:"show_justice"`
}

// ChunithmRequest is the render request body.
type ChunithmRequest struct {
	Data   ChunithmUser   `json:"data"`
	Params ChunithmParams `json:"params"`
}

// CHUNITHM clear badge sprites.
const (
	chunithmBackdrop = "bg_chara.png"

	ChunithmClearAJC   = "score/score_detail_ajc.png"
	ChunithmClearAJ    = "score/score_detail_aj.png"
	ChunithmClearFC    = "score/score_detail_fc.png"
	ChunithmClearClear = "score/score_detail_clear.png"
)

// ChunithmClearBadge picks the single highest clear badge for a play, or "" for none.
// ALL JUSTICE with no JUSTICE judgements at all is ALL JUSTICE CRITICAL.
func ChunithmClearBadge(p ChunithmPlaylog) string {
	switch {
	case p.IsAllJustice && p.JudgeJustice == 0:
		return ChunithmClearAJC
	case p.IsAllJustice:
		return ChunithmClearAJ
	case p.IsFullCombo:
		return ChunithmClearFC
	case p.IsClear:
		return ChunithmClearClear
	default:
		return ""
	}
}

// ChunithmJudgements formats the judgement counts.
func ChunithmJudgements(p ChunithmPlaylog, params ChunithmParams) string {
	if params.ShowJustice {
		return fmt.Sprintf("%d-%d-%d", p.JudgeJustice, p.JudgeAttack, p.JudgeMiss)
	}
	return fmt.Sprintf("%d-%d", p.JudgeAttack, p.JudgeMiss)
}

// ChunithmProfile is the CHUNITHM artwork description.
func ChunithmProfile() *Profile {
	return &Profile{
		Name:         "chunithm",
		Layout:       ChunithmLayout(),
		RatingDigits: 4,
		RatingTiers: RatingTiers{
			Bounds:   []int{0, 400, 700, 1000, 1200, 1325, 1450, 1450, 1525, 1600, 2000},
			Fallback: 10,
		},
		Difficulties: map[int]string{
			0: "pattern_basic.png",
			1: "pattern_advanced.png",
			2: "pattern_expert.png",
			3: "pattern_master.png",
			4: "pattern_ultima.png",
		},
		Ranks: []string{"d", "c", "b", "bb", "bbb", "a", "aa", "aaa", "s", "splus", "ss", "ssplus", "sss", "sssplus"},
		Versions: VersionLabels{
			"":                  "",
			"CHUNITHM":          "CHUNI",
			"CHUNITHM PLUS":     "CHUNI+",
			"AIR":               "AIR",
			"AIR PLUS":          "AIR+",
			"STAR":              "STAR",
			"STAR PLUS":         "STAR+",
			"AMAZON":            "AMAZON",
			"AMAZON PLUS":       "AMAZON+",
			"CRYSTAL":           "CRYS",
			"CRYSTAL PLUS":      "CRYS+",
			"PARADISE":          "PARA",
			"PARADISE LOST":     "PARA+",
			"CHUNITHM NEW":      "NEW",
			"CHUNITHM NEW PLUS": "NEW+",
			"SUN":               "SUN",
			"SUN PLUS":          "SUN+",
			"LUMINOUS":          "LUM",
			"LUMINOUS PLUS":     "LUM+",
			"VERSE":             "VERSE",
			"VERSE PLUS":        "VERSE+",
		},
		Sprites: []string{chunithmBackdrop, ChunithmClearAJC, ChunithmClearAJ, ChunithmClearFC, ChunithmClearClear},
	}
}

// ChunithmRenderer draws CHUNITHM cards.
type ChunithmRenderer struct {
	*Renderer
}

// NewChunithmRenderer wraps a renderer built from ChunithmProfile.
func NewChunithmRenderer(r *Renderer) *ChunithmRenderer {
	return &ChunithmRenderer{r}
}

func (r *ChunithmRenderer) rankSprite(rank int) (string, error) {
	ranks := r.profile.Ranks
	if rank < 0 || rank >= len(ranks) {
		return "", errors.Wrapf(ErrInvalidRank, "rank %d", rank)
	}
	return rankSprite(ranks[rank]), nil
}

func (r *ChunithmRenderer) entry(rating ChunithmRating, params ChunithmParams) (Entry, error) {
	p := rating.Playlog
	rank, err := r.rankSprite(p.Rank)
	if err != nil {
		return Entry{}, err
	}

	badges := []Sprite{{Name: rank, Box: Box{X: 146, Y: 82, W: 120, H: 34}}}
	if clear := ChunithmClearBadge(p); clear != "" {
		badges = append(badges, Sprite{Name: clear, Box: Box{X: 270, Y: 82, W: 120, H: 34}})
	}

	imageName := rating.ImageName
	return Entry{
		Difficulty: p.Difficulty,
		Cover:      func() (image.Image, error) { return r.assets.Cover(imageName) },
		Version:    r.profile.Versions.Label(lo.FromPtr(rating.Version)),
		Title:      p.Music.Name,
		Score:      rating.Score,
		Judgements: ChunithmJudgements(p, params),
		Rating:     RatingLine(rating.SongRating, rating.Rating),
		Badges:     badges,
	}, nil
}

// Card converts a payload into a card.
func (r *ChunithmRenderer) Card(user ChunithmUser, params ChunithmParams) (*Card, error) {
	card := &Card{
		UserName: user.UserName,
		Avatar:   user.Character,
		Level:    user.Level,
		Rating:   user.Rating,
		Summary:  fmt.Sprintf("B30: %.2f,  B20: %.2f", user.BestRating, user.BestNewRating),
		Backdrop: []Sprite{{Name: chunithmBackdrop, Box: Box{X: 1000, Y: 2000}}},
	}

	for listIdx, list := range [2][]ChunithmRating{user.BestRatingList, user.BestNewRatingList} {
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
func (r *ChunithmRenderer) Render(ctx context.Context, user ChunithmUser, params ChunithmParams) (image.Image, error) {
	card, err := r.Card(user, params)
	if err != nil {
		return nil, errors.Wrap(err, "ChunithmRenderer.Render")
	}
	return r.Renderer.Render(ctx, card)
}
