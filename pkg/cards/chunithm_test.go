package cards

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestChunithmClearBadge(t *testing.T) {
	cases := []struct {
		name string
		log  ChunithmPlaylog
		want string
	}{
		{"critical", ChunithmPlaylog{IsAllJustice: true, IsFullCombo: true, IsClear: true}, ChunithmClearAJC},
		{"all justice", ChunithmPlaylog{IsAllJustice: true, IsFullCombo: true, IsClear: true, JudgeJustice: 3}, ChunithmClearAJ},
		{"full combo", ChunithmPlaylog{IsFullCombo: true, IsClear: true, JudgeJustice: 10}, ChunithmClearFC},
		{"clear", ChunithmPlaylog{IsClear: true, JudgeMiss: 4}, ChunithmClearClear},
		{"failed", ChunithmPlaylog{JudgeMiss: 40}, ""},
	}
	for _, c := range cases {
		if got := ChunithmClearBadge(c.log); got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestChunithmJudgements(t *testing.T) {
	p := ChunithmPlaylog{JudgeJustice: 12, JudgeAttack: 3, JudgeMiss: 1}
	if got := ChunithmJudgements(p, ChunithmParams{}); got != "3-1" {
		t.Errorf("default = %q", got)
	}
	if got := ChunithmJudgements(p, ChunithmParams{ShowJustice: true}); got != "12-3-1" {
		t.Errorf("show justice = %q", got)
	}
}

func chunithmEntry(difficulty int, rank int, version *string) ChunithmRating {
	return ChunithmRating{
		Score:      1007500,
		Rating:     16.25,
		SongRating: 14.5,
		ImageName:  "known.webp",
		Version:    version,
		Playlog: ChunithmPlaylog{
			Difficulty:  difficulty,
			IsFullCombo: true,
			IsClear:     true,
			JudgeAttack: 2,
			Rank:        rank,
			Music:       ChunithmMusic{Name: strings.Repeat("長", 12)},
		},
	}
}

func TestChunithmCard(t *testing.T) {
	r := NewChunithmRenderer(testRenderer(t, ChunithmProfile(), ""))
	known, unknown := "PARADISE LOST", "SOMETHING NEWER"

	user := ChunithmUser{
		UserName:          "PLAYER",
		Level:             99,
		Rating:            1612,
		BestRating:        16.1234,
		BestNewRating:     15.9,
		BestRatingList:    []ChunithmRating{chunithmEntry(3, 12, &known), chunithmEntry(4, 13, nil)},
		BestNewRatingList: []ChunithmRating{chunithmEntry(2, 0, &unknown)},
	}
	card, err := r.Card(user, ChunithmParams{})
	if err != nil {
		t.Fatal(err)
	}

	if card.Summary != "B30: 16.12,  B20: 15.90" {
		t.Errorf("summary = %q", card.Summary)
	}
	if len(card.Lists[0]) != 2 || len(card.Lists[1]) != 1 {
		t.Fatalf("list sizes = %d, %d", len(card.Lists[0]), len(card.Lists[1]))
	}

	first := card.Lists[0][0]
	if first.Version != "PARA+" {
		t.Errorf("version = %q", first.Version)
	}
	if first.Rating != "14.5 -> 16.25" {
		t.Errorf("rating line = %q", first.Rating)
	}
	if len(first.Badges) != 2 || first.Badges[0].Name != "score/score_sss.png" || first.Badges[1].Name != ChunithmClearFC {
		t.Errorf("badges = %+v", first.Badges)
	}
	if got := card.Lists[0][1].Version; got != "" {
		t.Errorf("missing version label = %q", got)
	}
	if got := card.Lists[1][0].Version; got != "" {
		t.Errorf("unmapped version label = %q", got)
	}
}

func TestChunithmCardInvalidRank(t *testing.T) {
	r := NewChunithmRenderer(testRenderer(t, ChunithmProfile(), ""))
	user := ChunithmUser{BestRatingList: []ChunithmRating{chunithmEntry(0, 14, nil)}}
	if _, err := r.Card(user, ChunithmParams{}); !errors.Is(err, ErrInvalidRank) {
		t.Fatalf("expected ErrInvalidRank, got %v", err)
	}
}

func TestChunithmRender(t *testing.T) {
	r := NewChunithmRenderer(testRenderer(t, ChunithmProfile(), ""))
	list := make([]ChunithmRating, 30)
	for i := range list {
		list[i] = chunithmEntry(i%5, i%14, nil)
	}
	user := ChunithmUser{
		UserName:          "ＰＬＡＹＥＲ",
		Character:         "missing-avatar",
		Level:             12,
		Rating:            985,
		BestRatingList:    list,
		BestNewRatingList: list[:20],
	}

	img, err := r.Render(context.Background(), user, ChunithmParams{ShowJustice: true})
	if err != nil {
		t.Fatal(err)
	}
	size := r.Profile().Layout.Output
	if b := img.Bounds(); b.Dx() != size.X || b.Dy() != size.Y {
		t.Fatalf("output %v, want %v", b, size)
	}
}

func TestChunithmRenderInvalidDifficulty(t *testing.T) {
	r := NewChunithmRenderer(testRenderer(t, ChunithmProfile(), ""))
	user := ChunithmUser{BestRatingList: []ChunithmRating{chunithmEntry(7, 0, nil)}}
	if _, err := r.Render(context.Background(), user, ChunithmParams{}); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}
