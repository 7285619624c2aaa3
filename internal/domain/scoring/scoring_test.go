package scoring_test

import (
	"testing"
	"time"

	"github.com/aromabalance/balance/internal/domain/model"
	scoring "github.com/aromabalance/balance/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(days int) time.Time {
	return fixedNow.Add(-time.Duration(days) * 24 * time.Hour)
}

func borscht() model.RecipeQuery {
	return model.RecipeQuery{
		Name:            "Борщ",
		Cuisine:         "украинская",
		MainIngredients: []string{"свекла", "капуста", "картофель"},
	}
}

func TestScore(t *testing.T) {
	Convey("Given the borscht recipe", t, func() {
		recipe := borscht()

		Convey("When the title names the recipe, its cuisine and the recipe keyword", func() {
			c := model.VideoCandidate{
				Title:       "Борщ рецепт приготовления, украинская кухня",
				PublishedAt: fixedNow,
			}

			Convey("Then every matching bonus is added", func() {
				// name 10 + token 3 + cuisine 5 + "рецепт" 2 + fresh 3
				So(scoring.Score(c, recipe, fixedNow), ShouldEqual, 23)
			})
		})

		Convey("When the video is unrelated and three years old", func() {
			c := model.VideoCandidate{
				Title:       "Случайное видео",
				PublishedAt: daysAgo(3 * 365),
			}

			Convey("Then the score is zero", func() {
				So(scoring.Score(c, recipe, fixedNow), ShouldEqual, 0)
			})
		})

		Convey("When ingredients appear in the title and description", func() {
			c := model.VideoCandidate{
				Title:       "Постный суп: свекла и капуста",
				Description: "берём картофель и свекла",
				PublishedAt: daysAgo(1000),
			}

			Convey("Then each ingredient adds 2 for the title and 1 for the description", func() {
				// title: свекла 2 + капуста 2; description: свекла 1 + картофель 1
				So(scoring.Score(c, recipe, fixedNow), ShouldEqual, 6)
			})
		})
	})

	Convey("Given a recipe with more than three ingredients", t, func() {
		recipe := model.RecipeQuery{
			Name:            "Суп",
			MainIngredients: []string{"нут", "шпинат", "тофу", "кокос"},
		}

		Convey("When only the fourth ingredient matches the title", func() {
			c := model.VideoCandidate{Title: "кокос", PublishedAt: daysAgo(1000)}

			Convey("Then it is ignored", func() {
				So(scoring.Score(c, recipe, fixedNow), ShouldEqual, 0)
			})
		})

		Convey("When the name and the first ingredient match", func() {
			c := model.VideoCandidate{
				Title:       "Суп с нут",
				Description: "шпинат",
				PublishedAt: daysAgo(1000),
			}

			Convey("Then name, token and ingredient bonuses add up", func() {
				// name 10 + token 3 + нут title 2 + шпинат description 1
				So(scoring.Score(c, recipe, fixedNow), ShouldEqual, 16)
			})
		})
	})

	Convey("Given a recipe without cuisine and ingredients", t, func() {
		recipe := model.RecipeQuery{Name: "Хумус"}

		Convey("When scoring a matching title", func() {
			c := model.VideoCandidate{Title: "Хумус рецепт", PublishedAt: daysAgo(400)}

			Convey("Then only name, token, keyword and freshness bonuses apply", func() {
				So(func() { scoring.Score(c, recipe, fixedNow) }, ShouldNotPanic)
				// name 10 + token 3 + "рецепт" 2 + aging 1
				So(scoring.Score(c, recipe, fixedNow), ShouldEqual, 16)
			})
		})

		Convey("When ingredients is nil and cuisine is empty", func() {
			recipe.MainIngredients = nil
			recipe.Cuisine = ""
			c := model.VideoCandidate{Title: "другое", PublishedAt: daysAgo(2000)}

			Convey("Then the score is zero", func() {
				So(scoring.Score(c, recipe, fixedNow), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a multi-word recipe name", t, func() {
		recipe := model.RecipeQuery{Name: "Тофу по-азиатски"}

		Convey("When only one token is in the title and the other in the description", func() {
			c := model.VideoCandidate{
				Title:       "Жареный тофу",
				Description: "Ужин по-азиатски",
				PublishedAt: daysAgo(1000),
			}

			Convey("Then the tokens score independently", func() {
				So(scoring.Score(c, recipe, fixedNow), ShouldEqual, 4)
			})
		})

		Convey("When a token is in both title and description", func() {
			c := model.VideoCandidate{
				Title:       "тофу",
				Description: "тофу",
				PublishedAt: daysAgo(1000),
			}

			Convey("Then both bonuses fire", func() {
				So(scoring.Score(c, recipe, fixedNow), ShouldEqual, 4)
			})
		})
	})

	Convey("Given title keywords", t, func() {
		recipe := model.RecipeQuery{Name: "Рагу"}
		old := daysAgo(1000)

		Convey("When the phrase how-to-cook is added to a title", func() {
			base := model.VideoCandidate{Title: "Рагу из овощей", PublishedAt: old}
			with := model.VideoCandidate{Title: "Рагу из овощей как приготовить", PublishedAt: old}

			Convey("Then the score grows by exactly 3", func() {
				So(scoring.Score(with, recipe, fixedNow)-scoring.Score(base, recipe, fixedNow), ShouldEqual, 3)
			})
		})

		Convey("When all three keywords are present", func() {
			c := model.VideoCandidate{Title: "Готовим! Рецепт: как приготовить", PublishedAt: old}

			Convey("Then all keyword bonuses fire", func() {
				So(scoring.Score(c, model.RecipeQuery{Name: "зз"}, fixedNow), ShouldEqual, 7)
			})
		})
	})

	Convey("Given candidates that differ only in the recipe name", t, func() {
		recipe := model.RecipeQuery{Name: "Овсяное печенье"}
		without := model.VideoCandidate{Title: "Печенье без сахара", PublishedAt: fixedNow}
		with := model.VideoCandidate{Title: "Печенье без сахара Овсяное печенье", PublishedAt: fixedNow}

		Convey("Then containing the exact name gives at least 10 more points", func() {
			diff := scoring.Score(with, recipe, fixedNow) - scoring.Score(without, recipe, fixedNow)
			So(diff, ShouldBeGreaterThanOrEqualTo, 10)
		})
	})
}

func TestFreshnessBonus(t *testing.T) {
	Convey("Given the same candidate published at different times", t, func() {
		recipe := model.RecipeQuery{Name: "зз"}
		at := func(published time.Time) int {
			return scoring.Score(model.VideoCandidate{Title: "x", PublishedAt: published}, recipe, fixedNow)
		}

		Convey("Then bucket boundaries are strict", func() {
			So(at(daysAgo(0)), ShouldEqual, 3)
			So(at(daysAgo(179)), ShouldEqual, 3)
			So(at(daysAgo(180)), ShouldEqual, 2)
			So(at(daysAgo(359)), ShouldEqual, 2)
			So(at(daysAgo(360)), ShouldEqual, 1)
			So(at(daysAgo(719)), ShouldEqual, 1)
			So(at(daysAgo(720)), ShouldEqual, 0)
		})

		Convey("Then a more recent date never scores lower", func() {
			prev := at(daysAgo(3000))
			for days := 3000; days >= 0; days -= 7 {
				cur := at(daysAgo(days))
				So(cur, ShouldBeGreaterThanOrEqualTo, prev)
				prev = cur
			}
		})

		Convey("Then a future publish date counts as fresh", func() {
			So(at(fixedNow.Add(48*time.Hour)), ShouldEqual, 3)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given candidates with tied and distinct scores", t, func() {
		recipe := borscht()
		old := daysAgo(1000)
		candidates := []model.VideoCandidate{
			{VideoID: "a", Title: "другое", PublishedAt: old},
			{VideoID: "b", Title: "борщ", PublishedAt: old},
			{VideoID: "c", Title: "тоже другое", PublishedAt: old},
			{VideoID: "d", Title: "борщ", PublishedAt: old},
		}

		Convey("When ranking", func() {
			ranked := scoring.Rank(candidates, recipe, fixedNow)

			Convey("Then scores are descending and ties keep input order", func() {
				So(len(ranked), ShouldEqual, 4)
				So(ranked[0].VideoID, ShouldEqual, "b")
				So(ranked[1].VideoID, ShouldEqual, "d")
				So(ranked[2].VideoID, ShouldEqual, "a")
				So(ranked[3].VideoID, ShouldEqual, "c")
				So(ranked[0].Score, ShouldEqual, 13)
				So(ranked[3].Score, ShouldEqual, 0)
			})

			Convey("And the input slice is left untouched", func() {
				So(candidates[0].VideoID, ShouldEqual, "a")
				So(candidates[1].VideoID, ShouldEqual, "b")
			})
		})
	})
}

func TestSelector(t *testing.T) {
	Convey("Given a selector with a pinned clock", t, func() {
		selector := scoring.NewSelector(scoring.WithClock(func() time.Time { return fixedNow }))

		Convey("When selecting among the borscht scenario candidates", func() {
			a := model.VideoCandidate{
				VideoID:     "a",
				Title:       "Борщ рецепт приготовления, украинская кухня",
				PublishedAt: fixedNow,
			}
			b := model.VideoCandidate{
				VideoID:     "b",
				Title:       "Случайное видео",
				PublishedAt: daysAgo(3 * 365),
			}

			Convey("Then the matching video wins regardless of order", func() {
				best, err := selector.Select([]model.VideoCandidate{b, a}, borscht())
				So(err, ShouldBeNil)
				So(best.VideoID, ShouldEqual, "a")
				So(best.Score, ShouldEqual, 23)
			})

			Convey("And repeated calls give the same winner and ordering", func() {
				first := selector.Rank([]model.VideoCandidate{a, b}, borscht())
				second := selector.Rank([]model.VideoCandidate{a, b}, borscht())
				So(second, ShouldResemble, first)
			})
		})

		Convey("When every candidate ties", func() {
			candidates := []model.VideoCandidate{
				{VideoID: "first", Title: "x", PublishedAt: fixedNow},
				{VideoID: "second", Title: "x", PublishedAt: fixedNow},
			}

			Convey("Then the first one is kept", func() {
				best, err := selector.Select(candidates, model.RecipeQuery{Name: "зз"})
				So(err, ShouldBeNil)
				So(best.VideoID, ShouldEqual, "first")
			})
		})

		Convey("When the winner is picked from an arbitrary set", func() {
			candidates := []model.VideoCandidate{
				{VideoID: "1", Title: "овощное рагу", PublishedAt: daysAgo(10)},
				{VideoID: "2", Title: "как приготовить рагу", PublishedAt: daysAgo(500)},
				{VideoID: "3", Title: "рагу рецепт", PublishedAt: daysAgo(200)},
				{VideoID: "4", Title: "десерт", PublishedAt: daysAgo(5)},
				{VideoID: "5", Title: "готовим рагу", PublishedAt: daysAgo(900)},
			}

			Convey("Then it is a member of the input", func() {
				best, err := selector.Select(candidates, model.RecipeQuery{Name: "Рагу"})
				So(err, ShouldBeNil)
				found := false
				for _, c := range candidates {
					if c == best.VideoCandidate {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When there are no candidates", func() {
			_, err := selector.Select(nil, borscht())

			Convey("Then ErrNoCandidates is returned", func() {
				So(err, ShouldEqual, scoring.ErrNoCandidates)
			})
		})
	})

	Convey("Given the wall-clock helper", t, func() {
		Convey("When selecting a recent matching video", func() {
			now := time.Now()
			best, err := scoring.SelectBestMatch([]model.VideoCandidate{
				{VideoID: "old", Title: "Случайное видео", PublishedAt: now.AddDate(-3, 0, 0)},
				{VideoID: "new", Title: "Борщ рецепт", PublishedAt: now},
			}, borscht())

			Convey("Then it returns the best candidate", func() {
				So(err, ShouldBeNil)
				So(best.VideoID, ShouldEqual, "new")
			})
		})

		Convey("When called with an empty slice", func() {
			_, err := scoring.SelectBestMatch([]model.VideoCandidate{}, borscht())

			Convey("Then it reports no candidates", func() {
				So(err, ShouldEqual, scoring.ErrNoCandidates)
			})
		})
	})
}
