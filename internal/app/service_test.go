package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aromabalance/balance/internal/adapters/cache"
	"github.com/aromabalance/balance/internal/adapters/videosearch"
	service "github.com/aromabalance/balance/internal/app"
	"github.com/aromabalance/balance/internal/domain/model"
	"github.com/aromabalance/balance/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type fakeSearcher struct {
	results []model.VideoCandidate
	err     error
	delay   time.Duration
	calls   atomic.Int32
	queries chan string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]model.VideoCandidate, error) {
	f.calls.Add(1)
	if f.queries != nil {
		f.queries <- query
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func borschtCandidates() []model.VideoCandidate {
	return []model.VideoCandidate{
		{VideoID: "weak", Title: "Овощи на гриле", Description: "лето", PublishedAt: fixedNow.AddDate(-3, 0, 0)},
		{VideoID: "best", Title: "Борщ украинский рецепт", Description: "свекла и капуста", PublishedAt: fixedNow.AddDate(0, -1, 0)},
		{VideoID: "mid", Title: "Готовим суп", Description: "борщ", PublishedAt: fixedNow.AddDate(0, -8, 0)},
	}
}

func borschtRecipe() model.RecipeQuery {
	return model.RecipeQuery{Name: "Борщ", Cuisine: "Украинская", MainIngredients: []string{"свекла", "капуста"}}
}

func newService(s videosearch.Searcher, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithSearcher(s),
		service.WithSelector(scoring.NewSelector(scoring.WithClock(func() time.Time { return fixedNow }))),
	}
	return service.New(append(base, opts...)...)
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it is not configured and has empty stats", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Configured(), ShouldBeFalse)
			stats := svc.GetStats()
			So(stats["lookups"], ShouldEqual, int64(0))
			So(stats["cacheSize"], ShouldEqual, int64(0))
			So(stats["configured"], ShouldEqual, false)
		})
	})

	Convey("Given a service with an unconfigured YouTube client", t, func() {
		svc := service.New(service.WithSearcher(videosearch.NewYouTubeClient("")))

		Convey("Then Configured reflects the client", func() {
			So(svc.Configured(), ShouldBeFalse)
		})
	})
}

func TestService_FindVideo(t *testing.T) {
	Convey("Given a service backed by a fake provider", t, func() {
		ctx := context.Background()
		fake := &fakeSearcher{results: borschtCandidates()}
		svc := newService(fake, service.WithEmbedHost("www.youtube-nocookie.com"))

		Convey("When looking up a recipe", func() {
			res, err := svc.FindVideo(ctx, service.VideoRequest{Recipe: borschtRecipe()})

			Convey("Then the highest scoring candidate is returned as an embed URL", func() {
				So(err, ShouldBeNil)
				So(res.Found, ShouldBeTrue)
				So(res.VideoID, ShouldEqual, "best")
				So(res.VideoURL, ShouldEqual, "https://www.youtube-nocookie.com/embed/best")
				So(res.Title, ShouldEqual, "Борщ украинский рецепт")
				So(res.Score, ShouldBeGreaterThan, 10)
				So(res.Cached, ShouldBeFalse)
			})
		})

		Convey("When only a free-text query is given", func() {
			res, err := svc.FindVideo(ctx, service.VideoRequest{Query: "  Борщ  "})

			Convey("Then it is used as the recipe name", func() {
				So(err, ShouldBeNil)
				So(res.VideoID, ShouldEqual, "best")
			})
		})

		Convey("When neither a name nor a query is given", func() {
			_, err := svc.FindVideo(ctx, service.VideoRequest{Query: " ", Recipe: model.RecipeQuery{Cuisine: "итальянская"}})

			Convey("Then ErrInvalidRequest is returned without calling the provider", func() {
				So(errors.Is(err, service.ErrInvalidRequest), ShouldBeTrue)
				So(fake.calls.Load(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a provider returning nothing", t, func() {
		svc := newService(&fakeSearcher{})

		Convey("When looking up a recipe", func() {
			res, err := svc.FindVideo(context.Background(), service.VideoRequest{Recipe: borschtRecipe()})

			Convey("Then the result is not found and not an error", func() {
				So(err, ShouldBeNil)
				So(res.Found, ShouldBeFalse)
				So(res.VideoURL, ShouldBeEmpty)
				So(svc.GetStats()["notFound"], ShouldEqual, int64(1))
			})
		})
	})

	Convey("Given a failing provider", t, func() {
		svc := newService(&fakeSearcher{err: videosearch.ErrProvider})

		Convey("When looking up a recipe", func() {
			_, err := svc.FindVideo(context.Background(), service.VideoRequest{Recipe: borschtRecipe()})

			Convey("Then ErrSearchFailed wraps the provider error", func() {
				So(errors.Is(err, service.ErrSearchFailed), ShouldBeTrue)
				So(errors.Is(err, videosearch.ErrProvider), ShouldBeTrue)
				So(svc.GetStats()["failures"], ShouldEqual, int64(1))
			})
		})
	})

	Convey("Given no provider at all", t, func() {
		svc := service.New()

		Convey("Then lookups fail with ErrNotConfigured", func() {
			_, err := svc.FindVideo(context.Background(), service.VideoRequest{Recipe: borschtRecipe()})
			So(errors.Is(err, service.ErrNotConfigured), ShouldBeTrue)
		})
	})

	Convey("Given a YouTube client without an API key", t, func() {
		svc := newService(videosearch.NewYouTubeClient(""))

		Convey("Then lookups fail with ErrNotConfigured", func() {
			_, err := svc.FindVideo(context.Background(), service.VideoRequest{Recipe: borschtRecipe()})
			So(errors.Is(err, service.ErrNotConfigured), ShouldBeTrue)
			So(errors.Is(err, service.ErrSearchFailed), ShouldBeFalse)
		})
	})
}

func TestService_Cache(t *testing.T) {
	Convey("Given a service with an in-memory cache", t, func() {
		ctx := context.Background()
		fake := &fakeSearcher{results: borschtCandidates()}
		svc := newService(fake, service.WithCache(cache.NewInMemory(cache.WithMaxSize(10))))
		req := service.VideoRequest{Recipe: borschtRecipe()}

		Convey("When the same recipe is looked up twice", func() {
			first, err1 := svc.FindVideo(ctx, req)
			second, err2 := svc.FindVideo(ctx, req)

			Convey("Then the provider is called once and the second answer is cached", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(fake.calls.Load(), ShouldEqual, 1)
				So(first.Cached, ShouldBeFalse)
				So(second.Cached, ShouldBeTrue)
				So(second.VideoURL, ShouldEqual, first.VideoURL)

				stats := svc.GetStats()
				So(stats["cacheHits"], ShouldEqual, int64(1))
				So(stats["cacheMisses"], ShouldEqual, int64(1))
				So(stats["cacheSize"], ShouldEqual, int64(1))
			})
		})

		Convey("When the provider returns nothing", func() {
			fake.results = nil
			_, _ = svc.FindVideo(ctx, req)
			_, _ = svc.FindVideo(ctx, req)

			Convey("Then empty results are not cached", func() {
				So(fake.calls.Load(), ShouldEqual, 2)
				So(svc.GetStats()["cacheSize"], ShouldEqual, int64(0))
			})
		})
	})
}

func TestService_ConcurrentLookups(t *testing.T) {
	Convey("Given a slow provider", t, func() {
		fake := &fakeSearcher{results: borschtCandidates(), delay: 100 * time.Millisecond}
		svc := newService(fake)

		Convey("When many identical lookups run at once", func() {
			var wg sync.WaitGroup
			var found atomic.Int32
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					res, err := svc.FindVideo(context.Background(), service.VideoRequest{Recipe: borschtRecipe()})
					if err == nil && res.Found {
						found.Add(1)
					}
				}()
			}
			wg.Wait()

			Convey("Then every caller gets the answer and the provider is hit far fewer times", func() {
				So(found.Load(), ShouldEqual, 10)
				So(fake.calls.Load(), ShouldBeLessThan, 10)
				So(svc.GetStats()["lookups"], ShouldEqual, int64(10))
			})
		})
	})
}

func TestService_SharedSearchCancellation(t *testing.T) {
	Convey("Given a slow provider and two callers for the same recipe", t, func() {
		fake := &fakeSearcher{results: borschtCandidates(), delay: 200 * time.Millisecond, queries: make(chan string, 2)}
		svc := newService(fake)
		req := service.VideoRequest{Recipe: borschtRecipe()}

		leaderCtx, cancelLeader := context.WithCancel(context.Background())
		leaderErr := make(chan error, 1)
		go func() {
			_, err := svc.FindVideo(leaderCtx, req)
			leaderErr <- err
		}()
		<-fake.queries

		type outcome struct {
			res service.VideoResult
			err error
		}
		follower := make(chan outcome, 1)
		go func() {
			res, err := svc.FindVideo(context.Background(), req)
			follower <- outcome{res, err}
		}()
		time.Sleep(30 * time.Millisecond)
		cancelLeader()

		Convey("When the first caller goes away", func() {
			lErr := <-leaderErr
			f := <-follower

			Convey("Then only that caller sees the cancellation", func() {
				So(errors.Is(lErr, context.Canceled), ShouldBeTrue)
				So(f.err, ShouldBeNil)
				So(f.res.Found, ShouldBeTrue)
				So(f.res.VideoID, ShouldEqual, "best")
				So(fake.calls.Load(), ShouldEqual, 1)
			})
		})
	})
}

func TestService_SearchTimeout(t *testing.T) {
	Convey("Given a provider slower than the search timeout", t, func() {
		fake := &fakeSearcher{results: borschtCandidates(), delay: time.Second}
		svc := newService(fake, service.WithSearchTimeout(50*time.Millisecond))

		Convey("When a lookup runs", func() {
			_, err := svc.FindVideo(context.Background(), service.VideoRequest{Recipe: borschtRecipe()})

			Convey("Then the shared search gives up at the deadline", func() {
				So(errors.Is(err, service.ErrSearchFailed), ShouldBeTrue)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}
