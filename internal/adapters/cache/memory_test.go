package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	cache "github.com/aromabalance/balance/internal/adapters/cache"
	"github.com/aromabalance/balance/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func candidates(ids ...string) []model.VideoCandidate {
	out := make([]model.VideoCandidate, len(ids))
	for i, id := range ids {
		out[i] = model.VideoCandidate{VideoID: id, Title: "title " + id}
	}
	return out
}

func TestInMemoryCache(t *testing.T) {
	Convey("Given a new in-memory cache", t, func() {
		ctx := context.Background()

		Convey("When created with default options", func() {
			c := cache.NewInMemory()

			Convey("Then it should be empty", func() {
				So(c, ShouldNotBeNil)
				So(c.Size(), ShouldEqual, 0)
				_, ok := c.Get(ctx, "борщ")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When storing results", func() {
			c := cache.NewInMemory(cache.WithMaxSize(10))
			c.Put(ctx, "борщ рецепт", candidates("a", "b"))

			Convey("Then they can be read back", func() {
				got, ok := c.Get(ctx, "борщ рецепт")
				So(ok, ShouldBeTrue)
				So(got, ShouldResemble, candidates("a", "b"))
				So(c.Size(), ShouldEqual, 1)
			})

			Convey("And the returned slice is a copy", func() {
				got, _ := c.Get(ctx, "борщ рецепт")
				got[0].Title = "mutated"
				again, _ := c.Get(ctx, "борщ рецепт")
				So(again[0].Title, ShouldEqual, "title a")
			})

			Convey("And storing the same key replaces the value without growing", func() {
				c.Put(ctx, "борщ рецепт", candidates("c"))
				got, ok := c.Get(ctx, "борщ рецепт")
				So(ok, ShouldBeTrue)
				So(got, ShouldResemble, candidates("c"))
				So(c.Size(), ShouldEqual, 1)
			})

			Convey("And an empty result list is still a hit", func() {
				c.Put(ctx, "nothing", []model.VideoCandidate{})
				got, ok := c.Get(ctx, "nothing")
				So(ok, ShouldBeTrue)
				So(len(got), ShouldEqual, 0)
			})
		})

		Convey("When the cache is bounded", func() {
			c := cache.NewInMemory(cache.WithMaxSize(3))
			for i := 1; i <= 3; i++ {
				c.Put(ctx, fmt.Sprintf("q%d", i), candidates(fmt.Sprint(i)))
			}

			Convey("And a fourth key is stored", func() {
				c.Put(ctx, "q4", candidates("4"))

				Convey("Then the oldest entry is evicted", func() {
					So(c.Size(), ShouldEqual, 3)
					_, ok := c.Get(ctx, "q1")
					So(ok, ShouldBeFalse)
					for _, k := range []string{"q2", "q3", "q4"} {
						_, ok := c.Get(ctx, k)
						So(ok, ShouldBeTrue)
					}
				})
			})

			Convey("And many keys are stored", func() {
				for i := 5; i < 100; i++ {
					c.Put(ctx, fmt.Sprintf("q%d", i), candidates(fmt.Sprint(i)))
				}

				Convey("Then the size never exceeds the bound", func() {
					So(c.Size(), ShouldEqual, 3)
					_, ok := c.Get(ctx, "q99")
					So(ok, ShouldBeTrue)
				})
			})
		})

		Convey("When the cache is unbounded", func() {
			c := cache.NewInMemory(cache.WithMaxSize(0))
			for i := 0; i < 500; i++ {
				c.Put(ctx, fmt.Sprintf("q%d", i), candidates("x"))
			}

			Convey("Then nothing is evicted", func() {
				So(c.Size(), ShouldEqual, 500)
				_, ok := c.Get(ctx, "q0")
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When entries have a TTL", func() {
			now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			clock := func() time.Time { return now }
			c := cache.NewInMemory(cache.WithTTL(time.Hour), cache.WithClock(clock))
			c.Put(ctx, "q1", candidates("a"))
			c.Put(ctx, "q2", candidates("b"))

			Convey("Then fresh entries are served", func() {
				now = now.Add(59 * time.Minute)
				_, ok := c.Get(ctx, "q1")
				So(ok, ShouldBeTrue)
			})

			Convey("Then expired entries are dropped on read", func() {
				now = now.Add(time.Hour)
				_, ok := c.Get(ctx, "q1")
				So(ok, ShouldBeFalse)
				So(c.Size(), ShouldEqual, 1)
				_, ok = c.Get(ctx, "q2")
				So(ok, ShouldBeFalse)
				So(c.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestInMemoryCacheConcurrency(t *testing.T) {
	Convey("Given a bounded cache shared by many goroutines", t, func() {
		ctx := context.Background()
		c := cache.NewInMemory(cache.WithMaxSize(50))

		Convey("When readers and writers run concurrently", func() {
			var wg sync.WaitGroup
			for w := 0; w < 8; w++ {
				wg.Add(1)
				go func(worker int) {
					defer wg.Done()
					for i := 0; i < 200; i++ {
						key := fmt.Sprintf("w%d-q%d", worker, i%70)
						c.Put(ctx, key, candidates(key))
						c.Get(ctx, key)
					}
				}(w)
			}
			wg.Wait()

			Convey("Then the bound holds", func() {
				So(c.Size(), ShouldBeLessThanOrEqualTo, 50)
				So(c.Size(), ShouldBeGreaterThan, 0)
			})
		})
	})
}
