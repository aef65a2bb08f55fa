package dedupe_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/okian/coachboard/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a key is new", func() {
			seen := d.SeenAndRecord(ctx, "key-1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key repeats", func() {
			d.SeenAndRecord(ctx, "key-1")
			seen := d.SeenAndRecord(ctx, "key-1")

			Convey("Then it is reported as seen without growing the set", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "key-1")
			d.SeenAndRecord(ctx, "key-2")
			d.Unrecord(ctx, "key-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 1)
				So(d.SeenAndRecord(ctx, "key-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "key-2"), ShouldBeTrue)
			})
		})
	})

	Convey("Given a bounded deduper at capacity", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		for _, k := range []string{"a", "b", "c"} {
			d.SeenAndRecord(ctx, k)
		}

		Convey("When a new key arrives", func() {
			d.SeenAndRecord(ctx, "d")

			Convey("Then the least recently seen key is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When an old key is seen again before the new one arrives", func() {
			So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
			d.SeenAndRecord(ctx, "d")

			Convey("Then the refreshed key survives and the next oldest goes", func() {
				So(d.SeenAndRecord(ctx, "a"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "b"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		for _, size := range []int{0, -5} {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(size))
			for i := 0; i < 20_000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i))
			}

			So(d.Size(), ShouldEqual, 20_000)
			So(d.SeenAndRecord(ctx, "key-0"), ShouldBeTrue)
		}
	})

	Convey("Given unusual keys", t, func() {
		d := dedupe.NewInMemoryDeduper()
		long := strings.Repeat("x", 10_000)

		So(d.SeenAndRecord(ctx, ""), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, ""), ShouldBeTrue)
		So(d.SeenAndRecord(ctx, long), ShouldBeFalse)
		So(d.SeenAndRecord(ctx, long), ShouldBeTrue)
	})
}

func TestInMemoryDeduperConcurrency(t *testing.T) {
	Convey("Given many goroutines racing on the same keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1_000))

		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			fresh = map[string]int{}
		)
		for g := 0; g < 16; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 100; i++ {
					key := fmt.Sprintf("key-%d", i)
					if !d.SeenAndRecord(ctx, key) {
						mu.Lock()
						fresh[key]++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then every key is recorded exactly once", func() {
			So(d.Size(), ShouldEqual, 100)
			So(len(fresh), ShouldEqual, 100)
			for _, n := range fresh {
				So(n, ShouldEqual, 1)
			}
		})
	})
}
