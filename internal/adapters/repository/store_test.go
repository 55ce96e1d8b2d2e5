package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/quickdraw/internal/adapters/repository"
	. "github.com/smartystreets/goconvey/convey"
)

// Both implementations must honor the same contract; run the suite against
// each. Constructors are invoked inside the Convey tree so every leaf gets a
// fresh store.
func stores(t *testing.T) map[string]func() repository.Store {
	t.Helper()

	n := 0
	return map[string]func() repository.Store{
		"memory": func() repository.Store { return repository.NewMemoryStore() },
		"sqlite": func() repository.Store {
			n++
			s, err := repository.Open(filepath.Join(t.TempDir(), fmt.Sprintf("scores-%d.db", n)))
			if err != nil {
				t.Fatalf("open sqlite store: %v", err)
			}
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func TestStore_Merge(t *testing.T) {
	for name, newStore := range stores(t) {
		Convey(fmt.Sprintf("Given an empty %s store", name), t, func() {
			ctx := context.Background()
			store := newStore()

			Convey("When merging a first submission", func() {
				err := store.Merge(ctx, repository.Record{
					ChannelID: "C1", SubjectID: "U1", DisplayName: "Ana",
					AverageMs: 300, BestMs: 250,
				})
				So(err, ShouldBeNil)

				Convey("Then it is stored as-is", func() {
					recs, err := store.TopN(ctx, "C1", 10)
					So(err, ShouldBeNil)
					So(recs, ShouldHaveLength, 1)
					So(recs[0].AverageMs, ShouldEqual, 300)
					So(recs[0].BestMs, ShouldEqual, 250)
				})

				Convey("And merging a second run takes each minimum independently", func() {
					err := store.Merge(ctx, repository.Record{
						ChannelID: "C1", SubjectID: "U1", DisplayName: "Ana",
						AverageMs: 350, BestMs: 240,
					})
					So(err, ShouldBeNil)

					recs, err := store.TopN(ctx, "C1", 10)
					So(err, ShouldBeNil)
					So(recs, ShouldHaveLength, 1)
					// Average kept from the first run, best from the second.
					So(recs[0].AverageMs, ShouldEqual, 300)
					So(recs[0].BestMs, ShouldEqual, 240)
				})

				Convey("And the display name is last-writer-wins", func() {
					err := store.Merge(ctx, repository.Record{
						ChannelID: "C1", SubjectID: "U1", DisplayName: "Ana Renamed",
						AverageMs: 900, BestMs: 900,
					})
					So(err, ShouldBeNil)

					recs, err := store.TopN(ctx, "C1", 10)
					So(err, ShouldBeNil)
					So(recs[0].DisplayName, ShouldEqual, "Ana Renamed")
					// Worse metrics leave the stored minima untouched.
					So(recs[0].AverageMs, ShouldEqual, 300)
					So(recs[0].BestMs, ShouldEqual, 250)
				})
			})
		})
	}
}

func TestStore_TopNOrdering(t *testing.T) {
	for name, newStore := range stores(t) {
		Convey(fmt.Sprintf("Given a populated %s store", name), t, func() {
			ctx := context.Background()
			store := newStore()

			seed := []repository.Record{
				{ChannelID: "C1", SubjectID: "A", DisplayName: "A", AverageMs: 200, BestMs: 190},
				{ChannelID: "C1", SubjectID: "B", DisplayName: "B", AverageMs: 200, BestMs: 180},
				{ChannelID: "C1", SubjectID: "C", DisplayName: "C", AverageMs: 150, BestMs: 500},
				{ChannelID: "C2", SubjectID: "D", DisplayName: "D", AverageMs: 1, BestMs: 1},
			}
			for _, rec := range seed {
				So(store.Merge(ctx, rec), ShouldBeNil)
			}

			Convey("When querying the top entries", func() {
				recs, err := store.TopN(ctx, "C1", 10)
				So(err, ShouldBeNil)

				Convey("Then ordering is average asc, ties broken by best asc", func() {
					So(recs, ShouldHaveLength, 3)
					So(recs[0].SubjectID, ShouldEqual, "C")
					So(recs[1].SubjectID, ShouldEqual, "B")
					So(recs[2].SubjectID, ShouldEqual, "A")
				})

				Convey("And other channels are not mixed in", func() {
					for _, rec := range recs {
						So(rec.ChannelID, ShouldEqual, "C1")
					}
				})
			})

			Convey("When querying with a limit", func() {
				recs, err := store.TopN(ctx, "C1", 2)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 2)
				So(recs[0].SubjectID, ShouldEqual, "C")
			})

			Convey("When querying with an invalid limit", func() {
				_, err := store.TopN(ctx, "C1", 0)
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})

			Convey("When querying an unknown channel", func() {
				recs, err := store.TopN(ctx, "nope", 10)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 0)
			})
		})
	}
}

func TestStore_BoardMessage(t *testing.T) {
	for name, newStore := range stores(t) {
		Convey(fmt.Sprintf("Given a %s store", name), t, func() {
			ctx := context.Background()
			store := newStore()

			Convey("When no board message was recorded", func() {
				_, err := store.BoardMessage(ctx, "C1")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("When recording a board message", func() {
				So(store.SetBoardMessage(ctx, "C1", "msg-1"), ShouldBeNil)

				id, err := store.BoardMessage(ctx, "C1")
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "msg-1")

				Convey("And overwriting it replaces the handle", func() {
					So(store.SetBoardMessage(ctx, "C1", "msg-2"), ShouldBeNil)

					id, err := store.BoardMessage(ctx, "C1")
					So(err, ShouldBeNil)
					So(id, ShouldEqual, "msg-2")
				})

				Convey("And channels are independent", func() {
					_, err := store.BoardMessage(ctx, "C2")
					So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				})
			})
		})
	}
}

func TestStore_ConcurrentMerge(t *testing.T) {
	for name, newStore := range stores(t) {
		Convey(fmt.Sprintf("Given concurrent merges on one key in the %s store", name), t, func() {
			ctx := context.Background()
			store := newStore()

			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_ = store.Merge(ctx, repository.Record{
						ChannelID: "C1", SubjectID: "U1", DisplayName: "Ana",
						AverageMs: float64(300 + i), BestMs: float64(260 - i),
					})
				}(i)
			}
			wg.Wait()

			Convey("Then the stored record holds both minima", func() {
				recs, err := store.TopN(ctx, "C1", 1)
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].AverageMs, ShouldEqual, 300)
				So(recs[0].BestMs, ShouldEqual, 260-31)
			})
		})
	}
}
