package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/okian/yaculator/internal/adapters/repository"
	"github.com/okian/yaculator/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func result(week int, receiver string, pts float64) model.Result {
	return model.Result{Week: week, Receiver: receiver, Team: "DET", AdjustedPoints: pts}
}

func TestMemoryStore(t *testing.T) {
	convey.Convey("Given a store with two weeks of projections", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithMaxLimit(10))
		err := store.Replace(ctx, []model.Result{
			result(1, "Jameson Williams", 6.1),
			result(1, "Amon-Ra St. Brown", 9.4),
			result(1, "Kalif Raymond", 6.1),
			result(2, "Amon-Ra St. Brown", 8.0),
		}, []model.TeamSummary{{Team: "DET", Count: 4}})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When reading the top of week 1", func() {
			top, err := store.TopN(ctx, 1, 5)

			convey.Convey("Then ties break on receiver name", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(top, convey.ShouldHaveLength, 3)
				convey.So(top[0].Result.Receiver, convey.ShouldEqual, "Amon-Ra St. Brown")
				convey.So(top[1].Result.Receiver, convey.ShouldEqual, "Jameson Williams")
				convey.So(top[2].Result.Receiver, convey.ShouldEqual, "Kalif Raymond")
				convey.So(top[2].Rank, convey.ShouldEqual, 3)
				convey.So(top[2].Of, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When ranking one receiver", func() {
			e, err := store.Rank(ctx, "Kalif Raymond", 1)
			convey.So(err, convey.ShouldBeNil)
			convey.So(e.Rank, convey.ShouldEqual, 3)

			_, err = store.Rank(ctx, "Kalif Raymond", 2)
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
		})

		convey.Convey("When the limit is out of range", func() {
			_, err := store.TopN(ctx, 1, 0)
			convey.So(errors.Is(err, repository.ErrInvalidLimit), convey.ShouldBeTrue)
			_, err = store.TopN(ctx, 1, 11)
			convey.So(errors.Is(err, repository.ErrInvalidLimit), convey.ShouldBeTrue)
		})

		convey.Convey("Then bookkeeping reflects the run", func() {
			convey.So(store.Count(ctx), convey.ShouldEqual, 4)
			convey.So(store.Weeks(ctx), convey.ShouldResemble, []int{1, 2})
			convey.So(store.Summaries(ctx)[0].Team, convey.ShouldEqual, "DET")
			empty, err := store.TopN(ctx, 9, 3)
			convey.So(err, convey.ShouldBeNil)
			convey.So(empty, convey.ShouldBeEmpty)
		})

		convey.Convey("When a run repeats a receiver-week", func() {
			err := store.Replace(ctx, []model.Result{result(1, "A", 1), result(1, "A", 2)}, nil)

			convey.Convey("Then it is rejected and the old run stays", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(store.Count(ctx), convey.ShouldEqual, 4)
			})
		})
	})
}

func TestMemoryStoreConcurrentReads(t *testing.T) {
	convey.Convey("Given readers racing a replace", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_, _ = store.TopN(ctx, 1, 3)
					_ = store.Count(ctx)
				}
			}()
		}
		for j := 0; j < 20; j++ {
			_ = store.Replace(ctx, []model.Result{result(1, "A", float64(j))}, nil)
		}
		wg.Wait()

		convey.So(store.Count(ctx), convey.ShouldEqual, 1)
	})
}
