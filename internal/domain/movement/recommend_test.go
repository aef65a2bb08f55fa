package movement_test

import (
	"testing"

	"github.com/okian/coachboard/internal/domain/movement"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecommend(t *testing.T) {
	Convey("Given two red flags", t, func() {
		for _, fails := range []int{0, 3, 9} {
			recs := movement.Recommend(movement.RecommendInput{TotalFails: fails, RedFlags: []string{"a", "b"}})
			So(recs.Badges, ShouldResemble, []string{movement.BadgeHighRisk})
		}
	})

	Convey("Given five or more failures and one red flag", t, func() {
		recs := movement.Recommend(movement.RecommendInput{TotalFails: 5, RedFlags: []string{"a"}})

		Convey("Then the badge is Needs Work", func() {
			So(recs.Badges, ShouldResemble, []string{movement.BadgeNeedsWork})
		})
	})

	Convey("Given at most one failure", t, func() {
		recs := movement.Recommend(movement.RecommendInput{TotalFails: 1})

		Convey("Then the badge is Solid", func() {
			So(recs.Badges, ShouldResemble, []string{movement.BadgeSolid})
		})
	})

	Convey("Given two to four failures and no red flags", t, func() {
		for _, fails := range []int{2, 3, 4} {
			recs := movement.Recommend(movement.RecommendInput{TotalFails: fails, RedFlags: []string{}})
			So(recs.Badges, ShouldBeEmpty)
		}
	})

	Convey("Given failures across the plan categories", t, func() {
		recs := movement.Recommend(movement.RecommendInput{
			TotalFails: 6,
			RedFlags:   []string{movement.KneeValgus, movement.ContralateralHipDrop},
			ByCategory: movement.Counts{
				{Category: "overhead", Fails: 1},
				{Category: "standing", Fails: 2},
				{Category: "lunge", Fails: 0},
				{Category: "splitDF", Fails: 3},
			},
		})

		Convey("Then focus areas are sorted by failures, zero categories dropped", func() {
			So(recs.FocusAreas, ShouldResemble, []string{"splitDF", "standing", "overhead"})
		})

		Convey("And plan lines follow the fixed category order, red flags last", func() {
			So(recs.Plan, ShouldResemble, []string{
				movement.PlanStanding,
				movement.PlanSplitDF,
				movement.PlanOverhead,
				"Address red flags: Knee Valgus, Contralateral Hip Drop",
			})
		})
	})

	Convey("Given focus areas outside the plan categories", t, func() {
		recs := movement.Recommend(movement.RecommendInput{
			TotalFails: 3,
			ByCategory: movement.Counts{{Category: "Squat Test", Fails: 2}, {Category: "Lunge Test", Fails: 2}},
		})

		Convey("Then ties keep category order and no plan lines are produced", func() {
			So(recs.FocusAreas, ShouldResemble, []string{"Squat Test", "Lunge Test"})
			So(recs.Plan, ShouldBeEmpty)
			So(recs.Badges, ShouldBeEmpty)
		})
	})
}

func TestAnalyzeMuscles(t *testing.T) {
	Convey("Given failed checks with overlapping muscle groups", t, func() {
		var tests movement.Tests
		tests.Set("Standing Test", movement.KneeValgus, true)
		tests.Set("Standing Test", "Toes Turn Out", false)
		tests.Set("Split DF Test", "Thigh ADD/IR", true)
		tests.Set("Split DF Test", "Unmapped Finding", true)

		im := movement.AnalyzeMuscles(&tests)

		Convey("Then each muscle is listed once in first-seen order", func() {
			So(im.Over, ShouldResemble, []string{"Adductor Magnus", "TFL"})
			So(im.Under, ShouldResemble, []string{"Glute Med", "Piriformis", "Glute Max"})
		})
	})

	Convey("Given no failures", t, func() {
		im := movement.AnalyzeMuscles(&movement.Tests{})

		Convey("Then both lists are empty", func() {
			So(im.Over, ShouldBeEmpty)
			So(im.Under, ShouldBeEmpty)
		})
	})
}
