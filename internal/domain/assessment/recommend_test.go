package assessment_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/coachboard/internal/domain/assessment"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecommend(t *testing.T) {
	Convey("Given strong ratios and small deficits on both sides", t, func() {
		recs := assessment.Recommend(assessment.RecommendInput{
			Ratio:        assessment.Sides{Left: 1.1, Right: 1.0},
			PercentBelow: assessment.Sides{Left: 5, Right: 9.9},
			Goal:         "Sprint",
		})

		Convey("Then the badge is Excellent", func() {
			So(recs.Badges, ShouldResemble, []string{assessment.BadgeExcellent})
		})

		Convey("And both sides are on track", func() {
			So(recs.Notes.Left, ShouldResemble, []string{assessment.NoteMeetsPower, assessment.NoteOnTrack})
			So(recs.Notes.Right, ShouldResemble, []string{assessment.NoteMeetsPower, assessment.NoteOnTrack})
			So(recs.Goal, ShouldEqual, "Sprint")
		})
	})

	Convey("Given a side more than 25% below target", t, func() {
		recs := assessment.Recommend(assessment.RecommendInput{
			Ratio:        assessment.Sides{Left: 0.8, Right: 1.2},
			PercentBelow: assessment.Sides{Left: 30, Right: 12},
		})

		Convey("Then the badge is High Deficit", func() {
			So(recs.Badges, ShouldResemble, []string{assessment.BadgeHighDeficit})
		})

		Convey("And each side is classified independently", func() {
			So(recs.Notes.Left, ShouldResemble, []string{assessment.NoteNeedsPower, assessment.NoteSignificantForce})
			So(recs.Notes.Right, ShouldResemble, []string{assessment.NoteMeetsPower, assessment.NoteModerateForce})
		})

		Convey("And a missing goal renders as a dash", func() {
			So(recs.Goal, ShouldEqual, assessment.NoGoal)
		})
	})

	Convey("Given excellent ratios but a 25% deficit exactly", t, func() {
		recs := assessment.Recommend(assessment.RecommendInput{
			Ratio:        assessment.Sides{Left: 1, Right: 1},
			PercentBelow: assessment.Sides{Left: 25, Right: 10},
		})

		Convey("Then the badge falls through to Improving", func() {
			So(recs.Badges, ShouldResemble, []string{assessment.BadgeImproving})
			So(recs.Notes.Left[1], ShouldEqual, assessment.NoteModerateForce)
			So(recs.Notes.Right[1], ShouldEqual, assessment.NoteOnTrack)
		})
	})

	Convey("Given a computed result", t, func() {
		res := assessment.ComputeAt(sampleInput(), refTime)
		recs := assessment.RecommendFor(res)

		Convey("Then the recommendations read its ratios and deficits", func() {
			want := assessment.Recommendations{
				Badges: []string{assessment.BadgeImproving},
				Notes: assessment.SideNotes{
					Left:  []string{assessment.NoteMeetsPower, assessment.NoteModerateForce},
					Right: []string{assessment.NoteNeedsPower, assessment.NoteOnTrack},
				},
				Goal: "Increase jump height",
			}
			So(cmp.Diff(want, recs), ShouldBeEmpty)
		})
	})
}

func TestBuildRecord(t *testing.T) {
	Convey("Given an evaluated assessment", t, func() {
		in := sampleInput()
		in.CustomTarget = "700"
		res := assessment.ComputeAt(in, refTime)
		recs := assessment.RecommendFor(res)

		rec, err := assessment.BuildRecord(in, res, recs)

		Convey("Then the record carries inputs and computed values", func() {
			So(err, ShouldBeNil)
			So(rec.AthleteID, ShouldEqual, "42")
			So(rec.TargetForce, ShouldEqual, 700)
			So(*rec.CustomTarget, ShouldEqual, 700)
			So(rec.RatioLeft, ShouldEqual, 1.08)
			So(rec.PercentBelowLeft, ShouldEqual, 14.3)
		})

		Convey("And the summary is the JSON form of the recommendations", func() {
			var got assessment.Recommendations
			So(json.Unmarshal([]byte(rec.RecommendationSummary), &got), ShouldBeNil)
			So(cmp.Diff(recs, got), ShouldBeEmpty)
		})
	})

	Convey("Given a blank or unparsable custom target", t, func() {
		for _, v := range []any{"", nil, "abc"} {
			in := sampleInput()
			in.CustomTarget = v
			res := assessment.ComputeAt(in, refTime)
			rec, err := assessment.BuildRecord(in, res, assessment.RecommendFor(res))

			So(err, ShouldBeNil)
			So(rec.CustomTarget, ShouldBeNil)
		}
	})

	Convey("Given an explicit zero custom target", t, func() {
		in := sampleInput()
		in.CustomTarget = "0"
		res := assessment.ComputeAt(in, refTime)
		rec, err := assessment.BuildRecord(in, res, assessment.RecommendFor(res))

		Convey("Then the zero is kept", func() {
			So(err, ShouldBeNil)
			So(rec.CustomTarget, ShouldNotBeNil)
			So(*rec.CustomTarget, ShouldEqual, 0)
		})
	})
}
