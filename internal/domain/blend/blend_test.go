package blend

import (
	"errors"
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func cellFloat(t Table, row int, col string) float64 {
	v, err := strconv.ParseFloat(t.Rows[row][t.Column(col)], 64)
	if err != nil {
		return -1
	}
	return v
}

func TestBlend(t *testing.T) {
	Convey("Given three seasons of receiver stats", t, func() {
		s24 := Table{
			Header: []string{"Player", "Team", "SlotSnapRate", "Only2024"},
			Rows: [][]string{
				{"A. Receiver", "DET", "0.6", "x"},
				{"Rookie", "GB", "0.2", "y"},
			},
		}
		s23 := Table{
			Header: []string{"Team", "Player", "SlotSnapRate"},
			Rows: [][]string{
				{"CHI", "A. Receiver", "0.4"},
			},
		}
		s22 := Table{
			Header: []string{"Player", "SlotSnapRate", "Team"},
			Rows: [][]string{
				{"A. Receiver", "0.2", "CHI"},
				{"Retired", "0.9", "MIN"},
			},
		}

		out, err := Blend([]Table{s24, s23, s22}, DefaultWeights, "Player")
		So(err, ShouldBeNil)

		Convey("Then only shared columns survive, in the latest order", func() {
			So(out.Header, ShouldResemble, []string{"Player", "Team", "SlotSnapRate"})
		})

		Convey("Then the player set comes from the latest season", func() {
			So(out.Len(), ShouldEqual, 2)
			So(out.Rows[0][0], ShouldEqual, "A. Receiver")
			So(out.Rows[1][0], ShouldEqual, "Rookie")
		})

		Convey("Then numeric columns are the weighted mean", func() {
			So(cellFloat(out, 0, "SlotSnapRate"), ShouldAlmostEqual, 0.5*0.6+0.3*0.4+0.2*0.2, 1e-12)
		})

		Convey("Then text columns come from the latest season", func() {
			So(out.Rows[0][out.Column("Team")], ShouldEqual, "DET")
		})

		Convey("Then a player missing from older seasons keeps its own value", func() {
			So(cellFloat(out, 1, "SlotSnapRate"), ShouldAlmostEqual, 0.2, 1e-12)
		})
	})

	Convey("Given a player present in two of three seasons", t, func() {
		s24 := Table{Header: []string{"PlayerYear", "Catch Rate Allowed"}, Rows: [][]string{{"CB1", "0.7"}}}
		s23 := Table{Header: []string{"PlayerYear", "Catch Rate Allowed"}, Rows: [][]string{{"CB1", "0.5"}}}
		s22 := Table{Header: []string{"PlayerYear", "Catch Rate Allowed"}}

		out, err := Blend([]Table{s24, s23, s22}, DefaultWeights, "PlayerYear")

		Convey("Then weights renormalize over the seasons present", func() {
			So(err, ShouldBeNil)
			So(cellFloat(out, 0, "Catch Rate Allowed"), ShouldAlmostEqual, (0.5*0.7+0.3*0.5)/0.8, 1e-12)
		})
	})

	Convey("Given invalid inputs", t, func() {
		one := Table{Header: []string{"Player"}, Rows: [][]string{{"A"}}}

		Convey("Then no tables is an error", func() {
			_, err := Blend(nil, nil, "Player")
			So(errors.Is(err, ErrNoTables), ShouldBeTrue)
		})

		Convey("Then mismatched weights are an error", func() {
			_, err := Blend([]Table{one}, DefaultWeights, "Player")
			So(errors.Is(err, ErrWeightCount), ShouldBeTrue)
		})

		Convey("Then a negative weight is an error", func() {
			_, err := Blend([]Table{one}, []float64{-1}, "Player")
			So(errors.Is(err, ErrInvalidWeight), ShouldBeTrue)
		})

		Convey("Then a missing key column is an error", func() {
			_, err := Blend([]Table{one}, []float64{1}, "PlayerYear")
			So(errors.Is(err, ErrMissingKey), ShouldBeTrue)
		})
	})
}
