package schedule

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const upcomingPage = `<html><body>
<div id="all_games"><!--
<table id="games"><thead><tr><th data-stat="week_num">Week</th></tr></thead>
<tbody>
<tr>
  <th data-stat="week_num">1</th>
  <td data-stat="game_day_of_week">Thu</td>
  <td data-stat="game_date">2025-09-04</td>
  <td data-stat="visitor_team">Dallas Cowboys</td>
  <td data-stat="pts_visitor"></td>
  <td data-stat="home_team">Philadelphia Eagles</td>
  <td data-stat="pts_home"></td>
  <td data-stat="gametime">8:20PM</td>
</tr>
<tr class="thead"><th data-stat="week_num">Week</th></tr>
<tr>
  <th data-stat="week_num">2</th>
  <td data-stat="game_day_of_week">Sun</td>
  <td data-stat="game_date">2025-09-14</td>
  <td data-stat="visitor_team">Chicago Bears</td>
  <td data-stat="home_team">Detroit Lions</td>
  <td data-stat="gametime">1:00PM</td>
</tr>
<tr>
  <th data-stat="week_num">WildCard</th>
  <td data-stat="visitor_team">Green Bay Packers</td>
  <td data-stat="home_team">Detroit Lions</td>
</tr>
</tbody></table>
--></div></body></html>`

const completedPage = `<html><body>
<table id="games"><tbody>
<tr>
  <th data-stat="week_num">1</th>
  <td data-stat="game_day_of_week">Sun</td>
  <td data-stat="boxscore_word">2024-09-08</td>
  <td data-stat="gametime">4:25PM</td>
  <td data-stat="winner">Detroit Lions</td>
  <td data-stat="game_location"></td>
  <td data-stat="loser">Los Angeles Rams</td>
  <td data-stat="pts_win">26</td>
  <td data-stat="pts_lose">20</td>
</tr>
<tr>
  <th data-stat="week_num">1</th>
  <td data-stat="game_day_of_week">Sun</td>
  <td data-stat="game_date">2024-09-08</td>
  <td data-stat="winner">Pittsburgh Steelers</td>
  <td data-stat="game_location">@</td>
  <td data-stat="loser">Atlanta Falcons</td>
  <td data-stat="pts_win">18</td>
  <td data-stat="pts_lose">10</td>
</tr>
</tbody></table></body></html>`

func TestParseUpcomingSeason(t *testing.T) {
	Convey("Given an upcoming-season page with a commented-out table", t, func() {
		games, err := Parse(strings.NewReader(upcomingPage))

		Convey("Then only regular-season rows are returned", func() {
			So(err, ShouldBeNil)
			So(games, ShouldHaveLength, 2)
		})

		Convey("Then visitor and home come from their own columns", func() {
			g := games[0]
			So(g.Week, ShouldEqual, 1)
			So(g.Day, ShouldEqual, "Thu")
			So(g.Date, ShouldEqual, "2025-09-04")
			So(g.Time, ShouldEqual, "8:20PM")
			So(g.Visitor, ShouldEqual, "Dallas Cowboys")
			So(g.Home, ShouldEqual, "Philadelphia Eagles")
			So(g.HomePoints, ShouldBeNil)
			So(g.VisitorPoints, ShouldBeNil)
			So(games[1].Home, ShouldEqual, "Detroit Lions")
		})
	})
}

func TestParseCompletedSeason(t *testing.T) {
	Convey("Given a completed-season page with winner and loser columns", t, func() {
		games, err := Parse(strings.NewReader(completedPage))
		So(err, ShouldBeNil)
		So(games, ShouldHaveLength, 2)

		Convey("Then a home winner keeps the winner as home", func() {
			g := games[0]
			So(g.Home, ShouldEqual, "Detroit Lions")
			So(g.Visitor, ShouldEqual, "Los Angeles Rams")
			So(*g.HomePoints, ShouldEqual, 26)
			So(*g.VisitorPoints, ShouldEqual, 20)
			So(g.Date, ShouldEqual, "2024-09-08")
		})

		Convey("Then an @ marker makes the loser the home team", func() {
			g := games[1]
			So(g.Home, ShouldEqual, "Atlanta Falcons")
			So(g.Visitor, ShouldEqual, "Pittsburgh Steelers")
			So(*g.HomePoints, ShouldEqual, 10)
			So(*g.VisitorPoints, ShouldEqual, 18)
		})
	})
}

func TestParseErrors(t *testing.T) {
	Convey("Given a page without a games table", t, func() {
		_, err := Parse(strings.NewReader("<html><table id=\"other\"></table></html>"))
		So(errors.Is(err, ErrNoGamesTable), ShouldBeTrue)
	})

	Convey("Given a games table with only playoff rows", t, func() {
		page := `<table id="games"><tbody><tr><th data-stat="week_num">Division</th>
<td data-stat="visitor_team">A</td><td data-stat="home_team">B</td></tr></tbody></table>`
		_, err := Parse(strings.NewReader(page))
		So(errors.Is(err, ErrNoGamesTable), ShouldBeTrue)
	})
}

func TestScraperFetch(t *testing.T) {
	Convey("Given a schedule server", t, func() {
		var gotPath, gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotUA = r.Header.Get("User-Agent")
			if strings.Contains(r.URL.Path, "1999") {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(upcomingPage))
		}))
		defer srv.Close()

		s := New(WithBaseURL(srv.URL), WithRate(0), WithUserAgent("test-agent"))

		Convey("When a season is fetched", func() {
			games, err := s.Fetch(context.Background(), 2025)

			Convey("Then the season page is parsed", func() {
				So(err, ShouldBeNil)
				So(games, ShouldHaveLength, 2)
				So(gotPath, ShouldEqual, "/years/2025/games.htm")
				So(gotUA, ShouldEqual, "test-agent")
			})
		})

		Convey("When the server rejects the request", func() {
			_, err := s.Fetch(context.Background(), 1999)

			Convey("Then a status error is returned", func() {
				So(errors.Is(err, ErrStatus), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := New(WithBaseURL(srv.URL)).Fetch(ctx, 2025)

			Convey("Then the fetch fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
