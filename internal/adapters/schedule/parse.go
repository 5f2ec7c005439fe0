// Package schedule scrapes season schedules from pro-football-reference
// game tables.
package schedule

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/okian/yaculator/internal/domain/model"
)

// Cell aliases by data-stat. Upcoming seasons list visitor and home teams;
// completed seasons list winner and loser with an "@" location marker.
var (
	statWeek     = []string{"week_num"}
	statDay      = []string{"game_day_of_week"}
	statDate     = []string{"game_date", "boxscore_word"}
	statTime     = []string{"gametime"}
	statVisitor  = []string{"visitor_team"}
	statHome     = []string{"home_team"}
	statVisitPts = []string{"pts_visitor", "visitor_pts"}
	statHomePts  = []string{"pts_home", "home_pts"}
	statWinner   = []string{"winner"}
	statLoser    = []string{"loser"}
	statLocation = []string{"game_location"}
	statWinPts   = []string{"pts_win"}
	statLosePts  = []string{"pts_lose"}
)

var commentStripper = strings.NewReplacer("<!--", "", "-->", "")

// Parse reads a games page and returns its regular-season games. Rows whose
// week is not a number (playoff rounds, repeated headers) are skipped.
func Parse(r io.Reader) ([]model.Game, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// Tables are sometimes shipped inside HTML comments.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(commentStripper.Replace(string(raw))))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table#games").First()
	if table.Length() == 0 {
		return nil, ErrNoGamesTable
	}

	var games []model.Game
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") {
			return
		}
		week, err := strconv.Atoi(cell(tr, statWeek))
		if err != nil {
			return
		}
		g := model.Game{
			Week: week,
			Day:  cell(tr, statDay),
			Date: cell(tr, statDate),
			Time: cell(tr, statTime),
		}
		if home := cell(tr, statHome); home != "" {
			g.Home = home
			g.Visitor = cell(tr, statVisitor)
			g.HomePoints = points(cell(tr, statHomePts))
			g.VisitorPoints = points(cell(tr, statVisitPts))
		} else {
			winner, loser := cell(tr, statWinner), cell(tr, statLoser)
			winPts, losePts := points(cell(tr, statWinPts)), points(cell(tr, statLosePts))
			if cell(tr, statLocation) == "@" {
				g.Home, g.Visitor = loser, winner
				g.HomePoints, g.VisitorPoints = losePts, winPts
			} else {
				g.Home, g.Visitor = winner, loser
				g.HomePoints, g.VisitorPoints = winPts, losePts
			}
		}
		if g.Home == "" || g.Visitor == "" {
			return
		}
		games = append(games, g)
	})
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: no regular-season rows", ErrNoGamesTable)
	}
	return games, nil
}

func cell(tr *goquery.Selection, stats []string) string {
	for _, ds := range stats {
		sel := tr.Find(fmt.Sprintf(`th[data-stat=%q], td[data-stat=%q]`, ds, ds)).First()
		if sel.Length() > 0 {
			return strings.TrimSpace(sel.Text())
		}
	}
	return ""
}

func points(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
