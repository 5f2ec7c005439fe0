package model

import "sort"

// Game is one row of the season schedule.
type Game struct {
	Week          int
	Day           string
	Date          string
	Time          string
	Home          string
	Visitor       string
	HomePoints    *int
	VisitorPoints *int
}

// Involves reports whether team plays in g.
func (g Game) Involves(team string) bool {
	return g.Home == team || g.Visitor == team
}

// OpponentOf returns the side of g that is not team.
func (g Game) OpponentOf(team string) string {
	if g.Visitor == team {
		return g.Home
	}
	return g.Visitor
}

// Schedule is an ordered list of games with a (week, team) index.
type Schedule struct {
	games []Game
	index map[weekTeam]int
}

type weekTeam struct {
	week int
	team string
}

// NewSchedule indexes games. When a team appears twice in one week the first
// row wins.
func NewSchedule(games []Game) *Schedule {
	s := &Schedule{
		games: append([]Game(nil), games...),
		index: make(map[weekTeam]int, len(games)*2),
	}
	for i, g := range s.games {
		for _, team := range [...]string{g.Visitor, g.Home} {
			k := weekTeam{week: g.Week, team: team}
			if _, ok := s.index[k]; !ok {
				s.index[k] = i
			}
		}
	}
	return s
}

// Game returns the game team plays in week.
func (s *Schedule) Game(team string, week int) (Game, bool) {
	if s == nil {
		return Game{}, false
	}
	i, ok := s.index[weekTeam{week: week, team: team}]
	if !ok {
		return Game{}, false
	}
	return s.games[i], true
}

// Opponent returns the team's opponent in week.
func (s *Schedule) Opponent(team string, week int) (string, bool) {
	g, ok := s.Game(team, week)
	if !ok {
		return "", false
	}
	return g.OpponentOf(team), true
}

// Games returns a copy of all games in file order.
func (s *Schedule) Games() []Game {
	if s == nil {
		return nil
	}
	return append([]Game(nil), s.games...)
}

// Weeks returns the distinct weeks in ascending order.
func (s *Schedule) Weeks() []int {
	if s == nil {
		return nil
	}
	seen := make(map[int]struct{})
	var weeks []int
	for _, g := range s.games {
		if _, ok := seen[g.Week]; ok {
			continue
		}
		seen[g.Week] = struct{}{}
		weeks = append(weeks, g.Week)
	}
	sort.Ints(weeks)
	return weeks
}

// Len returns the number of games.
func (s *Schedule) Len() int {
	if s == nil {
		return 0
	}
	return len(s.games)
}
