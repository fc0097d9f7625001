package models

import "time"

type Streak struct {
	CurrentStreak    int    `json:"currentStreak"`
	LongestStreak    int    `json:"longestStreak"`
	LastActivityDate string `json:"lastActivityDate,omitempty"`
}

// Active reports whether the last activity was today or yesterday relative to now.
func (s Streak) Active(now time.Time) bool {
	if s.LastActivityDate == "" || s.CurrentStreak == 0 {
		return false
	}
	last, err := parseDay(s.LastActivityDate, now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.Sub(last) <= 24*time.Hour
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
		}
	}
	if len(s) >= 10 {
		return time.ParseInLocation("2006-01-02", s[:10], loc)
	}
	return time.Time{}, &time.ParseError{Value: s, Layout: "2006-01-02"}
}

type Points struct {
	TotalPoints int `json:"totalPoints"`
	Level       int `json:"level"`
}

const pointsPerLevel = 100

// LevelProgress is the percentage toward the next level; each level spans
// pointsPerLevel points.
func (p Points) LevelProgress() int {
	level := p.Level
	if level < 1 {
		level = 1
	}
	floor := (level - 1) * pointsPerLevel
	pct := (p.TotalPoints - floor) * 100 / pointsPerLevel
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

func (p Points) LevelTitle() string {
	switch {
	case p.Level >= 50:
		return "Master"
	case p.Level >= 30:
		return "Expert"
	case p.Level >= 20:
		return "Skilled"
	case p.Level >= 10:
		return "Intermediate"
	case p.Level >= 5:
		return "Novice"
	default:
		return "Beginner"
	}
}

type Badge struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Condition   string `json:"condition,omitempty"`
}

type UserBadge struct {
	ID       int64  `json:"id"`
	BadgeID  int64  `json:"badgeId,omitempty"`
	Badge    *Badge `json:"badge,omitempty"`
	EarnedAt string `json:"earnedAt,omitempty"`
}

// EarnedBadgeID resolves the badge id from either the nested badge or the
// flat badgeId field.
func (u UserBadge) EarnedBadgeID() int64 {
	if u.Badge != nil && u.Badge.ID != 0 {
		return u.Badge.ID
	}
	return u.BadgeID
}

type LeaderboardPeriod string

const (
	PeriodWeekly  LeaderboardPeriod = "WEEKLY"
	PeriodMonthly LeaderboardPeriod = "MONTHLY"
	PeriodAllTime LeaderboardPeriod = "ALL_TIME"
)

type LeaderboardEntry struct {
	ID     int64 `json:"id,omitempty"`
	Rank   int   `json:"rank"`
	UserID int64 `json:"userId,omitempty"`
	User   *User `json:"user,omitempty"`
	Points int   `json:"points"`
	Level  int   `json:"level"`
}

// Username resolves the display name from either entry shape.
func (e LeaderboardEntry) Username() string {
	if e.User != nil {
		return e.User.Username
	}
	return ""
}

// Is reports whether the entry belongs to the given user id.
func (e LeaderboardEntry) Is(userID int64) bool {
	if e.User != nil && e.User.ID == userID {
		return true
	}
	return e.UserID != 0 && e.UserID == userID
}

type AddPointsRequest struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}
