package apitest

import (
	"net/http"
	"sort"

	"learnsnap/internal/models"
)

const pointsPerLevel = 100

func (s *Server) progressFor(userID int64) map[int64]*models.VideoProgress {
	m, ok := s.progress[userID]
	if !ok {
		m = make(map[int64]*models.VideoProgress)
		s.progress[userID] = m
	}
	return m
}

// Progress returns the stored progress of userID on videoID.
func (s *Server) Progress(userID, videoID int64) (models.VideoProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[userID][videoID]
	if !ok {
		return models.VideoProgress{}, false
	}
	return *p, true
}

func (s *Server) listProgress(r *http.Request, keep func(*models.VideoProgress) bool) []models.VideoProgress {
	u := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.progressFor(u.ID)
	out := []models.VideoProgress{}
	for _, id := range sortedIDs(m) {
		if p := m[id]; keep(p) {
			cp := *p
			if v, ok := s.videos[id]; ok {
				vc := *v
				cp.Video = &vc
			}
			out = append(out, cp)
		}
	}
	return out
}

func (s *Server) allProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listProgress(r, func(*models.VideoProgress) bool { return true }))
}

func (s *Server) completedProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listProgress(r, func(p *models.VideoProgress) bool { return p.Completed }))
}

func (s *Server) inProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listProgress(r, func(p *models.VideoProgress) bool { return !p.Completed }))
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	all := s.listProgress(r, func(*models.VideoProgress) bool { return true })
	var st models.LearningStats
	var scored, sum int
	for _, p := range all {
		if p.Completed {
			st.CompletedVideos++
		} else {
			st.InProgressVideos++
		}
		st.TotalWatchTime += p.WatchedDuration
		if p.QuizScore != nil {
			scored++
			sum += *p.QuizScore
		}
	}
	if scored > 0 {
		avg := float64(sum) / float64(scored)
		st.AverageQuizScore = &avg
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) videoProgress(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id := pathID(r)
	s.mu.Lock()
	p, ok := s.progressFor(u.ID)[id]
	var out models.VideoProgress
	if ok {
		out = *p
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Progress not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteRequest
	if !decode(w, r, &req) {
		return
	}
	u := currentUser(r)
	id := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		notFound(w, "Video", id)
		return
	}
	m := s.progressFor(u.ID)
	p, ok := m[id]
	if !ok {
		p = &models.VideoProgress{ID: s.id(), VideoID: id}
		m[id] = p
	}
	p.Completed = true
	p.WatchedDuration = v.Duration
	p.QuizScore = req.QuizScore
	p.CompletedAt = stamp()
	p.LastWatchedAt = p.CompletedAt
	s.award(u.ID, 10)
	writeJSON(w, http.StatusOK, *p)
}

func (s *Server) watch(w http.ResponseWriter, r *http.Request) {
	var req models.WatchProgressRequest
	if !decode(w, r, &req) {
		return
	}
	u := currentUser(r)
	id := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		notFound(w, "Video", id)
		return
	}
	m := s.progressFor(u.ID)
	p, ok := m[id]
	if !ok {
		p = &models.VideoProgress{ID: s.id(), VideoID: id}
		m[id] = p
	}
	p.WatchedDuration = req.WatchedDuration
	p.LastWatchedAt = stamp()
	writeJSON(w, http.StatusOK, *p)
}

// award adds points and recomputes the level. Callers hold mu.
func (s *Server) award(userID int64, n int) *models.Points {
	p, ok := s.points[userID]
	if !ok {
		p = &models.Points{Level: 1}
		s.points[userID] = p
	}
	p.TotalPoints += n
	p.Level = p.TotalPoints/pointsPerLevel + 1
	return p
}

// SetStreak seeds the streak of userID.
func (s *Server) SetStreak(userID int64, st models.Streak) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streaks[userID] = &st
}

// AddBadge seeds a badge and, when userIDs are given, awards it to them.
func (s *Server) AddBadge(name, description string, userIDs ...int64) models.Badge {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := models.Badge{ID: s.id(), Name: name, Description: description}
	s.badges = append(s.badges, b)
	for _, uid := range userIDs {
		bc := b
		s.userBadges[uid] = append(s.userBadges[uid], models.UserBadge{ID: s.id(), Badge: &bc, EarnedAt: stamp()})
	}
	return b
}

// AwardPoints seeds points for userID.
func (s *Server) AwardPoints(userID int64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.award(userID, n)
}

func (s *Server) gamificationOff(w http.ResponseWriter) bool {
	s.mu.Lock()
	off := !s.gamification
	s.mu.Unlock()
	if off {
		writeError(w, http.StatusNotFound, "")
	}
	return off
}

func (s *Server) streak(w http.ResponseWriter, r *http.Request) {
	if s.gamificationOff(w) {
		return
	}
	u := currentUser(r)
	s.mu.Lock()
	st, ok := s.streaks[u.ID]
	out := models.Streak{}
	if ok {
		out = *st
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPoints(w http.ResponseWriter, r *http.Request) {
	if s.gamificationOff(w) {
		return
	}
	u := currentUser(r)
	s.mu.Lock()
	p, ok := s.points[u.ID]
	out := models.Points{Level: 1}
	if ok {
		out = *p
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addPoints(w http.ResponseWriter, r *http.Request) {
	if s.gamificationOff(w) {
		return
	}
	var req models.AddPointsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Points <= 0 {
		writeFieldErrors(w, map[string]string{"points": "must be greater than 0"})
		return
	}
	u := currentUser(r)
	s.mu.Lock()
	out := *s.award(u.ID, req.Points)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listBadges(w http.ResponseWriter, r *http.Request) {
	if s.gamificationOff(w) {
		return
	}
	s.mu.Lock()
	out := append([]models.Badge{}, s.badges...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listUserBadges(w http.ResponseWriter, r *http.Request) {
	if s.gamificationOff(w) {
		return
	}
	u := currentUser(r)
	s.mu.Lock()
	out := append([]models.UserBadge{}, s.userBadges[u.ID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

// leaderboard ranks by points. The period is echoed back but not used for
// filtering.
func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	if s.gamificationOff(w) {
		return
	}
	period := models.LeaderboardPeriod(r.URL.Query().Get("period"))
	switch period {
	case models.PeriodWeekly, models.PeriodMonthly, models.PeriodAllTime:
	default:
		writeError(w, http.StatusBadRequest, "Unknown leaderboard period")
		return
	}

	s.mu.Lock()
	byID := make(map[int64]models.User, len(s.accounts))
	for _, a := range s.accounts {
		byID[a.user.ID] = a.user
	}
	out := make([]models.LeaderboardEntry, 0, len(s.points))
	for uid, p := range s.points {
		u := byID[uid]
		out = append(out, models.LeaderboardEntry{User: &u, Points: p.TotalPoints, Level: p.Level})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].User.ID < out[j].User.ID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	writeJSON(w, http.StatusOK, out)
}
