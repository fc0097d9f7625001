package models

type VideoProgress struct {
	ID              int64  `json:"id,omitempty"`
	VideoID         int64  `json:"videoId,omitempty"`
	Video           *Video `json:"video,omitempty"`
	WatchedDuration int    `json:"watchedDuration"`
	Completed       bool   `json:"completed"`
	QuizScore       *int   `json:"quizScore,omitempty"`
	CompletedAt     string `json:"completedAt,omitempty"`
	LastWatchedAt   string `json:"lastWatchedAt,omitempty"`
}

// Percent is the watched share of the video, capped at 100. Zero when the
// video duration is unknown.
func (p VideoProgress) Percent() int {
	if p.Video == nil || p.Video.Duration <= 0 {
		return 0
	}
	pct := p.WatchedDuration * 100 / p.Video.Duration
	if pct > 100 {
		pct = 100
	}
	return pct
}

type CompleteRequest struct {
	QuizScore *int `json:"quizScore"`
}

type WatchProgressRequest struct {
	WatchedDuration int `json:"watchedDuration"`
}

type LearningStats struct {
	CompletedVideos  int      `json:"completedVideos"`
	InProgressVideos int      `json:"inProgressVideos"`
	TotalWatchTime   int      `json:"totalWatchTime"`
	AverageQuizScore *float64 `json:"averageQuizScore"`
}
