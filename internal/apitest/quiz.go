package apitest

import (
	"encoding/json"
	"net/http"
	"strings"

	"learnsnap/internal/models"
)

// AddQuiz seeds a question for videoID with the given correct answer.
func (s *Server) AddQuiz(videoID int64, question string, options []string, correct, explanation string) models.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := models.Quiz{ID: s.id(), VideoID: videoID, Question: question, Options: options, Explanation: explanation}
	s.quizzes[q.ID] = &quizRecord{quiz: q, correct: correct}
	s.quizOrder[videoID] = append(s.quizOrder[videoID], q.ID)
	return q
}

// Submissions is how many answers were graded for quizID.
func (s *Server) Submissions(quizID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions[quizID]
}

// wireQuiz is a quiz as sent to the client: no correct answer, and options
// either as an array or as an encoded string.
type wireQuiz struct {
	ID          int64  `json:"id"`
	VideoID     int64  `json:"videoId"`
	Question    string `json:"question"`
	Options     any    `json:"options"`
	Explanation string `json:"explanation,omitempty"`
}

func (s *Server) toWire(q models.Quiz) wireQuiz {
	w := wireQuiz{ID: q.ID, VideoID: q.VideoID, Question: q.Question, Options: []string(q.Options)}
	if s.optionsAsString {
		data, _ := json.Marshal([]string(q.Options))
		w.Options = string(data)
	}
	return w
}

func (s *Server) listQuizzes(w http.ResponseWriter, r *http.Request) {
	videoID := pathID(r)
	s.mu.Lock()
	out := []wireQuiz{}
	for _, id := range s.quizOrder[videoID] {
		out = append(out, s.toWire(s.quizzes[id].quiz))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getQuiz(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	rec, ok := s.quizzes[id]
	var out wireQuiz
	if ok {
		out = s.toWire(rec.quiz)
	}
	s.mu.Unlock()
	if !ok {
		notFound(w, "Quiz", id)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) submitQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitRequest
	if !decode(w, r, &req) {
		return
	}
	id := pathID(r)

	s.mu.Lock()
	rec, ok := s.quizzes[id]
	if ok {
		s.submissions[id]++
	}
	s.mu.Unlock()
	if !ok {
		notFound(w, "Quiz", id)
		return
	}

	writeJSON(w, http.StatusOK, models.SubmitResult{
		IsCorrect:     strings.EqualFold(strings.TrimSpace(req.Answer), rec.correct),
		CorrectAnswer: rec.correct,
		Explanation:   rec.quiz.Explanation,
	})
}

func (s *Server) createQuiz(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireInstructor(w, r); !ok {
		return
	}
	var in models.QuizInput
	if !decode(w, r, &in) {
		return
	}
	videoID := pathID(r)
	if _, ok := s.Video(videoID); !ok {
		notFound(w, "Video", videoID)
		return
	}
	q := s.AddQuiz(videoID, in.Question, in.Options, in.CorrectAnswer, in.Explanation)
	q.CorrectAnswer = in.CorrectAnswer
	writeJSON(w, http.StatusCreated, q)
}

func (s *Server) updateQuiz(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireInstructor(w, r); !ok {
		return
	}
	var in models.QuizInput
	if !decode(w, r, &in) {
		return
	}
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.quizzes[id]
	if !ok {
		notFound(w, "Quiz", id)
		return
	}
	rec.quiz.Question = in.Question
	rec.quiz.Options = in.Options
	rec.quiz.Explanation = in.Explanation
	rec.correct = in.CorrectAnswer
	out := rec.quiz
	out.CorrectAnswer = rec.correct
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireInstructor(w, r); !ok {
		return
	}
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.quizzes[id]
	if !ok {
		notFound(w, "Quiz", id)
		return
	}
	delete(s.quizzes, id)
	order := s.quizOrder[rec.quiz.VideoID]
	for i, qid := range order {
		if qid == id {
			s.quizOrder[rec.quiz.VideoID] = append(order[:i:i], order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
