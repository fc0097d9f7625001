// Package video is the client for the video catalog.
package video

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"learnsnap/internal/gateway"
	"learnsnap/internal/logger"
	"learnsnap/internal/models"
	"learnsnap/internal/validate"
)

const (
	titleMax       = 200
	descriptionMax = 1000
	urlMax         = 500

	DefaultLimit = 10
	statsPage    = 100
)

type Service struct {
	gw  *gateway.Gateway
	log *logger.Logger
}

func NewService(gw *gateway.Gateway, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{gw: gw, log: log}
}

func pageValues(q models.PageQuery) url.Values {
	v := url.Values{}
	if q.Page > 0 || q.Size > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	return v
}

func (s *Service) page(ctx context.Context, path string, query url.Values) (*models.Page[models.Video], error) {
	var p models.Page[models.Video]
	if err := s.gw.Get(ctx, path, query, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context, q models.PageQuery) (*models.Page[models.Video], error) {
	return s.page(ctx, "/videos", pageValues(q))
}

func (s *Service) Search(ctx context.Context, keyword string, q models.PageQuery) (*models.Page[models.Video], error) {
	v := pageValues(q)
	v.Set("q", strings.TrimSpace(keyword))
	return s.page(ctx, "/videos/search", v)
}

func (s *Service) ByCategory(ctx context.Context, categoryID int64, q models.PageQuery) (*models.Page[models.Video], error) {
	return s.page(ctx, gateway.PathID("/videos/category", categoryID), pageValues(q))
}

func (s *Service) ByInstructor(ctx context.Context, instructorID int64, q models.PageQuery) (*models.Page[models.Video], error) {
	return s.page(ctx, gateway.PathID("/videos/instructor", instructorID), pageValues(q))
}

func (s *Service) limited(ctx context.Context, path string, limit int) ([]models.Video, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	p, err := s.page(ctx, path, url.Values{"limit": {strconv.Itoa(limit)}})
	if err != nil {
		return nil, err
	}
	return p.Content, nil
}

func (s *Service) Popular(ctx context.Context, limit int) ([]models.Video, error) {
	return s.limited(ctx, "/videos/popular", limit)
}

func (s *Service) Recent(ctx context.Context, limit int) ([]models.Video, error) {
	return s.limited(ctx, "/videos/recent", limit)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Video, error) {
	var v models.Video
	if err := s.gw.Get(ctx, gateway.PathID("/videos", id), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// IncrementViews records one view of the video.
func (s *Service) IncrementViews(ctx context.Context, id int64) error {
	return s.gw.Post(ctx, gateway.PathID("/videos", id, "view"), nil, nil)
}

func ValidateInput(in models.VideoInput) error {
	var c validate.Checker
	c.Required("title", in.Title).MaxLen("title", in.Title, titleMax)
	c.MaxLen("description", in.Description, descriptionMax)
	c.Required("videoUrl", in.VideoURL).MaxLen("videoUrl", in.VideoURL, urlMax)
	c.MaxLen("thumbnailUrl", in.ThumbnailURL, urlMax)
	c.Check(in.Duration >= 0, "duration", "must not be negative")
	if in.DifficultyLevel != "" {
		c.Check(in.DifficultyLevel.Valid(), "difficultyLevel", "must be BEGINNER, INTERMEDIATE or ADVANCED")
	}
	return c.Err()
}

func (s *Service) Create(ctx context.Context, in models.VideoInput) (*models.Video, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	var v models.Video
	if err := s.gw.Post(ctx, "/videos", in, &v); err != nil {
		return nil, err
	}
	s.log.Info("video uploaded", "video_id", v.ID, "title", v.Title)
	return &v, nil
}

func (s *Service) Update(ctx context.Context, id int64, in models.VideoInput) (*models.Video, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	var v models.Video
	if err := s.gw.Put(ctx, gateway.PathID("/videos", id), in, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.gw.Delete(ctx, gateway.PathID("/videos", id), nil); err != nil {
		return err
	}
	s.log.Info("video deleted", "video_id", id)
	return nil
}

// Stats are the instructor dashboard totals.
type Stats struct {
	Videos int
	Views  int64
	Likes  int64
}

// InstructorStats walks every page of the instructor's videos and totals
// them.
func (s *Service) InstructorStats(ctx context.Context, instructorID int64) (Stats, []models.Video, error) {
	var (
		st  Stats
		all []models.Video
	)
	for page := 0; ; page++ {
		p, err := s.ByInstructor(ctx, instructorID, models.PageQuery{Page: page, Size: statsPage})
		if err != nil {
			return Stats{}, nil, err
		}
		for _, v := range p.Content {
			st.Videos++
			st.Views += v.ViewsCount
			st.Likes += v.LikesCount
		}
		all = append(all, p.Content...)
		if len(p.Content) == 0 || page+1 >= p.TotalPages {
			break
		}
	}
	return st, all, nil
}
