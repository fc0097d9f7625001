package apitest

import (
	"net/http"
	"sort"
	"strings"

	"learnsnap/internal/models"
)

// AddCategory seeds a category.
func (s *Server) AddCategory(name, slug string) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Category{ID: s.id(), Name: name, Slug: slug, CreatedAt: stamp()}
	s.categories[c.ID] = c
	return *c
}

// AddVideo seeds a video. A zero ID is assigned; Instructor and Category
// are stored as given.
func (s *Server) AddVideo(v models.Video) models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == 0 {
		v.ID = s.id()
	}
	if v.CreatedAt == "" {
		v.CreatedAt = stamp()
	}
	s.videos[v.ID] = &v
	return v
}

func (s *Server) Video(id int64) (models.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return models.Video{}, false
	}
	return *v, true
}

func (s *Server) selectVideos(keep func(*models.Video) bool) []models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Video{}
	for _, id := range sortedIDs(s.videos) {
		if v := s.videos[id]; keep(v) {
			out = append(out, *v)
		}
	}
	return out
}

func paginate(w http.ResponseWriter, r *http.Request, items []models.Video) {
	size := queryInt(r, "size", 12)
	if size == 0 {
		size = 12
	}
	page := queryInt(r, "page", 0)
	total := len(items)
	from := page * size
	if from > total {
		from = total
	}
	to := from + size
	if to > total {
		to = total
	}
	writeJSON(w, http.StatusOK, models.Page[models.Video]{
		Content:       items[from:to],
		TotalElements: int64(total),
		TotalPages:    (total + size - 1) / size,
		Number:        page,
		Size:          size,
	})
}

func (s *Server) listVideos(w http.ResponseWriter, r *http.Request) {
	paginate(w, r, s.selectVideos(func(*models.Video) bool { return true }))
}

func (s *Server) searchVideos(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	paginate(w, r, s.selectVideos(func(v *models.Video) bool {
		return strings.Contains(strings.ToLower(v.Title), q) || strings.Contains(strings.ToLower(v.Description), q)
	}))
}

func (s *Server) videosByCategory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	paginate(w, r, s.selectVideos(func(v *models.Video) bool { return v.Category != nil && v.Category.ID == id }))
}

// videosByInstructor answers with a bare array, as some backend versions do.
func (s *Server) videosByInstructor(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	writeJSON(w, http.StatusOK, s.selectVideos(func(v *models.Video) bool { return v.Instructor != nil && v.Instructor.ID == id }))
}

func (s *Server) popularVideos(w http.ResponseWriter, r *http.Request) {
	all := s.selectVideos(func(*models.Video) bool { return true })
	sort.SliceStable(all, func(i, j int) bool { return all[i].ViewsCount > all[j].ViewsCount })
	writeJSON(w, http.StatusOK, limit(all, queryInt(r, "limit", 10)))
}

func (s *Server) recentVideos(w http.ResponseWriter, r *http.Request) {
	all := s.selectVideos(func(*models.Video) bool { return true })
	sort.SliceStable(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	writeJSON(w, http.StatusOK, limit(all, queryInt(r, "limit", 10)))
}

func limit(vs []models.Video, n int) []models.Video {
	if n > 0 && len(vs) > n {
		return vs[:n]
	}
	return vs
}

func (s *Server) getVideo(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	v, ok := s.Video(id)
	if !ok {
		notFound(w, "Video", id)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) viewVideo(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	v, ok := s.videos[id]
	if ok {
		v.ViewsCount++
	}
	s.mu.Unlock()
	if !ok {
		notFound(w, "Video", id)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) applyVideo(v *models.Video, in models.VideoInput) {
	v.Title = in.Title
	v.Description = in.Description
	v.VideoURL = in.VideoURL
	v.ThumbnailURL = in.ThumbnailURL
	v.Duration = in.Duration
	v.DifficultyLevel = in.DifficultyLevel
	v.Category = nil
	if c, ok := s.categories[in.CategoryID]; ok {
		cp := *c
		v.Category = &cp
	}
	v.UpdatedAt = stamp()
}

func (s *Server) createVideo(w http.ResponseWriter, r *http.Request) {
	u, ok := requireInstructor(w, r)
	if !ok {
		return
	}
	var in models.VideoInput
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.VideoURL) == "" {
		writeFieldErrors(w, map[string]string{"title": "must not be blank", "videoUrl": "must not be blank"})
		return
	}

	s.mu.Lock()
	v := &models.Video{ID: s.id(), Instructor: &models.Instructor{ID: u.ID, Username: u.Username}, CreatedAt: stamp()}
	s.applyVideo(v, in)
	s.videos[v.ID] = v
	out := *v
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) updateVideo(w http.ResponseWriter, r *http.Request) {
	u, ok := requireInstructor(w, r)
	if !ok {
		return
	}
	var in models.VideoInput
	if !decode(w, r, &in) {
		return
	}
	id := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	v, found := s.videos[id]
	if !found {
		notFound(w, "Video", id)
		return
	}
	if u.Role != models.RoleAdmin && (v.Instructor == nil || v.Instructor.ID != u.ID) {
		writeError(w, http.StatusForbidden, "You can only edit your own videos")
		return
	}
	s.applyVideo(v, in)
	writeJSON(w, http.StatusOK, *v)
}

func (s *Server) deleteVideo(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireInstructor(w, r); !ok {
		return
	}
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.videos[id]; !found {
		notFound(w, "Video", id)
		return
	}
	delete(s.videos, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := []models.Category{}
	for _, id := range sortedIDs(s.categories) {
		out = append(out, *s.categories[id])
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	c, ok := s.categories[id]
	var out models.Category
	if ok {
		out = *c
	}
	s.mu.Unlock()
	if !ok {
		notFound(w, "Category", id)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	if currentUser(r).Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	var in models.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Slug == in.Slug {
			writeError(w, http.StatusConflict, "Category slug already exists")
			return
		}
	}
	c := &models.Category{ID: s.id(), Name: in.Name, Slug: in.Slug, Description: in.Description, Icon: in.Icon, CreatedAt: stamp()}
	s.categories[c.ID] = c
	writeJSON(w, http.StatusCreated, *c)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	if currentUser(r).Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	var in models.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		notFound(w, "Category", id)
		return
	}
	c.Name, c.Slug, c.Description, c.Icon = in.Name, in.Slug, in.Description, in.Icon
	c.UpdatedAt = stamp()
	writeJSON(w, http.StatusOK, *c)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if currentUser(r).Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "Access denied")
		return
	}
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		notFound(w, "Category", id)
		return
	}
	delete(s.categories, id)
	w.WriteHeader(http.StatusNoContent)
}
