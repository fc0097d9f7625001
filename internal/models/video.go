package models

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "BEGINNER"
	DifficultyIntermediate Difficulty = "INTERMEDIATE"
	DifficultyAdvanced     Difficulty = "ADVANCED"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

type Instructor struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type Video struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	VideoURL        string      `json:"videoUrl"`
	ThumbnailURL    string      `json:"thumbnailUrl,omitempty"`
	Duration        int         `json:"duration"` // seconds
	DifficultyLevel Difficulty  `json:"difficultyLevel,omitempty"`
	Category        *Category   `json:"category,omitempty"`
	Instructor      *Instructor `json:"instructor,omitempty"`
	ViewsCount      int64       `json:"viewsCount"`
	LikesCount      int64       `json:"likesCount"`
	CreatedAt       string      `json:"createdAt,omitempty"`
	UpdatedAt       string      `json:"updatedAt,omitempty"`
}

type VideoInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	VideoURL        string     `json:"videoUrl"`
	ThumbnailURL    string     `json:"thumbnailUrl,omitempty"`
	Duration        int        `json:"duration,omitempty"`
	DifficultyLevel Difficulty `json:"difficultyLevel,omitempty"`
	CategoryID      int64      `json:"categoryId,omitempty"`
}
