// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PersonalInfo is the public identity card of a portfolio. One row per user;
// username is the public route key and must be unique across all users.
type PersonalInfo struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Username          string    `gorm:"uniqueIndex;not null" json:"username"`
	Name              string    `json:"name"`
	ProfessionalTitle string    `json:"professional_title"`
	ShortDescription  string    `json:"short_description"`
	ProfileImageURL   string    `json:"profile_image_url"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName overrides the default pluralization ("personal_infos").
func (PersonalInfo) TableName() string { return "personal_info" }

func (p *PersonalInfo) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// AboutInfo holds the long-form about section. Paragraphs in AboutText are
// separated by a blank line.
type AboutInfo struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	AboutText string    `json:"about_text"`
	ResumeURL string    `json:"resume_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AboutInfo) TableName() string { return "about_info" }

func (a *AboutInfo) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// SocialMedia holds optional outbound links. Empty string means "not set".
type SocialMedia struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	GithubURL    string    `json:"github_url"`
	LinkedinURL  string    `json:"linkedin_url"`
	TwitterURL   string    `json:"twitter_url"`
	InstagramURL string    `json:"instagram_url"`
	EmailURL     string    `json:"email_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (SocialMedia) TableName() string { return "social_media" }

func (s *SocialMedia) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// WebsiteProject is a showcased website, listed newest first.
type WebsiteProject struct {
	ID                 string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectTitle       string    `json:"project_title"`
	ProjectDescription string    `json:"project_description"`
	ImageURL           string    `json:"image_url"`
	ProjectURL         string    `json:"project_url"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (w *WebsiteProject) BeforeCreate(_ *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// VideoProject is a showcased video, listed newest first.
type VideoProject struct {
	ID                 string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ProjectTitle       string    `json:"project_title"`
	ProjectDescription string    `json:"project_description"`
	ThumbnailURL       string    `json:"thumbnail_url"`
	VideoURL           string    `json:"video_url"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (v *VideoProject) BeforeCreate(_ *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// BlogPost is a dated entry. BlogContent uses the same blank-line paragraph
// convention as AboutInfo. Posts are listed by CreationDate, newest first.
type BlogPost struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	BlogTitle    string    `json:"blog_title"`
	CreationDate time.Time `json:"creation_date"`
	BlogContent  string    `json:"blog_content"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (b *BlogPost) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// PortfolioData is the aggregate snapshot of everything one user publishes.
// A user with no rows yet is represented by nil singletons and empty lists,
// never by an error.
type PortfolioData struct {
	PersonalInfo    *PersonalInfo    `json:"personalInfo"`
	AboutInfo       *AboutInfo       `json:"aboutInfo"`
	SocialMedia     *SocialMedia     `json:"socialMedia"`
	WebsiteProjects []WebsiteProject `json:"websiteProjects"`
	VideoProjects   []VideoProject   `json:"videoProjects"`
	BlogPosts       []BlogPost       `json:"blogPosts"`
}

// EmptyPortfolio returns the zero-rows snapshot shape.
func EmptyPortfolio() PortfolioData {
	return PortfolioData{
		WebsiteProjects: []WebsiteProject{},
		VideoProjects:   []VideoProject{},
		BlogPosts:       []BlogPost{},
	}
}
