// Package seed populates the database with demo portfolios for development
// and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"folio/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	ShouldClean bool
}

// DemoPassword is the password shared by every seeded account.
const DemoPassword = "password123"

// Seed populates the database with demo portfolios.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Seeding %d demo portfolios...", opts.NumUsers)

	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: could not clear all existing data, continuing anyway...")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	created := 0
	for i := 0; i < opts.NumUsers; i++ {
		if err := createPortfolio(db, r, string(hash), i); err != nil {
			log.Printf("⚠️  Skipping portfolio %d: %v", i, err)
			continue
		}
		created++
	}

	log.Printf("✓ %d demo portfolios created", created)
	log.Printf("📧 All demo accounts use the password: %s", DemoPassword)
	return nil
}

// createPortfolio creates one account with a full set of portfolio content.
func createPortfolio(db *gorm.DB, r *rand.Rand, passwordHash string, n int) error {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	username := demoUsername(first, last, n)

	account := &models.Account{
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: passwordHash,
	}
	if err := db.Create(account).Error; err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	info := &models.PersonalInfo{
		UserID:            account.ID,
		Username:          username,
		Name:              first + " " + last,
		ProfessionalTitle: gofakeit.JobTitle(),
		ShortDescription:  gofakeit.Sentence(10),
		ProfileImageURL:   fmt.Sprintf("https://picsum.photos/seed/%s/400/400", username),
	}
	if err := db.Create(info).Error; err != nil {
		return fmt.Errorf("create personal info: %w", err)
	}

	about := &models.AboutInfo{
		UserID:    account.ID,
		AboutText: gofakeit.Paragraph(2, 4, 12, "\n\n"),
		ResumeURL: fmt.Sprintf("https://example.com/%s/resume.pdf", username),
	}
	if err := db.Create(about).Error; err != nil {
		return fmt.Errorf("create about info: %w", err)
	}

	social := &models.SocialMedia{
		UserID:      account.ID,
		GithubURL:   "https://github.com/" + username,
		LinkedinURL: "https://www.linkedin.com/in/" + username,
		EmailURL:    "mailto:" + account.Email,
	}
	if err := db.Create(social).Error; err != nil {
		return fmt.Errorf("create social media: %w", err)
	}

	for j := 0; j < 1+r.Intn(4); j++ {
		project := &models.WebsiteProject{
			UserID:             account.ID,
			ProjectTitle:       strings.Title(gofakeit.BuzzWord()) + " " + gofakeit.NounAbstract(),
			ProjectDescription: gofakeit.Sentence(14),
			ImageURL:           fmt.Sprintf("https://picsum.photos/seed/%s/800/500", gofakeit.UUID()),
			ProjectURL:         gofakeit.URL(),
			CreatedAt:          pastTime(r, 365),
		}
		if err := db.Create(project).Error; err != nil {
			return fmt.Errorf("create website project: %w", err)
		}
	}

	youtubeIDs := []string{"dQw4w9WgXcQ", "9bZkp7q19f0", "3JZ_D3ELwOQ", "L_jWHffIx5E", "kXYiU_JCYtU"}
	for j := 0; j < r.Intn(3); j++ {
		id := youtubeIDs[r.Intn(len(youtubeIDs))]
		video := &models.VideoProject{
			UserID:             account.ID,
			ProjectTitle:       strings.Title(gofakeit.Verb()) + "ing " + gofakeit.NounConcrete(),
			ProjectDescription: gofakeit.Sentence(12),
			ThumbnailURL:       fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", id),
			VideoURL:           fmt.Sprintf("https://www.youtube.com/watch?v=%s", id),
			CreatedAt:          pastTime(r, 365),
		}
		if err := db.Create(video).Error; err != nil {
			return fmt.Errorf("create video project: %w", err)
		}
	}

	for j := 0; j < 2+r.Intn(5); j++ {
		post := &models.BlogPost{
			UserID:       account.ID,
			BlogTitle:    gofakeit.Sentence(5),
			CreationDate: pastTime(r, 180),
			BlogContent:  gofakeit.Paragraph(3, 3, 10, "\n\n"),
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("create blog post: %w", err)
		}
	}

	return nil
}

// demoUsername derives a unique, route-safe username from a generated name.
func demoUsername(first, last string, n int) string {
	base := strings.ToLower(first + "-" + last)
	base = strings.Map(func(c rune) rune {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			return c
		}
		return -1
	}, base)
	if len(base) > 20 {
		base = base[:20]
	}
	return fmt.Sprintf("%s-%d", strings.Trim(base, "-"), n)
}

// pastTime returns a random moment within the last maxDays days.
func pastTime(r *rand.Rand, maxDays int) time.Time {
	daysBack := r.Intn(maxDays)
	hoursBack := r.Intn(24)
	minsBack := r.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

// clearData removes all seeded rows. Order matters for foreign keys.
func clearData(db *gorm.DB) error {
	tables := []string{
		"blog_posts", "video_projects", "website_projects",
		"social_media", "about_info", "personal_info", "accounts",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
