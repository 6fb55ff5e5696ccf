// Package portfolio keeps one client's view of a portfolio in sync with the
// record store: it resolves whose portfolio to show, loads the full snapshot,
// and applies write-through mutations.
package portfolio

import (
	"context"
	"log/slog"
	"sync"

	"folio/internal/cache"
	"folio/internal/gateway"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/repository"

	"golang.org/x/sync/errgroup"
)

// Stores bundles the six entity repositories the synchronizer reads and
// writes.
type Stores struct {
	Personal repository.PersonalInfoRepository
	About    repository.AboutInfoRepository
	Social   repository.SocialMediaRepository
	Websites repository.WebsiteProjectRepository
	Videos   repository.VideoProjectRepository
	Blogs    repository.BlogPostRepository
}

// Patch is a merge-style local edit: nil fields leave the corresponding
// snapshot slot untouched.
type Patch struct {
	PersonalInfo    *models.PersonalInfo
	AboutInfo       *models.AboutInfo
	SocialMedia     *models.SocialMedia
	WebsiteProjects []models.WebsiteProject
	VideoProjects   []models.VideoProject
	BlogPosts       []models.BlogPost
}

// Synchronizer owns a single portfolio snapshot. Mutations write to the
// store first and touch the snapshot only after the store confirms, so the
// snapshot never shows unconfirmed data.
type Synchronizer struct {
	stores  Stores
	targets *cache.TargetCache
	logger  *slog.Logger

	mu         sync.Mutex
	ownerID    string
	data       models.PortfolioData
	generation uint64
}

// NewSynchronizer returns a synchronizer with an empty snapshot and no owner.
func NewSynchronizer(stores Stores, targets *cache.TargetCache) *Synchronizer {
	return &Synchronizer{
		stores:  stores,
		targets: targets,
		logger:  middleware.Logger,
		data:    models.EmptyPortfolio(),
	}
}

// Load resolves whose portfolio to show and replaces the snapshot with that
// user's records. Resolution order: explicit username, then the session
// owner, then the last owner remembered in the target cache. When nothing
// resolves, the snapshot is emptied and no records are fetched.
//
// A load failure leaves the previous snapshot untouched. A load that
// finishes after a newer Load has started is discarded.
func (s *Synchronizer) Load(ctx context.Context, username string, session *gateway.Session) error {
	ownerID, err := s.resolveOwner(ctx, username, session)
	if err != nil {
		s.logger.Error("portfolio target resolution failed", "username", username, "error", err)
		observability.PortfolioLoads.WithLabelValues("error").Inc()
		return err
	}

	s.mu.Lock()
	s.ownerID = ownerID
	s.generation++
	gen := s.generation
	if ownerID == "" {
		s.data = models.EmptyPortfolio()
		s.mu.Unlock()
		observability.PortfolioLoads.WithLabelValues("empty").Inc()
		return nil
	}
	s.mu.Unlock()

	data, err := s.fetchAll(ctx, ownerID)
	if err != nil {
		s.logger.Error("portfolio load failed", "owner_id", ownerID, "error", err)
		observability.PortfolioLoads.WithLabelValues("error").Inc()
		return err
	}

	s.mu.Lock()
	if s.generation == gen {
		s.data = *data
		s.mu.Unlock()
		observability.PortfolioLoads.WithLabelValues("ok").Inc()
		return nil
	}
	s.mu.Unlock()
	// A newer load superseded this one while it was in flight.
	observability.PortfolioLoads.WithLabelValues("stale").Inc()
	return nil
}

func (s *Synchronizer) resolveOwner(ctx context.Context, username string, session *gateway.Session) (string, error) {
	if username != "" {
		var ownerID string
		err := cache.Aside(ctx, cache.UsernameKey(username), &ownerID, cache.UsernameTTL, func() error {
			info, err := s.stores.Personal.GetByUsername(ctx, username)
			if err != nil {
				return err
			}
			if info != nil {
				ownerID = info.UserID
			}
			return nil
		})
		return ownerID, err
	}
	if session != nil && session.UserID != "" {
		s.targets.RememberOwner(ctx, session.UserID)
		return session.UserID, nil
	}
	return s.targets.LastOwner(ctx), nil
}

// fetchAll loads the six collections in parallel and returns them as one
// snapshot, or an error if any fetch failed.
func (s *Synchronizer) fetchAll(ctx context.Context, ownerID string) (*models.PortfolioData, error) {
	data := models.EmptyPortfolio()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		info, err := s.stores.Personal.GetByUserID(gctx, ownerID)
		data.PersonalInfo = info
		return err
	})
	g.Go(func() error {
		info, err := s.stores.About.GetByUserID(gctx, ownerID)
		data.AboutInfo = info
		return err
	})
	g.Go(func() error {
		links, err := s.stores.Social.GetByUserID(gctx, ownerID)
		data.SocialMedia = links
		return err
	})
	g.Go(func() error {
		projects, err := s.stores.Websites.ListByUserID(gctx, ownerID)
		if projects != nil {
			data.WebsiteProjects = projects
		}
		return err
	})
	g.Go(func() error {
		projects, err := s.stores.Videos.ListByUserID(gctx, ownerID)
		if projects != nil {
			data.VideoProjects = projects
		}
		return err
	})
	g.Go(func() error {
		posts, err := s.stores.Blogs.ListByUserID(gctx, ownerID)
		if posts != nil {
			data.BlogPosts = posts
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

// OwnerID returns the resolved portfolio owner, or "" when nothing resolved.
func (s *Synchronizer) OwnerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerID
}

// Data returns a copy of the current snapshot.
func (s *Synchronizer) Data() models.PortfolioData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyData(s.data)
}

// Apply merges a local-only patch into the snapshot without touching the
// store. The dashboard uses it for edits that were confirmed elsewhere.
func (s *Synchronizer) Apply(p Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.PersonalInfo != nil {
		info := *p.PersonalInfo
		s.data.PersonalInfo = &info
	}
	if p.AboutInfo != nil {
		info := *p.AboutInfo
		s.data.AboutInfo = &info
	}
	if p.SocialMedia != nil {
		links := *p.SocialMedia
		s.data.SocialMedia = &links
	}
	if p.WebsiteProjects != nil {
		s.data.WebsiteProjects = append([]models.WebsiteProject{}, p.WebsiteProjects...)
	}
	if p.VideoProjects != nil {
		s.data.VideoProjects = append([]models.VideoProject{}, p.VideoProjects...)
	}
	if p.BlogPosts != nil {
		s.data.BlogPosts = append([]models.BlogPost{}, p.BlogPosts...)
	}
}

// UpdatePersonalInfo saves the identity card and replaces the snapshot slot
// with the saved object. The first save for a user creates the row; after
// that the snapshot's row is the one updated, whatever id the caller sent.
func (s *Synchronizer) UpdatePersonalInfo(ctx context.Context, info models.PersonalInfo) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	info.UserID = owner

	s.mu.Lock()
	existing := s.data.PersonalInfo
	s.mu.Unlock()

	if existing == nil {
		info.ID = ""
		err = s.stores.Personal.Create(ctx, &info)
	} else {
		info.ID = existing.ID
		err = s.stores.Personal.Update(ctx, &info)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data.PersonalInfo = &info
	s.mu.Unlock()
	return nil
}

// UpdateAboutInfo saves the about section.
func (s *Synchronizer) UpdateAboutInfo(ctx context.Context, info models.AboutInfo) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	info.UserID = owner

	s.mu.Lock()
	existing := s.data.AboutInfo
	s.mu.Unlock()

	if existing == nil {
		info.ID = ""
		err = s.stores.About.Create(ctx, &info)
	} else {
		info.ID = existing.ID
		err = s.stores.About.Update(ctx, &info)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data.AboutInfo = &info
	s.mu.Unlock()
	return nil
}

// UpdateSocialMedia saves the outbound links.
func (s *Synchronizer) UpdateSocialMedia(ctx context.Context, links models.SocialMedia) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	links.UserID = owner

	s.mu.Lock()
	existing := s.data.SocialMedia
	s.mu.Unlock()

	if existing == nil {
		links.ID = ""
		err = s.stores.Social.Create(ctx, &links)
	} else {
		links.ID = existing.ID
		err = s.stores.Social.Update(ctx, &links)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data.SocialMedia = &links
	s.mu.Unlock()
	return nil
}

// AddWebsiteProject creates a project and appends the stored row, with its
// assigned id and timestamps, to the snapshot.
func (s *Synchronizer) AddWebsiteProject(ctx context.Context, project models.WebsiteProject) (*models.WebsiteProject, error) {
	owner, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	project.UserID = owner

	if err := s.stores.Websites.Create(ctx, &project); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.data.WebsiteProjects = append(s.data.WebsiteProjects, project)
	s.mu.Unlock()
	return &project, nil
}

// UpdateWebsiteProject saves a project and replaces the matching snapshot
// entry with the exact object passed in.
func (s *Synchronizer) UpdateWebsiteProject(ctx context.Context, project models.WebsiteProject) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	project.UserID = owner

	if err := s.stores.Websites.Update(ctx, owner, &project); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.data.WebsiteProjects {
		if s.data.WebsiteProjects[i].ID == project.ID {
			s.data.WebsiteProjects[i] = project
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// RemoveWebsiteProject deletes a project and filters it out of the snapshot.
func (s *Synchronizer) RemoveWebsiteProject(ctx context.Context, id string) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	if err := s.stores.Websites.Delete(ctx, owner, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.data.WebsiteProjects = filterWebsites(s.data.WebsiteProjects, id)
	s.mu.Unlock()
	return nil
}

// AddVideoProject creates a video project and appends the stored row.
func (s *Synchronizer) AddVideoProject(ctx context.Context, project models.VideoProject) (*models.VideoProject, error) {
	owner, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	project.UserID = owner

	if err := s.stores.Videos.Create(ctx, &project); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.data.VideoProjects = append(s.data.VideoProjects, project)
	s.mu.Unlock()
	return &project, nil
}

// UpdateVideoProject saves a video project and replaces the matching entry.
func (s *Synchronizer) UpdateVideoProject(ctx context.Context, project models.VideoProject) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	project.UserID = owner

	if err := s.stores.Videos.Update(ctx, owner, &project); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.data.VideoProjects {
		if s.data.VideoProjects[i].ID == project.ID {
			s.data.VideoProjects[i] = project
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// RemoveVideoProject deletes a video project and filters it out.
func (s *Synchronizer) RemoveVideoProject(ctx context.Context, id string) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	if err := s.stores.Videos.Delete(ctx, owner, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.data.VideoProjects = filterVideos(s.data.VideoProjects, id)
	s.mu.Unlock()
	return nil
}

// AddBlogPost creates a blog post and appends the stored row.
func (s *Synchronizer) AddBlogPost(ctx context.Context, post models.BlogPost) (*models.BlogPost, error) {
	owner, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	post.UserID = owner

	if err := s.stores.Blogs.Create(ctx, &post); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.data.BlogPosts = append(s.data.BlogPosts, post)
	s.mu.Unlock()
	return &post, nil
}

// UpdateBlogPost saves a blog post and replaces the matching entry.
func (s *Synchronizer) UpdateBlogPost(ctx context.Context, post models.BlogPost) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	post.UserID = owner

	if err := s.stores.Blogs.Update(ctx, owner, &post); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.data.BlogPosts {
		if s.data.BlogPosts[i].ID == post.ID {
			s.data.BlogPosts[i] = post
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// RemoveBlogPost deletes a blog post and filters it out.
func (s *Synchronizer) RemoveBlogPost(ctx context.Context, id string) error {
	owner, err := s.requireOwner()
	if err != nil {
		return err
	}
	if err := s.stores.Blogs.Delete(ctx, owner, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.data.BlogPosts = filterBlogs(s.data.BlogPosts, id)
	s.mu.Unlock()
	return nil
}

// requireOwner rejects mutations before any store call when no authenticated
// owner is resolved.
func (s *Synchronizer) requireOwner() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerID == "" {
		return "", models.NewUnauthorizedError("You must be signed in to edit a portfolio")
	}
	return s.ownerID, nil
}

func copyData(d models.PortfolioData) models.PortfolioData {
	out := models.PortfolioData{
		WebsiteProjects: append([]models.WebsiteProject{}, d.WebsiteProjects...),
		VideoProjects:   append([]models.VideoProject{}, d.VideoProjects...),
		BlogPosts:       append([]models.BlogPost{}, d.BlogPosts...),
	}
	if d.PersonalInfo != nil {
		info := *d.PersonalInfo
		out.PersonalInfo = &info
	}
	if d.AboutInfo != nil {
		info := *d.AboutInfo
		out.AboutInfo = &info
	}
	if d.SocialMedia != nil {
		links := *d.SocialMedia
		out.SocialMedia = &links
	}
	return out
}

func filterWebsites(in []models.WebsiteProject, id string) []models.WebsiteProject {
	out := in[:0]
	for _, p := range in {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func filterVideos(in []models.VideoProject, id string) []models.VideoProject {
	out := in[:0]
	for _, p := range in {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

func filterBlogs(in []models.BlogPost, id string) []models.BlogPost {
	out := in[:0]
	for _, p := range in {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
