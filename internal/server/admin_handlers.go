package server

import (
	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyPortfolio handles GET /api/admin/portfolio
func (s *Server) GetMyPortfolio(c *fiber.Ctx) error {
	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(sync.Data())
}

// UpdatePersonalInfo handles PUT /api/admin/personal-info
func (s *Server) UpdatePersonalInfo(c *fiber.Ctx) error {
	var info models.PersonalInfo
	if err := c.BodyParser(&info); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if err := sync.UpdatePersonalInfo(c.Context(), info); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(sync.Data().PersonalInfo)
}

// UpdateAboutInfo handles PUT /api/admin/about-info
func (s *Server) UpdateAboutInfo(c *fiber.Ctx) error {
	var info models.AboutInfo
	if err := c.BodyParser(&info); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if err := sync.UpdateAboutInfo(c.Context(), info); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(sync.Data().AboutInfo)
}

// UpdateSocialMedia handles PUT /api/admin/social-media
func (s *Server) UpdateSocialMedia(c *fiber.Ctx) error {
	var links models.SocialMedia
	if err := c.BodyParser(&links); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if err := sync.UpdateSocialMedia(c.Context(), links); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(sync.Data().SocialMedia)
}

// AddWebsiteProject handles POST /api/admin/website-projects
func (s *Server) AddWebsiteProject(c *fiber.Ctx) error {
	var project models.WebsiteProject
	if err := c.BodyParser(&project); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	created, err := sync.AddWebsiteProject(c.Context(), project)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateWebsiteProject handles PUT /api/admin/website-projects/:id
func (s *Server) UpdateWebsiteProject(c *fiber.Ctx) error {
	var project models.WebsiteProject
	if err := c.BodyParser(&project); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	project.ID = c.Params("id")

	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if err := sync.UpdateWebsiteProject(c.Context(), project); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(project)
}

// RemoveWebsiteProject handles DELETE /api/admin/website-projects/:id
func (s *Server) RemoveWebsiteProject(c *fiber.Ctx) error {
	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if err := sync.RemoveWebsiteProject(c.Context(), c.Params("id")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

// AddVideoProject handles POST /api/admin/video-projects
func (s *Server) AddVideoProject(c *fiber.Ctx) error {
	var project models.VideoProject
	if err := c.BodyParser(&project); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	created, err := sync.AddVideoProject(c.Context(), project)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateVideoProject handles PUT /api/admin/video-projects/:id
func (s *Server) UpdateVideoProject(c *fiber.Ctx) error {
	var project models.VideoProject
	if err := c.BodyParser(&project); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	project.ID = c.Params("id")

	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if err := sync.UpdateVideoProject(c.Context(), project); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(project)
}

// RemoveVideoProject handles DELETE /api/admin/video-projects/:id
func (s *Server) RemoveVideoProject(c *fiber.Ctx) error {
	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if err := sync.RemoveVideoProject(c.Context(), c.Params("id")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}

// AddBlogPost handles POST /api/admin/blog-posts
func (s *Server) AddBlogPost(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := c.BodyParser(&post); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	created, err := sync.AddBlogPost(c.Context(), post)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// UpdateBlogPost handles PUT /api/admin/blog-posts/:id
func (s *Server) UpdateBlogPost(c *fiber.Ctx) error {
	var post models.BlogPost
	if err := c.BodyParser(&post); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	post.ID = c.Params("id")

	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if err := sync.UpdateBlogPost(c.Context(), post); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(post)
}

// RemoveBlogPost handles DELETE /api/admin/blog-posts/:id
func (s *Server) RemoveBlogPost(c *fiber.Ctx) error {
	sync, err := s.syncFor(c, requestSession(c))
	if err != nil {
		return respondAppError(c, err)
	}
	if err := sync.RemoveBlogPost(c.Context(), c.Params("id")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Deleted"})
}
