package server

import (
	"strings"

	"folio/internal/models"
	"folio/internal/portfolio"

	"github.com/gofiber/fiber/v2"
)

// GetPortfolio handles GET /api/portfolio and GET /api/portfolio/:username.
// Without a username the target falls back to the requester's session and
// then to the last portfolio anyone loaded. An unknown username answers 200
// with the empty snapshot; the page renders its blank state, not an error.
func (s *Server) GetPortfolio(c *fiber.Ctx) error {
	username := strings.ToLower(c.Params("username"))

	sync := portfolio.NewSynchronizer(s.stores, s.targets)
	if err := sync.Load(c.Context(), username, s.optionalSession(c)); err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(sync.Data())
}

// SearchPortfolios handles GET /api/portfolio/search?q=
func (s *Server) SearchPortfolios(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Search query is required"))
	}

	results, err := s.stores.Personal.Search(c.Context(), query, c.QueryInt("limit", 10))
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"results": results,
	})
}
