package server

import (
	"time"

	"folio/internal/models"
	"folio/internal/session"
	"folio/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// statusForAppError maps domain error codes onto HTTP status codes.
func statusForAppError(err *models.AppError) int {
	switch err.Code {
	case "VALIDATION_ERROR":
		if err.Message == "User already registered" {
			return fiber.StatusConflict
		}
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func respondAppError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	return models.RespondWithError(c, statusForAppError(appErr), appErr)
}

// newRequestController builds a controller scoped to this request's client.
func (s *Server) newRequestController() *session.Controller {
	return session.NewController(s.gateway, s.stores.Personal)
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	// The chosen username must be free before the account is created; the
	// unique index still backs this up under races.
	existing, err := s.stores.Personal.GetByUsername(c.Context(), req.Username)
	if err != nil {
		return respondAppError(c, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Username is already taken"))
	}

	ctrl := s.newRequestController()
	defer ctrl.Dispose()
	ctrl.Initialize(c.Context(), "")

	if err := ctrl.SignUp(c.Context(), req.Username, req.Email, req.Password); err != nil {
		return respondAppError(c, err)
	}

	sess, err := ctrl.WaitForSession(c.Context())
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session": sess,
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctrl := s.newRequestController()
	defer ctrl.Dispose()
	ctrl.Initialize(c.Context(), "")

	if err := ctrl.SignIn(c.Context(), req.Email, req.Password); err != nil {
		return respondAppError(c, err)
	}

	// The controller has adopted the session; WaitForSession returns it
	// without ever sleeping.
	sess, err := ctrl.WaitForSession(c.Context())
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"session": sess,
	})
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	token := bearerToken(c)
	if err := s.gateway.SignOut(c.Context(), token); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Signed out",
	})
}

// GetSession handles GET /api/auth/session. It answers with the resolved
// session or an explicit null, never an error, so clients can probe freely.
func (s *Server) GetSession(c *fiber.Ctx) error {
	sess := s.optionalSession(c)
	if sess == nil {
		return c.JSON(fiber.Map{"session": nil})
	}
	return c.JSON(fiber.Map{
		"session":    sess,
		"expires_in": int(time.Until(sess.ExpiresAt).Seconds()),
	})
}
