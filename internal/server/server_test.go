package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"folio/internal/config"
	"folio/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Port:            "0",
		JWTSecret:       "test-secret",
		SessionTTLHours: 1,
		Env:             "test",
	}

	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.localGateway.Close(); _ = rdb.Close() })

	app := fiber.New()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)
	return srv, app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

// signupAndLogin registers a user and returns a live token.
func signupAndLogin(t *testing.T, app *fiber.App, username, email string) string {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/api/auth/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status, "signup response: %v", body)
	sess := body["session"].(map[string]any)
	token := sess["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthEndpoints(t *testing.T) {
	_, app := newTestApp(t)

	status, body := doJSON(t, app, "GET", "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = doJSON(t, app, "GET", "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestSignupValidation(t *testing.T) {
	_, app := newTestApp(t)

	tests := []struct {
		name   string
		body   map[string]string
		status int
	}{
		{
			name:   "missing fields",
			body:   map[string]string{"username": "alice"},
			status: http.StatusBadRequest,
		},
		{
			name:   "bad username",
			body:   map[string]string{"username": "Not Valid!", "email": "a@example.com", "password": "secret1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "reserved username",
			body:   map[string]string{"username": "admin", "email": "a@example.com", "password": "secret1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "bad email",
			body:   map[string]string{"username": "alice", "email": "nope", "password": "secret1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "short password",
			body:   map[string]string{"username": "alice", "email": "a@example.com", "password": "12345"},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, app, "POST", "/api/auth/signup", "", tt.body)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestSignupConflicts(t *testing.T) {
	_, app := newTestApp(t)
	signupAndLogin(t, app, "alice", "alice@example.com")

	t.Run("duplicate email", func(t *testing.T) {
		status, body := doJSON(t, app, "POST", "/api/auth/signup", "", map[string]string{
			"username": "allie", "email": "alice@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "User already registered", body["error"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		status, body := doJSON(t, app, "POST", "/api/auth/signup", "", map[string]string{
			"username": "alice", "email": "other@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "Username is already taken", body["error"])
	})
}

func TestLogin(t *testing.T) {
	_, app := newTestApp(t)
	signupAndLogin(t, app, "alice", "alice@example.com")

	t.Run("wrong password", func(t *testing.T) {
		status, body := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "wrongpw",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "Invalid login credentials", body["error"])
	})

	t.Run("unknown email", func(t *testing.T) {
		status, _ := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
			"email": "ghost@example.com", "password": "secret1",
		})
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("success", func(t *testing.T) {
		status, body := doJSON(t, app, "POST", "/api/auth/login", "", map[string]string{
			"email": "alice@example.com", "password": "secret1",
		})
		require.Equal(t, http.StatusOK, status)
		sess := body["session"].(map[string]any)
		assert.NotEmpty(t, sess["token"])
	})
}

func TestSessionProbe(t *testing.T) {
	_, app := newTestApp(t)
	token := signupAndLogin(t, app, "alice", "alice@example.com")

	t.Run("no token", func(t *testing.T) {
		status, body := doJSON(t, app, "GET", "/api/auth/session", "", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Nil(t, body["session"])
	})

	t.Run("live token", func(t *testing.T) {
		status, body := doJSON(t, app, "GET", "/api/auth/session", token, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.NotNil(t, body["session"])
	})

	t.Run("after logout", func(t *testing.T) {
		status, _ := doJSON(t, app, "POST", "/api/auth/logout", token, nil)
		require.Equal(t, http.StatusOK, status)

		status, body := doJSON(t, app, "GET", "/api/auth/session", token, nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Nil(t, body["session"], "revoked token probes as signed out")
	})
}

func TestAdminRequiresAuth(t *testing.T) {
	_, app := newTestApp(t)

	status, _ := doJSON(t, app, "GET", "/api/admin/portfolio", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, "GET", "/api/admin/portfolio", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPortfolioLifecycle(t *testing.T) {
	_, app := newTestApp(t)
	token := signupAndLogin(t, app, "alice", "alice@example.com")

	// Signup seeded the profile.
	status, body := doJSON(t, app, "GET", "/api/admin/portfolio", token, nil)
	require.Equal(t, http.StatusOK, status)
	pi := body["personalInfo"].(map[string]any)
	assert.Equal(t, "alice", pi["username"])
	assert.Equal(t, "New User", pi["professional_title"])
	assert.Empty(t, body["websiteProjects"])

	// Publish a website project.
	status, project := doJSON(t, app, "POST", "/api/admin/website-projects", token, map[string]string{
		"project_title":       "my site",
		"project_description": "a site about things",
		"project_url":         "https://example.com",
	})
	require.Equal(t, http.StatusCreated, status)
	projectID := project["id"].(string)
	require.NotEmpty(t, projectID)

	// Publish a blog post.
	status, post := doJSON(t, app, "POST", "/api/admin/blog-posts", token, map[string]any{
		"blog_title":    "hello world",
		"creation_date": "2025-06-01T00:00:00Z",
		"blog_content":  "First paragraph.\n\nSecond paragraph.",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, post["id"])

	// The public page shows everything.
	status, public := doJSON(t, app, "GET", "/api/portfolio/alice", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, public["personalInfo"])
	projects := public["websiteProjects"].([]any)
	require.Len(t, projects, 1)
	assert.Equal(t, "my site", projects[0].(map[string]any)["project_title"])
	posts := public["blogPosts"].([]any)
	require.Len(t, posts, 1)

	// Update and remove.
	status, _ = doJSON(t, app, "PUT", "/api/admin/website-projects/"+projectID, token, map[string]string{
		"project_title": "renamed site",
		"project_url":   "https://example.com",
	})
	require.Equal(t, http.StatusOK, status)

	status, public = doJSON(t, app, "GET", "/api/portfolio/alice", "", nil)
	require.Equal(t, http.StatusOK, status)
	projects = public["websiteProjects"].([]any)
	require.Len(t, projects, 1)
	assert.Equal(t, "renamed site", projects[0].(map[string]any)["project_title"])

	status, _ = doJSON(t, app, "DELETE", "/api/admin/website-projects/"+projectID, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, "GET", "/api/admin/portfolio", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["websiteProjects"])
}

func TestSingletonUpserts(t *testing.T) {
	_, app := newTestApp(t)
	token := signupAndLogin(t, app, "alice", "alice@example.com")

	status, about := doJSON(t, app, "PUT", "/api/admin/about-info", token, map[string]string{
		"about_text": "I build things.\n\nMostly software.",
		"resume_url": "https://example.com/resume.pdf",
	})
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, about["id"], "first save creates the row")

	status, links := doJSON(t, app, "PUT", "/api/admin/social-media", token, map[string]string{
		"github_url": "https://github.com/alice",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://github.com/alice", links["github_url"])

	status, public := doJSON(t, app, "GET", "/api/portfolio/alice", "", nil)
	require.Equal(t, http.StatusOK, status)
	gotAbout := public["aboutInfo"].(map[string]any)
	assert.Equal(t, "I build things.\n\nMostly software.", gotAbout["about_text"])
}

func TestUnknownUsernameRendersEmpty(t *testing.T) {
	_, app := newTestApp(t)

	status, body := doJSON(t, app, "GET", "/api/portfolio/ghost", "", nil)
	assert.Equal(t, http.StatusOK, status, "unknown username is a blank page, not an error")
	assert.Nil(t, body["personalInfo"])
	assert.Empty(t, body["websiteProjects"])
}

func TestSearchPortfolios(t *testing.T) {
	_, app := newTestApp(t)
	signupAndLogin(t, app, "carol", "carol@example.com")
	signupAndLogin(t, app, "carlos", "carlos@example.com")

	status, body := doJSON(t, app, "GET", "/api/portfolio/search?q=car", "", nil)
	require.Equal(t, http.StatusOK, status)
	results := body["results"].([]any)
	assert.Len(t, results, 2)

	status, _ = doJSON(t, app, "GET", "/api/portfolio/search?q=", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRevokedTokenCannotMutate(t *testing.T) {
	_, app := newTestApp(t)
	token := signupAndLogin(t, app, "alice", "alice@example.com")

	status, _ := doJSON(t, app, "POST", "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, app, "POST", "/api/admin/website-projects", token, map[string]string{
		"project_title": "too late",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminWritesStayWithinTenant(t *testing.T) {
	_, app := newTestApp(t)
	alice := signupAndLogin(t, app, "alice", "alice@example.com")
	bob := signupAndLogin(t, app, "bob", "bob@example.com")

	status, project := doJSON(t, app, "POST", "/api/admin/website-projects", alice, map[string]string{
		"project_title": "alice's site",
		"project_url":   "https://alice.example.com",
	})
	require.Equal(t, http.StatusCreated, status)
	projectID := project["id"].(string)

	status, _ = doJSON(t, app, "DELETE", "/api/admin/website-projects/"+projectID, bob, nil)
	assert.Equal(t, http.StatusNotFound, status, "another user's row reads as absent")

	status, _ = doJSON(t, app, "PUT", "/api/admin/website-projects/"+projectID, bob, map[string]string{
		"project_title": "hijacked",
	})
	assert.Equal(t, http.StatusNotFound, status)

	// An update against an id nobody owns must not plant a row either.
	status, _ = doJSON(t, app, "PUT", "/api/admin/website-projects/"+uuid.NewString(), bob, map[string]string{
		"project_title": "planted",
	})
	assert.Equal(t, http.StatusNotFound, status)

	status, body := doJSON(t, app, "GET", "/api/admin/portfolio", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["websiteProjects"])

	status, public := doJSON(t, app, "GET", "/api/portfolio/alice", "", nil)
	require.Equal(t, http.StatusOK, status)
	projects := public["websiteProjects"].([]any)
	require.Len(t, projects, 1)
	assert.Equal(t, "alice's site", projects[0].(map[string]any)["project_title"])
}

func TestSignOutReleasesSynchronizer(t *testing.T) {
	srv, app := newTestApp(t)
	token := signupAndLogin(t, app, "alice", "alice@example.com")

	status, _ := doJSON(t, app, "GET", "/api/admin/portfolio", token, nil)
	require.Equal(t, http.StatusOK, status)

	srv.syncMu.Lock()
	held := len(srv.syncs)
	srv.syncMu.Unlock()
	require.Equal(t, 1, held)

	status, _ = doJSON(t, app, "POST", "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	// Local event delivery is synchronous, so the entry is gone by now.
	srv.syncMu.Lock()
	held = len(srv.syncs)
	srv.syncMu.Unlock()
	assert.Zero(t, held)
}

func TestSessionEventsStreamPushesSignOut(t *testing.T) {
	_, app := newTestApp(t)
	token := signupAndLogin(t, app, "alice", "alice@example.com")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	addr := ln.Addr().String()

	var conn *websocket.Conn
	require.Eventually(t, func() bool {
		c, _, dialErr := websocket.DefaultDialer.Dial("ws://"+addr+"/api/session/events?token="+token, nil)
		if dialErr != nil {
			return false
		}
		conn = c
		return true
	}, 3*time.Second, 50*time.Millisecond, "listener should come up")
	t.Cleanup(func() { _ = conn.Close() })

	var ev struct {
		Type   string `json:"type"`
		UserID string `json:"user_id"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "signed_in", ev.Type)
	assert.NotEmpty(t, ev.UserID)

	req, err := http.NewRequest(http.MethodPost, "http://"+addr+"/api/auth/logout", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "signed_out", ev.Type)
}
