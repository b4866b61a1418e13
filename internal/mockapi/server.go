// Package mockapi is an in-memory SyncUp backend built on gin. It issues
// real signed tokens and enforces bearer auth on every non-/auth/ route, so
// clients can be exercised end to end without the production service.
package mockapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server is the fake backend
type Server struct {
	cfg    *Config
	db     *memoryDB
	engine *gin.Engine
}

// NewServer wires the routes
func NewServer(cfg *Config) *Server {
	useJSONFieldNames()
	s := &Server{cfg: cfg, db: newMemoryDB(cfg.bcryptCost)}

	r := gin.New()
	r.Use(gin.Recovery(), requestID())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
	}

	protected := r.Group("/")
	protected.Use(requireBearer(cfg, s.db))
	{
		protected.GET("/account/details", s.accountDetails)
		protected.DELETE("/account/delete", s.deleteAccount)
		protected.GET("/list/all", s.allLists)
		protected.POST("/list/create", s.createList)
		protected.GET("/list/:id", s.listByID)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler for httptest or http.Server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until the server fails
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// IssueToken signs a token for an existing user, bypassing the password check
func (s *Server) IssueToken(username string) (string, error) {
	if _, ok := s.db.user(username); !ok {
		return "", errUserNotFound
	}
	return issueToken(s.cfg, username)
}

// SeedUser registers an account directly
func (s *Server) SeedUser(username, email, password string) error {
	return s.db.createUser(registerRequest{
		FirstName: username,
		LastName:  "Test",
		Username:  username,
		Email:     email,
		Password:  password,
	})
}

// SeedTask describes a task for SeedList
type SeedTask struct {
	Description string
	Completed   bool
}

// SeedList creates a list owned by owner and returns its id
func (s *Server) SeedList(owner, title string, collaborators []string, tasks ...SeedTask) int64 {
	l := s.db.createList(owner, title, collaborators)
	for _, t := range tasks {
		s.db.addTask(l.id, t.Description, t.Completed)
	}
	return l.id
}
