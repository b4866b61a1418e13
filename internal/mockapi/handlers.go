package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/syncup/syncup-go/api"
)

type registerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createListRequest struct {
	Title         string   `json:"title" binding:"required"`
	Collaborators []string `json:"collaborators"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessages(err)})
		return
	}

	switch err := s.db.createUser(req); {
	case errors.Is(err, errUsernameTaken), errors.Is(err, errEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
	default:
		c.JSON(http.StatusCreated, api.MessageResponse{Message: "User registered successfully"})
	}
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessages(err)})
		return
	}

	username, err := s.db.authenticate(req.Username, req.Password)
	switch {
	case errors.Is(err, errUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		return
	}

	token, err := issueToken(s.cfg, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue token"})
		return
	}
	c.JSON(http.StatusOK, api.TokenResponse{Token: token})
}

func (s *Server) accountDetails(c *gin.Context) {
	u, ok := s.db.user(currentUser(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": errUserNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, api.UserResponseDTO{
		ID:        u.id,
		Username:  u.username,
		FirstName: u.firstName,
		LastName:  u.lastName,
		Email:     u.email,
	})
}

func (s *Server) deleteAccount(c *gin.Context) {
	if !s.db.deleteUser(currentUser(c)) {
		c.JSON(http.StatusNotFound, gin.H{"message": errUserNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) allLists(c *gin.Context) {
	lists := s.db.listsFor(currentUser(c))
	out := make([]api.TaskListResponseDTO, 0, len(lists))
	for _, l := range lists {
		out = append(out, toListDTO(l))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) listByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid list id"})
		return
	}
	l, err := s.db.list(currentUser(c), id)
	switch {
	case errors.Is(err, errListNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, errNotMember):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusOK, toListDTO(l))
	}
}

func (s *Server) createList(c *gin.Context) {
	var req createListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": bindingMessages(err)})
		return
	}
	l := s.db.createList(currentUser(c), strings.TrimSpace(req.Title), req.Collaborators)
	c.JSON(http.StatusCreated, toListDTO(l))
}

func toListDTO(l taskList) api.TaskListResponseDTO {
	dto := api.TaskListResponseDTO{
		ID:            l.id,
		Title:         l.title,
		Owner:         l.owner,
		Collaborators: append([]string{}, l.collaborators...),
		Tasks:         make([]api.TaskItemResponseDTO, 0, len(l.tasks)),
	}
	for _, t := range l.tasks {
		dto.Tasks = append(dto.Tasks, api.TaskItemResponseDTO{
			ID:            t.id,
			Description:   t.description,
			Completed:     t.completed,
			TaskListTitle: l.title,
		})
	}
	return dto
}

// bindingMessages turns gin binding failures into one message per field
var bindingTagNames sync.Once

// useJSONFieldNames makes gin's shared validator report json field names
func useJSONFieldNames() {
	bindingTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(api.JSONFieldName)
		}
	})
}

func bindingMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Malformed request body"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return msgs
}
