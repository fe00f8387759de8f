package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/models"
	"tasktracker/pkg/apierrors"
)

// categoryWithTasks is the list and get response: tasks is always present,
// as an empty array when nothing references the category.
type categoryWithTasks struct {
	models.Category
	Tasks []models.Task `json:"tasks"`
}

func categoryResponse(c models.Category) categoryWithTasks {
	tasks := c.Tasks
	if tasks == nil {
		tasks = []models.Task{}
	}
	return categoryWithTasks{Category: c, Tasks: tasks}
}

// handleListCategories returns all categories with their tasks.
func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.categories.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]categoryWithTasks, len(categories))
	for i, category := range categories {
		out[i] = categoryResponse(category)
	}
	respondSuccess(c, http.StatusOK, out)
}

func (s *Server) handleGetCategory(c *gin.Context) {
	id, ok := s.parseID(c, "id", apierrors.MsgInvalidCategoryID)
	if !ok {
		return
	}

	category, err := s.categories.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, categoryResponse(category))
}

// handleCreateCategory creates a new category entity.
func (s *Server) handleCreateCategory(c *gin.Context) {
	body, err := readPayload(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, apierrors.MsgInvalidPayload)
		return
	}
	in := body.newCategory()
	if err := body.err(); err != nil {
		s.respondError(c, err)
		return
	}

	category, err := s.categories.Create(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, category)
}

// handleUpdateCategory renames or recolors an existing category.
func (s *Server) handleUpdateCategory(c *gin.Context) {
	id, ok := s.parseID(c, "id", apierrors.MsgInvalidCategoryID)
	if !ok {
		return
	}

	body, err := readPayload(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, apierrors.MsgInvalidPayload)
		return
	}
	patch := body.categoryPatch()
	if err := body.err(); err != nil {
		s.respondError(c, err)
		return
	}

	category, err := s.categories.Update(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

// handleDeleteCategory removes a category and detaches its tasks.
func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, ok := s.parseID(c, "id", apierrors.MsgInvalidCategoryID)
	if !ok {
		return
	}
	if err := s.categories.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
