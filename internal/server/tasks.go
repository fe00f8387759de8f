package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/models"
	"tasktracker/internal/query"
	"tasktracker/pkg/apierrors"
)

// listFilter reads the listing query string. Malformed completed or
// categoryId values are rejected; unknown priority, sortBy and order values
// fall back to their defaults.
func listFilter(c *gin.Context) (query.Filter, *models.ValidationError) {
	var (
		f    query.Filter
		errs models.ValidationError
	)

	if raw, ok := c.GetQuery("completed"); ok && raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs.Add("completed", "must be true or false")
		} else {
			f.Completed = &b
		}
	}
	if raw := c.Query("priority"); raw != "" {
		f.Priority = query.ParsePriority(raw)
	}
	if raw, ok := c.GetQuery("categoryId"); ok && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errs.Add("categoryId", "must be a positive integer")
		} else {
			f.CategoryID = &id
		}
	}
	f.Tag = c.Query("tag")
	f.SortBy = query.ParseSortField(c.Query("sortBy"))
	f.Order = query.ParseSortOrder(c.Query("order"))

	if len(errs.Fields) > 0 {
		return f, &errs
	}
	return f, nil
}

// handleListTasks returns the filtered and sorted task list.
func (s *Server) handleListTasks(c *gin.Context) {
	f, verr := listFilter(c)
	if verr != nil {
		s.fail(c, http.StatusBadRequest, apierrors.MsgInvalidQuery, verr.Fields...)
		return
	}

	tasks, err := s.tasks.List(c.Request.Context(), f)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := s.parseID(c, "id", apierrors.MsgInvalidTaskID)
	if !ok {
		return
	}

	task, err := s.tasks.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleCreateTask inserts a new task.
func (s *Server) handleCreateTask(c *gin.Context) {
	body, err := readPayload(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, apierrors.MsgInvalidPayload)
		return
	}
	in := body.newTask()
	if err := body.err(); err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), in)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

// handleUpdateTask changes only the fields present in the body.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := s.parseID(c, "id", apierrors.MsgInvalidTaskID)
	if !ok {
		return
	}

	body, err := readPayload(c)
	if err != nil {
		s.fail(c, http.StatusBadRequest, apierrors.MsgInvalidPayload)
		return
	}
	patch := body.taskPatch()
	if err := body.err(); err != nil {
		s.respondError(c, err)
		return
	}

	task, err := s.tasks.Update(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleToggleTask flips the completion flag.
func (s *Server) handleToggleTask(c *gin.Context) {
	id, ok := s.parseID(c, "id", apierrors.MsgInvalidTaskID)
	if !ok {
		return
	}

	task, err := s.tasks.Toggle(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := s.parseID(c, "id", apierrors.MsgInvalidTaskID)
	if !ok {
		return
	}
	if err := s.tasks.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusNoContent, nil)
}
