package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskflow/internal/posts"
	"taskflow/internal/service"
)

type handler struct {
	svc     service.Service
	version string
	started time.Time
}

type statsResponse struct {
	service.Stats
	Percentage int `json:"percentage"`
}

func newStats(st service.Stats) statsResponse {
	return statsResponse{Stats: st, Percentage: st.Percentage()}
}

type addTaskRequest struct {
	Title string `json:"title"`
}

func (h *handler) health(c *gin.Context) {
	storage := "ok"
	if h.svc.Tasks().Degraded() {
		storage = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"storage": storage,
		"posts":   h.svc.Posts().State().String(),
	})
}

func (h *handler) listTasks(c *gin.Context) {
	filter, err := service.ParseFilter(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": nonNil(h.svc.Tasks().Filter(filter)),
		"stats": newStats(h.svc.Tasks().Stats()),
	})
}

func (h *handler) addTask(c *gin.Context) {
	var req addTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.svc.Tasks().Add(c.Request.Context(), req.Title)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			// Blank titles are dropped silently.
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *handler) toggleTask(c *gin.Context) {
	task, ok := h.svc.Tasks().Toggle(c.Request.Context(), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *handler) deleteTask(c *gin.Context) {
	if !h.svc.Tasks().Delete(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) clearTasks(c *gin.Context) {
	h.svc.Tasks().Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, newStats(h.svc.Tasks().Stats()))
}

func (h *handler) listPosts(c *gin.Context) {
	page := 1
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number: " + v})
			return
		}
		page = n
	}

	b := h.svc.Posts()
	state, err := b.Status()
	switch state {
	case service.Idle, service.Loading:
		c.JSON(http.StatusServiceUnavailable, gin.H{"state": state.String()})
		return
	case service.Failed:
		c.JSON(http.StatusBadGateway, gin.H{
			"state":     state.String(),
			"error":     err.Error(),
			"retriable": true,
		})
		return
	}

	// Each request renders its own view; the browser's query and page
	// belong to the CLI session.
	c.JSON(http.StatusOK, posts.View(b.Items(), c.Query("q"), page))
}

func (h *handler) retryPosts(c *gin.Context) {
	b := h.svc.Posts()
	err := b.Retry(c.Request.Context())
	state, _ := b.Status()

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"state": state.String(), "total": len(b.Items())})
	case errors.Is(err, posts.ErrNotRetriable):
		c.JSON(http.StatusConflict, gin.H{"state": state.String(), "error": err.Error()})
	case errors.Is(err, posts.ErrSuperseded):
		// A newer fetch owns the outcome.
		c.JSON(http.StatusAccepted, gin.H{"state": state.String()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"state": state.String(), "error": err.Error(), "retriable": true})
	}
}

func nonNil(ts []service.Task) []service.Task {
	if ts == nil {
		return []service.Task{}
	}
	return ts
}
