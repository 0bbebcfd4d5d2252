package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"todo-manager/internal/models"
	"todo-manager/internal/services"

	"github.com/gin-gonic/gin"
)

// TaskHandler maps the HTTP surface onto the task service and translates
// the service error taxonomy into status codes: validation 400, not-found
// 404, everything else 500.
type TaskHandler struct {
	taskService services.TaskService
	// exposeErrors controls whether 500 responses include the underlying
	// cause text (development only).
	exposeErrors bool
}

func NewTaskHandler(taskService services.TaskService, exposeErrors bool) *TaskHandler {
	return &TaskHandler{taskService: taskService, exposeErrors: exposeErrors}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var input models.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.taskService.Create(input)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id := c.Param("id")

	var input models.UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	task, err := h.taskService.Update(id, input)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := c.Param("id")

	if err := h.taskService.Delete(id); err != nil {
		h.handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	var filter models.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	filter.Tags = splitTags(filter.Tags)

	tasks, err := h.taskService.List(filter)
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (h *TaskHandler) GetArchive(c *gin.Context) {
	groups, err := h.taskService.Archive()
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"total":  len(groups),
	})
}

func (h *TaskHandler) GetTags(c *gin.Context) {
	tags, err := h.taskService.Tags()
	if err != nil {
		h.handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// splitTags accepts both repeated tag parameters and comma-separated
// values in a single parameter.
func splitTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		for _, part := range strings.Split(tag, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (h *TaskHandler) handleTaskError(c *gin.Context, err error) {
	var valErr *services.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"errors": valErr.Errors,
		})
		return
	}

	var nfErr *services.NotFoundError
	if errors.As(err, &nfErr) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":    "not found",
			"resource": nfErr.Resource,
			"id":       nfErr.ID,
		})
		return
	}

	log.Printf("task request failed: %v", err)

	body := gin.H{"error": "failed to process task request"}
	if h.exposeErrors {
		body["cause"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
