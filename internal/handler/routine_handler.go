package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mindwell/internal/service"
)

type taskPayload struct {
	Title    string `json:"title"`
	Time     string `json:"time"`
	Category string `json:"category"`
	Priority bool   `json:"priority"`
}

type taskTitlePayload struct {
	Title string `json:"title"`
}

type taskMoodPayload struct {
	Mood string `json:"mood"`
}

// ListTasks 返回任务列表；?category= 为空时使用会话中选中的分类，all 表示全部。
func (a *API) ListTasks(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("category"))
	if raw == "" {
		if session := sessionOrNil(c); session != nil {
			if stored, ok := session.Get(sessionKeyCategory).(string); ok {
				raw = stored
			}
		}
	}

	tasks := a.routines.List()
	selected := ""
	if raw != "" && raw != "all" {
		category, ok := service.ParseTaskCategory(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, a.errorMessage(c, "task_category_invalid"))
			return
		}
		tasks = a.routines.ByCategory(category)
		selected = string(category)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":    tasks,
		"category": selected,
		"progress": a.routines.CompletionRatio(),
	})
}

// CreateTask 新增任务。
func (a *API) CreateTask(c *gin.Context) {
	var payload taskPayload
	if !bindJSON(c, &payload, a.errorMessage(c, "invalid_payload")) {
		return
	}

	task, err := a.routines.Add(service.TaskInput{
		Title:    payload.Title,
		Time:     payload.Time,
		Category: payload.Category,
		Priority: payload.Priority,
	})
	if err != nil {
		a.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": task, "progress": a.routines.CompletionRatio()})
}

// ToggleTask 切换完成状态。
func (a *API) ToggleTask(c *gin.Context) {
	a.mutateTask(c, func(id int64) (service.Task, bool, error) {
		return a.routines.ToggleDone(id)
	})
}

// ToggleTaskPriority 切换优先级。
func (a *API) ToggleTaskPriority(c *gin.Context) {
	a.mutateTask(c, func(id int64) (service.Task, bool, error) {
		return a.routines.TogglePriority(id)
	})
}

// UpdateTaskTitle 修改标题，成功后结束编辑状态。
func (a *API) UpdateTaskTitle(c *gin.Context) {
	var payload taskTitlePayload
	if !bindJSON(c, &payload, a.errorMessage(c, "invalid_payload")) {
		return
	}

	a.mutateTask(c, func(id int64) (service.Task, bool, error) {
		task, ok, err := a.routines.UpdateTitle(id, payload.Title)
		if ok {
			clearEditingTask(c, id)
		}
		return task, ok, err
	})
}

// SetTaskMood 为任务记录心情符号。
func (a *API) SetTaskMood(c *gin.Context) {
	var payload taskMoodPayload
	if !bindJSON(c, &payload, a.errorMessage(c, "invalid_payload")) {
		return
	}

	a.mutateTask(c, func(id int64) (service.Task, bool, error) {
		return a.routines.SetMood(id, payload.Mood)
	})
}

// DeleteTask 删除任务。
func (a *API) DeleteTask(c *gin.Context) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.errorMessage(c, "invalid_task_id"))
		return
	}

	deleted, err := a.routines.Delete(id)
	if err != nil {
		a.respondTaskError(c, err)
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, a.errorMessage(c, "task_not_found"))
		return
	}

	clearEditingTask(c, id)
	c.JSON(http.StatusOK, gin.H{"deleted": id, "progress": a.routines.CompletionRatio()})
}

// GetTaskProgress 返回完成度。
func (a *API) GetTaskProgress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"progress": a.routines.CompletionRatio()})
}

func (a *API) mutateTask(c *gin.Context, apply func(int64) (service.Task, bool, error)) {
	id, err := parseInt64Param(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, a.errorMessage(c, "invalid_task_id"))
		return
	}

	task, ok, err := apply(id)
	if err != nil {
		a.respondTaskError(c, err)
		return
	}
	if !ok {
		respondError(c, http.StatusNotFound, a.errorMessage(c, "task_not_found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task, "progress": a.routines.CompletionRatio()})
}

func (a *API) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskTitleRequired):
		respondError(c, http.StatusBadRequest, a.errorMessage(c, "task_title_required"))
	case errors.Is(err, service.ErrTaskCategoryInvalid):
		respondError(c, http.StatusBadRequest, a.errorMessage(c, "task_category_invalid"))
	default:
		c.Error(err)
		respondError(c, http.StatusInternalServerError, a.errorMessage(c, "save_failed"))
	}
}
