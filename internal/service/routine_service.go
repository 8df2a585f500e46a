package service

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/mindwell/internal/logger"
	"github.com/mindwell/internal/store"
	"go.uber.org/zap"
)

var (
	// ErrTaskTitleRequired 在标题去空白后为空时返回，注册表保持不变。
	ErrTaskTitleRequired = errors.New("task title is required")
	// ErrTaskCategoryInvalid 在分类不属于固定集合时返回。
	ErrTaskCategoryInvalid = errors.New("invalid task category")
)

// TaskCategory 是每日任务的固定分类。
type TaskCategory string

const (
	CategoryMorning  TaskCategory = "morning"
	CategoryWork     TaskCategory = "work"
	CategoryHealth   TaskCategory = "health"
	CategorySelfCare TaskCategory = "self-care"
	CategoryNight    TaskCategory = "night"
)

// TaskCategories 按展示顺序列出全部分类。
var TaskCategories = []TaskCategory{CategoryMorning, CategoryWork, CategoryHealth, CategorySelfCare, CategoryNight}

// DefaultTaskTime 是未指定时间时的占位标签。
const DefaultTaskTime = "Anytime"

// ParseTaskCategory 归一化分类名称，未知分类返回 false。
func ParseTaskCategory(raw string) (TaskCategory, bool) {
	normalized := TaskCategory(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range TaskCategories {
		if candidate == normalized {
			return candidate, true
		}
	}
	return "", false
}

// Task 是每日例程中的一项任务。
type Task struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Time     string       `json:"time"`
	Category TaskCategory `json:"category"`
	Priority bool         `json:"priority"`
	Mood     string       `json:"mood"`
	Done     bool         `json:"done"`
}

// TaskInput 定义新建任务时可配置字段
type TaskInput struct {
	Title    string
	Time     string
	Category string
	Priority bool
}

// Progress 汇总完成情况，Percent 范围 [0,100]。
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// TaskRegistry 负责每日任务的增删改与完成度统计。
// 每次变更后整体写回 store.KeyRoutineTasks。
type TaskRegistry struct {
	mu    sync.Mutex
	store store.Store
	ids   IDAllocator
	tasks []Task
}

// NewTaskRegistry 从 store 载入已保存的任务。ids 为空时使用 ClockIDAllocator。
func NewTaskRegistry(s store.Store, ids IDAllocator) *TaskRegistry {
	if ids == nil {
		ids = NewClockIDAllocator(nil)
	}
	r := &TaskRegistry{store: s, ids: ids}
	r.hydrate()
	return r
}

func (r *TaskRegistry) hydrate() {
	loaded := store.LoadCollection[Task](r.store, store.KeyRoutineTasks)
	seen := make(map[int64]struct{}, len(loaded))
	tasks := make([]Task, 0, len(loaded))

	for _, task := range loaded {
		if _, dup := seen[task.ID]; dup {
			logger.Warn("routine: drop duplicate task id", zap.Int64("id", task.ID))
			continue
		}
		seen[task.ID] = struct{}{}

		// 旧记录可能缺少 time/category
		if strings.TrimSpace(task.Time) == "" {
			task.Time = DefaultTaskTime
		}
		if category, ok := ParseTaskCategory(string(task.Category)); ok {
			task.Category = category
		} else {
			task.Category = CategoryMorning
		}

		r.ids.Observe(task.ID)
		tasks = append(tasks, task)
	}

	r.tasks = tasks
}

// Add 追加一条新任务并持久化。
func (r *TaskRegistry) Add(input TaskInput) (Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, ErrTaskTitleRequired
	}

	category, ok := ParseTaskCategory(input.Category)
	if !ok {
		return Task{}, fmt.Errorf("%w: %q", ErrTaskCategoryInvalid, input.Category)
	}

	taskTime := strings.TrimSpace(input.Time)
	if taskTime == "" {
		taskTime = DefaultTaskTime
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task := Task{
		ID:       r.ids.Next(),
		Title:    title,
		Time:     taskTime,
		Category: category,
		Priority: input.Priority,
	}
	r.tasks = append(r.tasks, task)

	return task, r.persistLocked()
}

// ToggleDone 翻转完成状态；id 不存在时返回 false 且不写入。
func (r *TaskRegistry) ToggleDone(id int64) (Task, bool, error) {
	return r.mutate(id, func(task *Task) {
		task.Done = !task.Done
	})
}

// TogglePriority 翻转优先级标记。
func (r *TaskRegistry) TogglePriority(id int64) (Task, bool, error) {
	return r.mutate(id, func(task *Task) {
		task.Priority = !task.Priority
	})
}

// UpdateTitle 原地替换标题，不做非空校验。
func (r *TaskRegistry) UpdateTitle(id int64, title string) (Task, bool, error) {
	return r.mutate(id, func(task *Task) {
		task.Title = title
	})
}

// SetMood 设置任务的心情标记，与完成状态无关。
func (r *TaskRegistry) SetMood(id int64, symbol string) (Task, bool, error) {
	symbol = strings.TrimSpace(symbol)
	return r.mutate(id, func(task *Task) {
		task.Mood = symbol
	})
}

// Delete 删除任务；id 不存在时为 no-op。
func (r *TaskRegistry) Delete(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return false, nil
	}

	r.tasks = slices.Delete(r.tasks, idx, idx+1)
	return true, r.persistLocked()
}

// List 返回按创建顺序排列的任务副本。
func (r *TaskRegistry) List() []Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// Get 根据 ID 获取任务
func (r *TaskRegistry) Get(id int64) (Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return Task{}, false
	}
	return r.tasks[idx], true
}

// ByCategory 按创建顺序返回指定分类的任务，每次调用重新计算。
func (r *TaskRegistry) ByCategory(category TaskCategory) []Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if task.Category == category {
			out = append(out, task)
		}
	}
	return out
}

// CompletionRatio 统计已完成数量、总数与百分比，总数为 0 时百分比为 0。
func (r *TaskRegistry) CompletionRatio() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()

	progress := Progress{Total: len(r.tasks)}
	for _, task := range r.tasks {
		if task.Done {
			progress.Completed++
		}
	}
	if progress.Total > 0 {
		progress.Percent = int(math.Round(100 * float64(progress.Completed) / float64(progress.Total)))
	}
	return progress
}

func (r *TaskRegistry) mutate(id int64, apply func(*Task)) (Task, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return Task{}, false, nil
	}

	apply(&r.tasks[idx])
	return r.tasks[idx], true, r.persistLocked()
}

func (r *TaskRegistry) indexLocked(id int64) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *TaskRegistry) persistLocked() error {
	if err := store.SaveCollection(r.store, store.KeyRoutineTasks, r.tasks); err != nil {
		logger.Error("routine: persist tasks failed", err, zap.Int("count", len(r.tasks)))
		return fmt.Errorf("persist tasks: %w", err)
	}
	return nil
}
