package service

import (
	"errors"
	"fmt"
	"os"

	"github.com/mindwell/internal/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// RoutineTemplate 描述一组可批量导入的每日任务，格式为 YAML：
//
//	tasks:
//	  - title: Meditate
//	    time: "07:00"
//	    category: morning
//	    priority: true
type RoutineTemplate struct {
	Tasks []RoutineTemplateTask `yaml:"tasks"`
}

// RoutineTemplateTask 是模板中的单条任务。
type RoutineTemplateTask struct {
	Title    string `yaml:"title"`
	Time     string `yaml:"time"`
	Category string `yaml:"category"`
	Priority bool   `yaml:"priority"`
}

// LoadRoutineTemplate 从文件读取例程模板。
func LoadRoutineTemplate(path string) (RoutineTemplate, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RoutineTemplate{}, fmt.Errorf("read routine template: %w", err)
	}
	return ParseRoutineTemplate(raw)
}

// ParseRoutineTemplate 解析 YAML 模板内容。
func ParseRoutineTemplate(raw []byte) (RoutineTemplate, error) {
	var tpl RoutineTemplate
	if err := yaml.Unmarshal(raw, &tpl); err != nil {
		return RoutineTemplate{}, fmt.Errorf("parse routine template: %w", err)
	}
	return tpl, nil
}

// ApplyTemplate 逐条调用 Add 导入模板，校验失败的条目被跳过，返回成功导入的数量。
func (r *TaskRegistry) ApplyTemplate(tpl RoutineTemplate) (int, error) {
	added := 0
	for _, item := range tpl.Tasks {
		_, err := r.Add(TaskInput{
			Title:    item.Title,
			Time:     item.Time,
			Category: item.Category,
			Priority: item.Priority,
		})
		switch {
		case err == nil:
			added++
		case errors.Is(err, ErrTaskTitleRequired), errors.Is(err, ErrTaskCategoryInvalid):
			logger.Warn("routine: skip template task", zap.String("title", item.Title), zap.Error(err))
		default:
			return added, err
		}
	}
	return added, nil
}
