package main

import (
	"fmt"
	"log"
	"time"

	"github.com/mindwell/internal/config"
	"github.com/mindwell/internal/service"
	"github.com/mindwell/internal/store"
)

// 测试数据生成器：写入一组每日任务和最近两周的情绪记录
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("读取配置失败:", err)
	}

	s, _, err := store.Open(cfg)
	if err != nil {
		log.Fatal("存储初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	routines := service.NewTaskRegistry(s, nil)
	moods := service.NewMoodJournal(s, nil)
	tasks, entries, err := generate(routines, moods, time.Now())
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("任务: %d 条\n", tasks)
	fmt.Printf("情绪记录: %d 天\n", entries)
}

var demoTasks = []service.TaskInput{
	{Title: "Drink a glass of water", Time: "07:00", Category: "morning"},
	{Title: "Meditate for 10 minutes", Time: "07:15", Category: "morning", Priority: true},
	{Title: "Plan top three priorities", Time: "09:00", Category: "work"},
	{Title: "Stretch break", Time: "15:00", Category: "health"},
	{Title: "Walk outside", Category: "health"},
	{Title: "Call a friend", Category: "self-care"},
	{Title: "No screens after 22:00", Time: "22:00", Category: "night", Priority: true},
}

var demoMoods = []string{"happy", "calm", "neutral", "calm", "sad", "anxious", "calm"}

var demoNotes = []string{
	"Slept well and felt rested.",
	"Busy day but manageable.",
	"",
	"Quiet evening with family.",
	"Work stress piled up.",
	"Couldn't stop overthinking.",
	"Long walk helped a lot.",
}

// 已有任务时跳过任务生成；情绪记录按日期覆盖
func generate(routines *service.TaskRegistry, moods *service.MoodJournal, today time.Time) (int, int, error) {
	tasks := 0
	if len(routines.List()) == 0 {
		for i, input := range demoTasks {
			task, err := routines.Add(input)
			if err != nil {
				return tasks, 0, err
			}
			tasks++
			// 前几条默认已完成
			if i < 3 {
				if _, _, err := routines.ToggleDone(task.ID); err != nil {
					return tasks, 0, err
				}
			}
		}
	} else {
		fmt.Println("任务已存在，跳过创建")
	}

	entries := 0
	// 最早的日期先保存，使最近的日期位于历史最前
	for offset := 13; offset >= 0; offset-- {
		// 第 10 天留空，制造一次连续记录中断
		if offset == 10 {
			continue
		}
		idx := offset % len(demoMoods)
		_, err := moods.Save(service.MoodDraft{
			Mood:      demoMoods[idx],
			Intensity: 3 + idx,
			Energy:    8 - idx,
			Note:      demoNotes[idx],
			Tags:      []string{service.MoodTags[idx%len(service.MoodTags)]},
			Date:      today.AddDate(0, 0, -offset).Format(service.MoodDateLayout),
		})
		if err != nil {
			return tasks, entries, err
		}
		entries++
	}

	return tasks, entries, nil
}
