package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/mindwell/internal/logger"
	"github.com/mindwell/internal/store"
	"go.uber.org/zap"
)

var (
	// ErrMoodRequired 在未选择心情（或心情不在固定集合中）时返回，日记保持不变。
	ErrMoodRequired = errors.New("mood is required")
	// ErrMoodDateInvalid 在日期无法解析为 YYYY-MM-DD 时返回。
	ErrMoodDateInvalid = errors.New("invalid mood date")
)

// MoodDateLayout 是日记条目的日期键格式。
const MoodDateLayout = "2006-01-02"

// legacyMoodDateLayout 对应旧版前端 Date.toDateString() 的输出。
const legacyMoodDateLayout = "Mon Jan 02 2006"

const (
	minMoodSlider     = 1
	maxMoodSlider     = 10
	defaultMoodSlider = 5
)

// MoodCategory 是固定的心情分类。
type MoodCategory string

const (
	MoodHappy   MoodCategory = "happy"
	MoodCalm    MoodCategory = "calm"
	MoodNeutral MoodCategory = "neutral"
	MoodSad     MoodCategory = "sad"
	MoodAnxious MoodCategory = "anxious"
)

// UnmarshalJSON 兼容旧数据中以对象 {"id":"happy",...} 保存的心情。
func (m *MoodCategory) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var legacy struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return err
		}
		*m = MoodCategory(legacy.ID)
		return nil
	}

	var raw string
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*m = MoodCategory(raw)
	return nil
}

// MoodOption 描述一种心情的展示信息与分值。
type MoodOption struct {
	ID    MoodCategory `json:"id"`
	Label string       `json:"label"`
	Emoji string       `json:"emoji"`
	Score int          `json:"score"`
}

// MoodOptions 按展示顺序列出全部心情。
var MoodOptions = []MoodOption{
	{ID: MoodHappy, Label: "Happy", Emoji: "😄", Score: 5},
	{ID: MoodCalm, Label: "Calm", Emoji: "😌", Score: 4},
	{ID: MoodNeutral, Label: "Neutral", Emoji: "😐", Score: 3},
	{ID: MoodSad, Label: "Sad", Emoji: "😞", Score: 2},
	{ID: MoodAnxious, Label: "Anxious", Emoji: "😟", Score: 1},
}

// MoodTags 是影响因素标签的固定词表。
var MoodTags = []string{"Work", "Family", "Health", "Friends", "Sleep", "Stress", "Self-care", "Social"}

// LookupMood 根据 ID 查找心情，大小写不敏感。
func LookupMood(raw string) (MoodOption, bool) {
	normalized := MoodCategory(strings.ToLower(strings.TrimSpace(raw)))
	for _, option := range MoodOptions {
		if option.ID == normalized {
			return option, true
		}
	}
	return MoodOption{}, false
}

// MoodEntry 是某一天的情绪记录，Date 为自然键。
type MoodEntry struct {
	Date      string       `json:"date"`
	Mood      MoodCategory `json:"mood"`
	Intensity int          `json:"intensity"`
	Energy    int          `json:"energy"`
	Note      string       `json:"note"`
	Tags      []string     `json:"tags"`
	Score     int          `json:"score"`
}

// MoodDraft 是保存前的编辑状态，Date 为空表示今天。
type MoodDraft struct {
	Mood      string
	Intensity int
	Energy    int
	Note      string
	Tags      []string
	Date      string
}

// MoodStats 汇总日记分析结果
type MoodStats struct {
	Average float64 `json:"average"`
	Streak  int     `json:"streak"`
	Entries int     `json:"entries"`
}

// MoodJournal 维护每天至多一条的情绪日记，按最近保存的日期倒序持久化。
type MoodJournal struct {
	mu      sync.Mutex
	store   store.Store
	now     func() time.Time
	entries []MoodEntry
}

// NewMoodJournal 从 store 载入历史记录。now 为空时使用 time.Now。
func NewMoodJournal(s store.Store, now func() time.Time) *MoodJournal {
	if now == nil {
		now = time.Now
	}
	j := &MoodJournal{store: s, now: now}
	j.hydrate()
	return j
}

func (j *MoodJournal) hydrate() {
	loaded := store.LoadCollection[MoodEntry](j.store, store.KeyMoodHistory)
	seen := make(map[string]struct{}, len(loaded))
	entries := make([]MoodEntry, 0, len(loaded))

	for _, entry := range loaded {
		date, err := NormalizeMoodDate(entry.Date)
		if err != nil {
			logger.Warn("mood: drop entry with unreadable date", zap.String("date", entry.Date))
			continue
		}
		entry.Date = date
		if _, dup := seen[date]; dup {
			continue
		}
		seen[date] = struct{}{}

		if option, ok := LookupMood(string(entry.Mood)); ok {
			entry.Mood = option.ID
			if entry.Score == 0 {
				entry.Score = option.Score
			}
		}
		if entry.Tags == nil {
			entry.Tags = []string{}
		}
		entries = append(entries, entry)
	}

	j.entries = entries
}

// Today 返回当前日期键
func (j *MoodJournal) Today() string {
	return j.now().Format(MoodDateLayout)
}

// LoadForDate 按日期精确查找条目。
func (j *MoodJournal) LoadForDate(date string) (MoodEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, entry := range j.entries {
		if entry.Date == date {
			return cloneMoodEntry(entry), true
		}
	}
	return MoodEntry{}, false
}

// Save 以日期为键插入或替换条目：新条目置顶，其余日期的条目保持原有顺序。
func (j *MoodJournal) Save(draft MoodDraft) (MoodEntry, error) {
	option, ok := LookupMood(draft.Mood)
	if !ok {
		return MoodEntry{}, ErrMoodRequired
	}

	date := strings.TrimSpace(draft.Date)
	if date == "" {
		date = j.Today()
	} else {
		normalized, err := NormalizeMoodDate(date)
		if err != nil {
			return MoodEntry{}, fmt.Errorf("%w: %q", ErrMoodDateInvalid, draft.Date)
		}
		date = normalized
	}

	entry := MoodEntry{
		Date:      date,
		Mood:      option.ID,
		Intensity: clampMoodSlider(draft.Intensity),
		Energy:    clampMoodSlider(draft.Energy),
		Note:      draft.Note,
		Tags:      normalizeMoodTags(draft.Tags),
		Score:     option.Score,
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	updated := make([]MoodEntry, 0, len(j.entries)+1)
	updated = append(updated, entry)
	for _, existing := range j.entries {
		if existing.Date != date {
			updated = append(updated, existing)
		}
	}
	j.entries = updated

	if err := store.SaveCollection(j.store, store.KeyMoodHistory, j.entries); err != nil {
		logger.Error("mood: persist history failed", err, zap.String("date", date))
		return cloneMoodEntry(entry), fmt.Errorf("persist mood history: %w", err)
	}
	return cloneMoodEntry(entry), nil
}

// History 返回持久化顺序的条目副本（最近保存的日期在前）。
func (j *MoodJournal) History() []MoodEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]MoodEntry, len(j.entries))
	for i, entry := range j.entries {
		out[i] = cloneMoodEntry(entry)
	}
	return out
}

// AverageScore 返回保留一位小数的平均分，空日记为 0。
func (j *MoodJournal) AverageScore() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return averageMoodScore(j.entries)
}

// CurrentStreak 从 today 开始逐日向前数连续有记录的天数，遇到第一个缺口即停止。
func (j *MoodJournal) CurrentStreak(today time.Time) int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return moodStreak(j.entries, today)
}

// Stats 汇总平均分、连续天数与条目数。
func (j *MoodJournal) Stats(today time.Time) MoodStats {
	j.mu.Lock()
	defer j.mu.Unlock()

	return MoodStats{
		Average: averageMoodScore(j.entries),
		Streak:  moodStreak(j.entries, today),
		Entries: len(j.entries),
	}
}

func averageMoodScore(entries []MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	total := 0
	for _, entry := range entries {
		total += entry.Score
	}
	mean := float64(total) / float64(len(entries))
	return math.Round(mean*10) / 10
}

func moodStreak(entries []MoodEntry, today time.Time) int {
	dates := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		dates[entry.Date] = struct{}{}
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	streak := 0
	for {
		if _, ok := dates[day.Format(MoodDateLayout)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// NormalizeMoodDate 把 YYYY-MM-DD 或旧版 "Fri May 10 2024" 形式的日期统一为 YYYY-MM-DD。
func NormalizeMoodDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if parsed, err := time.Parse(MoodDateLayout, trimmed); err == nil {
		return parsed.Format(MoodDateLayout), nil
	}
	parsed, err := time.Parse(legacyMoodDateLayout, trimmed)
	if err != nil {
		return "", err
	}
	return parsed.Format(MoodDateLayout), nil
}

func clampMoodSlider(value int) int {
	switch {
	case value == 0:
		return defaultMoodSlider
	case value < minMoodSlider:
		return minMoodSlider
	case value > maxMoodSlider:
		return maxMoodSlider
	default:
		return value
	}
}

// normalizeMoodTags 只保留词表中的标签，去重并保持输入顺序。
func normalizeMoodTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag, ok := canonicalMoodTag(raw)
		if !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func canonicalMoodTag(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, tag := range MoodTags {
		if strings.EqualFold(tag, trimmed) {
			return tag, true
		}
	}
	return "", false
}

func cloneMoodEntry(entry MoodEntry) MoodEntry {
	entry.Tags = append([]string{}, entry.Tags...)
	return entry
}
