package service

import (
	"context"
	"errors"
)

// ErrSpeechUnsupported 表示当前平台没有语音识别/合成能力。
var ErrSpeechUnsupported = errors.New("speech recognition not supported")

// ErrNoTranscript 表示识别结束但没有得到任何文本。
var ErrNoTranscript = errors.New("no transcript captured")

// TranscriptEvent 是识别过程中产生的事件；Final 为 true 时 Text 是完整结果。
type TranscriptEvent struct {
	Text  string
	Final bool
	Err   error
}

// SpeechCapability 抽象平台的语音输入输出。
// Start 开始一次识别，事件流在识别结束或 ctx 取消时关闭。
type SpeechCapability interface {
	Start(ctx context.Context, language string) (<-chan TranscriptEvent, error)
	Speak(ctx context.Context, text, language string) error
}

// UnsupportedSpeech 用于没有音频设备的环境。
type UnsupportedSpeech struct{}

func (UnsupportedSpeech) Start(context.Context, string) (<-chan TranscriptEvent, error) {
	return nil, ErrSpeechUnsupported
}

func (UnsupportedSpeech) Speak(context.Context, string, string) error {
	return ErrSpeechUnsupported
}
