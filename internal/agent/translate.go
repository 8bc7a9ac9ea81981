package agent

import "context"

// Translator 把简介翻译为目标语言；detect 为 true 时由实现自行识别源语言。
type Translator interface {
	Translate(ctx context.Context, text, lang string, detect bool) (string, error)
}

// Identity 原样返回简介（默认实现）。
type Identity struct{}

func (Identity) Translate(_ context.Context, text, _ string, _ bool) (string, error) {
	return text, nil
}
