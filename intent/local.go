package intent

import (
	"context"
	"strings"
)

// KeywordClassifier answers true when the whole utterance equals one of the question's keywords.
type KeywordClassifier struct {
	Keywords map[string][]string
}

// NewKeywordClassifier knows English and Chinese keywords for Exit and Confirm.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		Keywords: map[string][]string{
			Exit.Key:    {"cancel", "quit", "exit", "stop", "abort", "取消", "退出", "停止"},
			Confirm.Key: {"yes", "y", "confirm", "ok", "okay", "sure", "submit", "done", "确认", "提交", "好的", "好"},
		},
	}
}

func (c *KeywordClassifier) Classify(ctx context.Context, q Question, utterance string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	normalized = strings.TrimRight(normalized, ".!。！")
	for _, keyword := range c.Keywords[q.Key] {
		if normalized == keyword {
			return true, nil
		}
	}
	return false, nil
}

// FailbackClassifier tries its classifiers in order and returns the first answer given without error.
type FailbackClassifier struct {
	classifiers []Classifier
}

// NewFailbackClassifier answers false when no classifier is given.
func NewFailbackClassifier(classifiers ...Classifier) *FailbackClassifier {
	return &FailbackClassifier{classifiers: classifiers}
}

func (c *FailbackClassifier) Classify(ctx context.Context, q Question, utterance string) (bool, error) {
	var lastErr error
	for _, classifier := range c.classifiers {
		answer, err := classifier.Classify(ctx, q, utterance)
		if err == nil {
			return answer, nil
		}
		lastErr = err
	}
	return false, lastErr
}
