// Package intent answers yes/no questions about the user's latest utterance.
package intent

import (
	"context"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

// Question is a yes/no question asked about the user's utterance. Key names the JSON
// property the model fills in.
type Question struct {
	Key         string
	Description string
}

var (
	Exit    = Question{Key: "exit", Description: "whether a user wants to exit or not"}
	Confirm = Question{Key: "confirm", Description: "whether a user is confirming or not"}
)

// Classifier answers a Question about one utterance.
type Classifier interface {
	Classify(ctx context.Context, q Question, utterance string) (bool, error)
}

// Reducer turns a free-text model reply into an answer.
type Reducer func(q Question, reply string) bool

// Permissive answers true whenever "true" appears anywhere in the reply, ignoring case.
func Permissive(_ Question, reply string) bool {
	return strings.Contains(strings.ToLower(reply), "true")
}

var leadingBool = regexp.MustCompile(`^(?i)(true|false)\b`)

// Strict accepts either a reply that starts with a JSON boolean, as when the model completes
// `"key": `, or a whole JSON object carrying the key. Anything else answers false.
func Strict(q Question, reply string) bool {
	body := strings.TrimSpace(reply)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSpace(body)
	if m := leadingBool.FindStringSubmatch(body); m != nil {
		return strings.EqualFold(m[1], "true")
	}
	end := strings.LastIndex(body, "}")
	if !strings.HasPrefix(body, "{") || end < 0 {
		return false
	}
	var obj map[string]any
	if err := sonic.UnmarshalString(body[:end+1], &obj); err != nil {
		return false
	}
	v, ok := obj[q.Key].(bool)
	return ok && v
}
