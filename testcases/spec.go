package testcases

import (
	"context"
	"fmt"
	"sync"

	"github.com/tbxark/formfiller/agent"
	"github.com/tbxark/formfiller/fields"
	"github.com/tbxark/formfiller/types"
)

// Submissions 记录提交钩子收到的表单
type Submissions struct {
	mu      sync.Mutex
	records []types.Record
}

func (s *Submissions) Submit(ctx context.Context, record types.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return fmt.Sprintf("submission-%d", len(s.records)), nil
}

func (s *Submissions) Records() []types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Record(nil), s.records...)
}

// PizzaDefinition 是场景测试使用的表单
func PizzaDefinition(confirm bool, subs *Submissions) agent.Definition[string] {
	return agent.Definition[string]{
		Name:        "pizza_order",
		Description: "Order a pizza",
		Fields: fields.MustNew(
			fields.Field{Name: "name", Kind: fields.String, Required: true, Description: "the pizza the user wants"},
			fields.Field{Name: "size", Kind: fields.Enum, Required: true, Options: []string{"S", "M", "L"}},
		),
		RequiresConfirmation: confirm,
		Submit:               subs.Submit,
	}
}

// RegistrationDefinition 用户注册表单
func RegistrationDefinition(subs *Submissions) agent.Definition[string] {
	return agent.Definition[string]{
		Name:        "user_registration",
		Description: "Register a new user account",
		Fields: fields.MustNew(
			fields.Field{Name: "name", Kind: fields.String, Required: true, Description: "full name"},
			fields.Field{Name: "email", Kind: fields.Email, Required: true, Description: "a valid email address"},
			fields.Field{Name: "age", Kind: fields.Integer, Required: true, Min: fields.Bound(18), Max: fields.Bound(100)},
			fields.Field{Name: "newsletter", Kind: fields.Boolean, Default: false, Description: "subscribe to the newsletter"},
		),
		RequiresConfirmation: true,
		Submit:               subs.Submit,
	}
}
