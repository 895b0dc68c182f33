package testcases

import (
	"context"
	"testing"

	"github.com/tbxark/formfiller/agent"
	"github.com/tbxark/formfiller/types"
)

// TestCancelInAnyState 测试在任意状态下退出表单
func TestCancelInAnyState(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name  string
		turns []string
	}{
		{name: "incomplete", turns: []string{"a Margherita"}},
		{name: "wait_confirm", turns: []string{"a medium Margherita"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			subs := &Submissions{}
			script := Script{
				Exit: map[string]bool{"forget it": true},
				Extract: map[string]string{
					"a Margherita":        `{"name": "Margherita"}`,
					"a medium Margherita": `{"name": "Margherita", "size": "M"}`,
					"forget it":           `{"size": "L"}`,
				},
			}
			chatModel := script.Model()
			form, err := agent.NewModelForm(PizzaDefinition(true, subs), chatModel)
			if err != nil {
				t.Fatalf("创建表单失败: %v", err)
			}
			for _, turn := range tc.turns {
				if _, err := form.Next(ctx, &types.Conversation{Utterance: turn}); err != nil {
					t.Fatalf("填写失败: %v", err)
				}
			}
			before := form.Record()
			calls := chatModel.CallCount()

			resp, err := form.Next(ctx, &types.Conversation{Utterance: "forget it"})
			if err != nil {
				t.Fatalf("取消失败: %v", err)
			}
			if !resp.Closed || resp.Message != "" || resp.Submitted {
				t.Errorf("表单应静默关闭: %+v", resp)
			}
			// 只调用了一次退出意图判断
			if got := chatModel.CallCount() - calls; got != 1 {
				t.Errorf("期望 1 次模型调用，实际为 %d", got)
			}
			if len(subs.Records()) != 0 {
				t.Error("取消后不应提交")
			}

			// 关闭后的表单不再变化
			resp, err = form.Next(ctx, &types.Conversation{Utterance: "a medium Margherita"})
			if err != nil {
				t.Fatalf("关闭后调用失败: %v", err)
			}
			if !resp.Closed || len(resp.Record) != len(before) {
				t.Errorf("关闭后的表单不应变化: %+v", resp)
			}
			if got := chatModel.CallCount() - calls; got != 1 {
				t.Errorf("关闭后不应再调用模型，实际调用 %d 次", got)
			}
		})
	}
}
