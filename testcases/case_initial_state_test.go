package testcases

import (
	"context"
	"testing"

	"github.com/tbxark/formfiller/agent"
	"github.com/tbxark/formfiller/types"
)

// TestInitialState 测试使用预填充的初始数据
func TestInitialState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	subs := &Submissions{}
	script := Script{
		Extract: map[string]string{
			"my email is wangwu@example.com": `{"email": "wangwu@example.com"}`,
		},
	}
	form, err := agent.NewModelForm(RegistrationDefinition(subs), script.Model())
	if err != nil {
		t.Fatalf("创建表单失败: %v", err)
	}

	// 从数据库或其他来源获取的初始数据
	resp, err := form.Prefill(ctx, types.Record{"name": "Wang Wu", "age": 28, "email": "n/a"})
	if err != nil {
		t.Fatalf("预填充失败: %v", err)
	}
	if resp.Record["name"] != "Wang Wu" || resp.Record["age"] != int64(28) {
		t.Errorf("初始数据未生效: %v", resp.Record)
	}
	if len(resp.AskFor) != 1 || resp.AskFor[0] != "email" {
		t.Errorf("期望缺少 email，实际为 %v", resp.AskFor)
	}

	resp, err = form.Next(ctx, &types.Conversation{Utterance: "my email is wangwu@example.com"})
	if err != nil {
		t.Fatalf("补充信息失败: %v", err)
	}
	if resp.State != types.StateWaitConfirm {
		t.Errorf("期望状态为 wait_confirm，实际为 %s", resp.State)
	}
	if resp.Record["name"] != "Wang Wu" {
		t.Errorf("预填充的姓名应保留: %v", resp.Record)
	}
}
