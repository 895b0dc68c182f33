package testcases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/formfiller/agent"
	"github.com/tbxark/formfiller/dialogue"
	"github.com/tbxark/formfiller/extract"
	"github.com/tbxark/formfiller/intent"
	"github.com/tbxark/formfiller/internal/fakemodel"
	"github.com/tbxark/formfiller/types"
)

// toolModel 按工具名回答：抽取返回表单字段，意图判断返回布尔值，没有工具时生成回复文本
func toolModel(fields map[string]string, confirm map[string]bool) *fakemodel.Model {
	return fakemodel.New(func(call fakemodel.Call) (*schema.Message, error) {
		prompt := call.Prompt()
		if len(call.Options.Tools) == 0 {
			if strings.Contains(prompt, "Missing fields") {
				return nil, errors.New("composer is down")
			}
			return schema.AssistantMessage("Shall I place the order?", nil), nil
		}
		switch name := call.Options.Tools[0].Name; name {
		case "update_form":
			args, ok := fields[humanIn(prompt)]
			if !ok {
				args = "{}"
			}
			return fakemodel.ToolCall(name, args), nil
		case "answer_question":
			value := strings.Contains(prompt, intent.Confirm.Description) && confirm[lastLine(prompt)]
			if value {
				return fakemodel.ToolCall(name, `{"value": true}`), nil
			}
			return fakemodel.ToolCall(name, `{"value": false}`), nil
		default:
			return nil, errors.New("unexpected tool " + name)
		}
	})
}

func lastLine(s string) string {
	return s[strings.LastIndex(s, "\n")+1:]
}

// TestToolBasedForm 测试基于工具调用的抽取、意图判断和模型生成的回复
func TestToolBasedForm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	subs := &Submissions{}
	chatModel := toolModel(
		map[string]string{
			"a small Quattro Formaggi": `{"name": "Quattro Formaggi"}`,
			"small":                    `{"size": "s", "crust": "thin"}`,
			"broken":                   `{"size": `,
		},
		map[string]bool{"go ahead": true},
	)
	classifier, err := intent.NewToolClassifier(chatModel)
	if err != nil {
		t.Fatalf("创建意图判断失败: %v", err)
	}
	form, err := agent.NewForm(PizzaDefinition(true, subs),
		agent.WithExtractor(extract.NewFailbackExtractor(extract.NewToolExtractor(chatModel))),
		agent.WithClassifier(classifier),
		agent.WithComposer(dialogue.NewFailbackComposer(
			dialogue.NewModelComposer(chatModel),
			dialogue.RecapComposer{},
		)),
	)
	if err != nil {
		t.Fatalf("创建表单失败: %v", err)
	}

	// 模型生成回复失败时退回到纯文本摘要
	resp, err := form.Next(ctx, &types.Conversation{Utterance: "a small Quattro Formaggi"})
	if err != nil {
		t.Fatalf("第一轮对话失败: %v", err)
	}
	if !strings.HasPrefix(resp.Message, "Info until now:") {
		t.Errorf("期望退回到摘要，实际为 %q", resp.Message)
	}

	// 参数无法解析时视为没有新信息
	resp, err = form.Next(ctx, &types.Conversation{Utterance: "broken"})
	if err != nil {
		t.Fatalf("解析失败不应中断对话: %v", err)
	}
	if len(resp.AskFor) != 1 {
		t.Errorf("期望仍缺少 size，实际为 %v", resp.AskFor)
	}

	resp, err = form.Next(ctx, &types.Conversation{
		Utterance: "small",
		History: []*schema.Message{
			schema.UserMessage("a small Quattro Formaggi"),
			schema.AssistantMessage("What size?", nil),
		},
	})
	if err != nil {
		t.Fatalf("第三轮对话失败: %v", err)
	}
	if resp.State != types.StateWaitConfirm {
		t.Fatalf("期望状态为 wait_confirm，实际为 %s", resp.State)
	}
	if resp.Message != "Shall I place the order?" {
		t.Errorf("期望模型生成的回复，实际为 %q", resp.Message)
	}
	if _, ok := resp.Record["crust"]; ok {
		t.Error("未声明的字段应被丢弃")
	}

	resp, err = form.Next(ctx, &types.Conversation{Utterance: "go ahead"})
	if err != nil {
		t.Fatalf("确认失败: %v", err)
	}
	if !resp.Submitted {
		t.Errorf("表单应已提交: %+v", resp)
	}
	records := subs.Records()
	if len(records) != 1 || records[0]["size"] != "S" {
		t.Errorf("提交的记录不符: %v", records)
	}
}
