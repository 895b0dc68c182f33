package testcases

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/tbxark/formfiller/intent"
	"github.com/tbxark/formfiller/internal/fakemodel"
)

type Config struct {
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"BASE_URL"`
	Model   string `envconfig:"MODEL" default:"gpt-4o-mini"`
}

func InitChatModel(t *testing.T) *openai.ChatModel {
	t.Helper()
	if os.Getenv("FORMFILLER_RUN_LIVE_TESTS") != "1" {
		t.Skip("set FORMFILLER_RUN_LIVE_TESTS=1 to run live LLM tests")
		return nil
	}
	_ = godotenv.Load("../.env")
	var conf Config
	if err := envconfig.Process("FORMFILLER_OPENAI", &conf); err != nil {
		t.Skipf("failed to load config: %v", err)
		return nil
	}
	if conf.APIKey == "" {
		t.Skip("FORMFILLER_OPENAI_API_KEY is empty")
		return nil
	}
	chatModel, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:  conf.APIKey,
		Model:   conf.Model,
		BaseURL: conf.BaseURL,
	})
	if err != nil {
		t.Fatalf("failed to init chat model: %v", err)
		return nil
	}
	return chatModel
}

// Script 描述脚本化模型对每句用户输入的回答
type Script struct {
	Exit    map[string]bool
	Confirm map[string]bool
	// Extract maps an utterance to the raw extraction reply. Unlisted utterances yield "{}".
	Extract map[string]string
}

// Model 按提示词的类型路由到脚本中的回答
func (s Script) Model() *fakemodel.Model {
	return fakemodel.Text(func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, intent.Exit.Description):
			return boolReply(s.Exit[saidIn(prompt)]), nil
		case strings.Contains(prompt, intent.Confirm.Description):
			return boolReply(s.Confirm[saidIn(prompt)]), nil
		default:
			if reply, ok := s.Extract[humanIn(prompt)]; ok {
				return reply, nil
			}
			return "{}", nil
		}
	})
}

func boolReply(v bool) string {
	if v {
		return "true\n}"
	}
	return "false\n}"
}

// saidIn reads the utterance out of an intent prompt.
func saidIn(prompt string) string {
	const marker = "User said \""
	i := strings.Index(prompt, marker)
	if i < 0 {
		return ""
	}
	rest := prompt[i+len(marker):]
	if j := strings.Index(rest, "\"\n"); j >= 0 {
		return rest[:j]
	}
	return rest
}

// humanIn reads the current utterance out of an extraction prompt.
func humanIn(prompt string) string {
	const marker = "Human: "
	i := strings.LastIndex(prompt, marker)
	if i < 0 {
		return ""
	}
	rest := prompt[i+len(marker):]
	if j := strings.Index(rest, "\n"); j >= 0 {
		return rest[:j]
	}
	return rest
}

// replyModel 对所有请求返回同一段文本
func replyModel(reply string) *fakemodel.Model {
	return fakemodel.Text(func(string) (string, error) {
		return reply, nil
	})
}
