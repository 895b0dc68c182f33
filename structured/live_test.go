package structured

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderInput struct {
	Message string
}

type orderLine struct {
	Item     string `json:"item" jsonschema:"description=菜品名称,required,minLength=1"`
	Size     string `json:"size" jsonschema:"description=尺寸,enum=S,enum=M,enum=L"`
	Quantity int    `json:"quantity" jsonschema:"description=数量,required,minimum=1,maximum=20"`
}

type orderAnalysis struct {
	Lines        []orderLine `json:"lines" jsonschema:"description=订单明细(至少1个),required,minItems=1"`
	DeliveryDate string      `json:"delivery_date,omitempty" jsonschema:"description=送达日期,format=date"`
	Email        string      `json:"email,omitempty" jsonschema:"description=联系邮箱,format=email"`
	WantsToExit  bool        `json:"wants_to_exit" jsonschema:"description=用户是否想放弃下单,required"`
}

func buildOrderPrompt(ctx context.Context, in orderInput) ([]*schema.Message, error) {
	return []*schema.Message{
		schema.SystemMessage("你是一个点餐助手。从用户的消息中提取订单信息，通过调用 analyze_order 工具返回结果。"),
		schema.UserMessage(fmt.Sprintf("用户消息：\n\n%s", in.Message)),
	}, nil
}

func TestChainInvokeLive(t *testing.T) {
	if os.Getenv("FORMFILLER_RUN_LIVE_TESTS") != "1" {
		t.Skip("set FORMFILLER_RUN_LIVE_TESTS=1 to run live LLM tests")
	}
	apiKey := os.Getenv("FORMFILLER_OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("FORMFILLER_OPENAI_API_KEY is empty")
	}
	modelName := os.Getenv("FORMFILLER_OPENAI_MODEL")
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	ctx := context.Background()
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		Model:   modelName,
		BaseURL: os.Getenv("FORMFILLER_OPENAI_BASE_URL"),
	})
	require.NoError(t, err)

	chain, err := NewChain[orderInput, orderAnalysis](chatModel, buildOrderPrompt, "analyze_order", "提取结构化的订单信息")
	require.NoError(t, err)

	for _, msg := range []string{
		"两个大号的玛格丽特，再来一个中号的夏威夷，明天 2025-06-01 送到，邮箱 li@example.com",
		"One small pepperoni please",
	} {
		result, err := chain.Invoke(ctx, orderInput{Message: msg})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Lines)
		out, _ := sonic.ConfigStd.MarshalIndent(result, "", "  ")
		t.Logf("分析结果:\n%s", out)
	}
}
