package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

func newChatModel(ctx context.Context, conf *Config) (model.ToolCallingChatModel, error) {
	switch conf.Provider {
	case "gemini":
		return newGeminiChatModel(ctx, conf.Gemini)
	default:
		return newOpenAIChatModel(ctx, conf.OpenAI)
	}
}

func newOpenAIChatModel(ctx context.Context, conf ProviderConfig) (model.ToolCallingChatModel, error) {
	if conf.APIKey == "" {
		return nil, errors.New("FORMFILLER_OPENAI_API_KEY is empty")
	}
	modelName := conf.Model
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  conf.APIKey,
		Model:   modelName,
		BaseURL: conf.BaseURL,
	})
}

func newGeminiChatModel(ctx context.Context, conf ProviderConfig) (model.ToolCallingChatModel, error) {
	if conf.APIKey == "" {
		return nil, errors.New("FORMFILLER_GEMINI_API_KEY is empty")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  conf.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if conf.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = conf.BaseURL
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	modelName := conf.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	return gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  modelName,
	})
}
