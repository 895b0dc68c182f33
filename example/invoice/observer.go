package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// newObservers log form turns and model calls.
func newObservers() []callbacks.Handler {
	form := callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			if info.Component == "Form" {
				slog.Debug("Form turn start", "form", info.Type, "input", input)
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			if info.Component == "Form" {
				slog.Debug("Form turn end", "form", info.Type, "output", output)
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			if info.Component == "Form" {
				slog.Error("Form turn failed", "form", info.Type, "err", err)
			}
			return ctx
		}).
		Build()

	chatModel := callbackHelper.NewHandlerHelper().
		ChatModel(&callbackHelper.ModelCallbackHandler{
			OnStart: func(ctx context.Context, info *callbacks.RunInfo, input *model.CallbackInput) context.Context {
				if input != nil && len(input.Messages) > 0 {
					last := input.Messages[len(input.Messages)-1]
					slog.Debug("Model call", "name", info.Name, "messages", len(input.Messages), "last", strings.TrimSpace(last.Content))
				}
				return ctx
			},
			OnEnd: func(ctx context.Context, info *callbacks.RunInfo, output *model.CallbackOutput) context.Context {
				if output != nil && output.Message != nil {
					slog.Debug("Model reply", "name", info.Name, "content", strings.TrimSpace(output.Message.Content), "tool_calls", len(output.Message.ToolCalls))
				}
				return ctx
			},
			OnError: func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
				slog.Error("Model call failed", "name", info.Name, "err", err)
				return ctx
			},
		}).
		Handler()

	return []callbacks.Handler{form, chatModel}
}
