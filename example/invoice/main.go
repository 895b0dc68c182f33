package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/tbxark/formfiller/agent"
	"github.com/tbxark/formfiller/dialogue"
	"github.com/tbxark/formfiller/extract"
	"github.com/tbxark/formfiller/intent"
	"github.com/tbxark/formfiller/types"
)

func main() {
	envFile := flag.String("env", ".env", "path to env file")
	session := flag.String("session", "invoice", "session key")
	flag.Parse()
	config, err := loadConfig(*envFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	err = startApp(context.Background(), config, *session)
	if err != nil {
		log.Fatalf("start app: %v", err)
	}
}

func formOptions(cm model.ToolCallingChatModel, conf *Config) ([]agent.Option, error) {
	composer := dialogue.NewFailbackComposer(
		dialogue.NewModelComposer(cm, dialogue.WithLang(conf.Lang)),
		dialogue.RecapComposer{},
	)
	if !conf.UseTools {
		return []agent.Option{
			agent.WithExtractor(extract.NewModelExtractor(cm)),
			agent.WithClassifier(intent.NewFailbackClassifier(intent.NewModelClassifier(cm), intent.NewKeywordClassifier())),
			agent.WithComposer(composer),
		}, nil
	}
	classifier, err := intent.NewToolClassifier(cm)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool-based classifier: %w", err)
	}
	return []agent.Option{
		agent.WithExtractor(extract.NewFailbackExtractor(extract.NewToolExtractor(cm), extract.NewModelExtractor(cm))),
		agent.WithClassifier(intent.NewFailbackClassifier(classifier, intent.NewKeywordClassifier())),
		agent.WithComposer(composer),
	}, nil
}

func newCaches(ctx context.Context, conf *Config) (agent.Cache[types.Snapshot], agent.Cache[[]*schema.Message], func(), error) {
	if conf.RedisURL == "" {
		return agent.NewMemoryCache[types.Snapshot](conf.SessionTTL), agent.NewMemoryCache[[]*schema.Message](conf.SessionTTL), func() {}, nil
	}
	opts, err := redis.ParseURL(conf.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	closeFn := func() {
		_ = rdb.Close()
	}
	return agent.NewRedisCache[types.Snapshot](rdb, conf.SessionTTL),
		agent.NewRedisCache[[]*schema.Message](rdb, conf.SessionTTL),
		closeFn, nil
}

func startApp(ctx context.Context, config *Config, session string) error {
	if config.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
	callbacks.AppendGlobalHandlers(newObservers()...)

	cm, err := newChatModel(ctx, config)
	if err != nil {
		return err
	}
	opts, err := formOptions(cm, config)
	if err != nil {
		return err
	}
	formCache, historyCache, closeCaches, err := newCaches(ctx, config)
	if err != nil {
		return err
	}
	defer closeCaches()

	sessions, err := agent.NewSessions(invoiceDefinition(&InvoiceManager{}), formCache, opts...)
	if err != nil {
		return err
	}
	historyStore := agent.NewHistoryStore(historyCache, agent.KeepSystemLastNTrimmer{N: config.HistoryTurns})
	formAgent := agent.NewAgent(sessions, agent.WithResultFormatter(formatSubmission))
	runner := adk.NewRunner(ctx, adk.RunnerConfig{
		Agent: formAgent,
	})

	chatCtx := agent.WithSessionKey(ctx, session)
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("欢迎使用报销助手，请输入您的需求（如：我要报销差旅费）：")
	for {
		fmt.Print("用户: ")
		input, rErr := reader.ReadString('\n')
		if rErr != nil {
			fmt.Println("输入错误或已结束。退出。")
			break
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		history, rErr := historyStore.Append(chatCtx, schema.UserMessage(input))
		if rErr != nil {
			return rErr
		}
		iter := runner.Run(chatCtx, history)
		for {
			event, ok := iter.Next()
			if !ok {
				break
			}
			if event.Err != nil {
				// the form is unchanged, the user can simply retry
				fmt.Printf("\n助手: 抱歉，处理您的输入时遇到了问题：%v\n======\n", event.Err)
				continue
			}
			msg, mErr := event.Output.MessageOutput.GetMessage()
			if mErr != nil {
				return mErr
			}
			if _, apErr := historyStore.Append(chatCtx, msg); apErr != nil {
				return apErr
			}
			fmt.Printf("\n助手: %v\n======\n", msg.Content)
		}
		closed, cErr := formAgent.IsClosed(chatCtx)
		if cErr != nil {
			return cErr
		}
		if closed {
			_ = historyStore.Clear(chatCtx)
			_ = sessions.Reset(chatCtx)
			fmt.Println("表单已结束，可以开始新的报销。")
		}
	}
	return nil
}
