package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"repsafe/pkg/agents"
	"repsafe/pkg/auditor"
	"repsafe/pkg/config"
	"repsafe/pkg/guardrails"
	"repsafe/pkg/llm"
	"repsafe/pkg/pipeline"
	"repsafe/pkg/rag"
	"repsafe/pkg/store"
	"repsafe/pkg/websearch"
)

func main() {
	// Settings may live in a .env file; a missing file is fine.
	_ = godotenv.Load()

	logger := zap.Must(zap.NewProduction())
	defer logger.Sync()

	cfg := config.FromEnv()
	p := buildPipeline(cfg, logger)

	fmt.Println("TechStore customer service agent")
	fmt.Println("Commands: 'reset' clears the conversation, 'history' prints it, 'quit' exits.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit":
			return
		case "reset":
			p.ResetConversation()
			fmt.Println("Conversation reset.")
			continue
		case "history":
			for _, msg := range p.ConversationHistory() {
				fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
			}
			continue
		}

		result := p.Process(ctx, line)
		fmt.Println()
		fmt.Println("agent>", result.Response)
		if result.WasBlocked {
			fmt.Println("(blocked:", result.BlockReason+")")
		}
		if len(result.AgentsUsed) > 0 {
			fmt.Println("(specialists:", strings.Join(result.AgentsUsed, ", ")+")")
		}
		fmt.Println()
	}
}

func buildPipeline(cfg *config.Config, logger *zap.Logger) *pipeline.Pipeline {
	generator := llm.NewGatewayClient(&llm.GatewayConfig{
		ApiUrl:  cfg.GatewayURL,
		ApiKey:  cfg.GatewayToken,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}, logger)

	var semantic rag.Searcher
	if cfg.QdrantURL != "" {
		semantic = rag.NewClient(&rag.ClientConfig{
			ApiUrl:     cfg.QdrantURL,
			ApiKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
		}, logger)
	}

	var web websearch.Searcher
	if cfg.TavilyAPIKey != "" {
		web = websearch.NewClient(&websearch.ClientConfig{
			ApiKey: cfg.TavilyAPIKey,
		}, logger)
	}

	orders := store.NewMemoryOrderStore()
	products := store.NewMemoryProductStore()
	support := store.NewMemorySupportStore()

	registry := agents.NewRegistry()
	registry.Register(agents.RouteOrder, agents.NewOrderAgent(generator, orders, logger))
	registry.Register(agents.RouteProduct, agents.NewProductAgent(generator, products, semantic, web, logger))
	registry.Register(agents.RouteSupport, agents.NewSupportAgent(generator, support, web, logger))

	supervisor := agents.NewSupervisor(generator, registry, logger)
	aud := auditor.New(generator, auditor.DefaultRubric(), auditor.Config{
		LightweightBelow: cfg.AuditLightweightBelow,
		FailOpen:         true,
	}, logger)

	return pipeline.New(
		guardrails.NewInputGuardrail(),
		guardrails.NewOutputGuardrail(cfg.MaxResponseLength),
		supervisor,
		aud,
		pipeline.Config{
			MaxRetries: cfg.MaxRetries,
			OnFlag: func(text string, flags []string) {
				logger.Warn("flagged input",
					zap.Strings("flags", flags),
					zap.String("input", guardrails.SanitizeForLogging(text)))
			},
		},
		logger,
	)
}
