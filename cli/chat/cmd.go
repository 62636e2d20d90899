// Package chat wires the interactive chat view and its line-mode fallback
// into the command tree.
package chat

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"gemchat/cli/chat/session"
	"gemchat/internal/chat"
	"gemchat/internal/configuration"
	"gemchat/internal/debug"
	"gemchat/internal/delivery"
	"gemchat/internal/gemini"
	"gemchat/internal/network"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config, store *chat.Store) *cobra.Command {
	var opts struct {
		Plain bool
	}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chat view",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			pipeline, monitor := buildPipeline(ctx, config, store)

			if opts.Plain {
				return runPlain(ctx, config, store, pipeline, monitor)
			}

			clipboardOK := clipboard.Init() == nil

			m, err := session.New(ctx, config, store, pipeline, monitor, clipboardOK)
			if err != nil {
				return err
			}

			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithMouseCellMotion(),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running chat: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "Run the line-mode chat loop instead of the full view")
	return cmd
}

// buildPipeline assembles the message pipeline and connectivity monitor from
// configuration.
func buildPipeline(ctx context.Context, config *configuration.Config, store *chat.Store) (*chat.Pipeline, *network.Monitor) {
	// The bootstrap placeholder key does not count as configured; an empty
	// key makes the client surface its typed configuration error.
	apiKey := config.GeminiAPIKey
	if !config.APIKeyConfigured() {
		debug.GetLogger().Warn("gemini api key not configured; replies will degrade to the fallback text")
		apiKey = ""
	}
	completer := gemini.NewClient(
		apiKey,
		config.GeminiAPIHost,
		config.Chat.Model,
		time.Duration(config.RequestTimeout)*time.Second,
	)

	transport := delivery.NewSimulator(
		time.Duration(config.Chat.DeliveryDelayMs)*time.Millisecond,
		config.Chat.DeliveryFailureRate,
	)

	monitor := network.NewMonitor(
		network.DialProbe(config.GeminiAPIHost),
		time.Duration(config.Network.ProbeIntervalSeconds)*time.Second,
	)
	go monitor.Start(ctx)

	minDelay := time.Duration(config.Chat.TypingDelayMinMs) * time.Millisecond
	maxDelay := time.Duration(config.Chat.TypingDelayMaxMs) * time.Millisecond
	pipeline := chat.NewPipeline(store, transport, completer, monitor.Online).
		WithTypingDelay(func() time.Duration {
			if maxDelay <= minDelay {
				return minDelay
			}
			return minDelay + time.Duration(rand.Int63n(int64(maxDelay-minDelay)))
		})
	return pipeline, monitor
}
