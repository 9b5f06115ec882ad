package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GNOME/orca-sub019/internal/bus"
	"github.com/GNOME/orca-sub019/internal/model"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Stream bus events as JSONL",
	Long: `Follow the configured event source and print every speech, braille and
lifecycle event as one JSON object per line on stdout. Useful for writing
the expected lines of a new fixture.

Output is always JSONL regardless of the --format flag.

Use Ctrl+C or --duration to stop observing.`,
	RunE: runObserve,
}

func init() {
	rootCmd.AddCommand(observeCmd)
	observeCmd.Flags().String("channels", "speech,braille,lifecycle", "Comma-separated channels to print")
	observeCmd.Flags().Int("duration", 0, "Max seconds to observe (0 = until Ctrl+C)")
}

func parseChannels(s string) ([]model.Channel, error) {
	var out []model.Channel
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		ch, err := model.ParseChannel(part)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("--channels must name at least one channel")
	}
	return out, nil
}

func runObserve(cmd *cobra.Command, args []string) error {
	channelsStr, _ := cmd.Flags().GetString("channels")
	durationSec, _ := cmd.Flags().GetInt("duration")

	channels, err := parseChannels(channelsStr)
	if err != nil {
		return err
	}

	adapter, err := bus.NewAdapter(appConfig.BusAdapterConfig(), logger)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)

	var mu sync.Mutex
	eventCount := 0
	unsubscribe := adapter.Bus().Subscribe(func(ev model.Event) {
		mu.Lock()
		defer mu.Unlock()
		enc.Encode(ev)
		eventCount++
	}, channels...)
	defer unsubscribe()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if durationSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(durationSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	if err := adapter.Open(ctx); err != nil {
		return err
	}

	var busErr error
	select {
	case <-ctx.Done():
	case <-adapter.Bus().Done():
		busErr = adapter.Bus().Err()
	}
	if err := adapter.Close(); err != nil {
		logger.Warn("close bus", "error", err)
	}

	mu.Lock()
	defer mu.Unlock()
	enc.Encode(map[string]interface{}{
		"type":    "done",
		"ts":      time.Now().Unix(),
		"elapsed": fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
		"events":  eventCount,
	})
	return busErr
}
