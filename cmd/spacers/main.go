package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/width"

	"github.com/spacers/spacers/internal/config"
)

const defaultConfigPath = "config/spacers.toml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spacers",
		Short:         "Interactive space sandbox",
		Long:          "spacers loads a universe of stars, planets and ships and lets you navigate it from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "config file (default $SPACERS_CONFIG or "+defaultConfigPath+")")

	play := newPlayCmd()
	root.AddCommand(play, newInspectCmd(), newNearCmd())
	root.RunE = play.RunE
	return root
}

// loadConfig resolves the config path from the flag, then the environment
// (a .env file in the working directory is honoured), then the default.
// Only the default path may be missing.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("SPACERS_CONFIG")
	}
	if path == "" {
		return config.LoadOrDefault(defaultConfigPath)
	}
	return config.Load(path)
}

// newLogger builds the process logger. toFile sends output to
// cfg.File instead of stderr, for when the terminal belongs to the TUI.
func newLogger(cfg config.LoggingConfig, toFile bool) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if toFile && cfg.File != "" {
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
	}

	return zapCfg.Build()
}

// ── Console display helpers ────────────────────────────────────────

func printBanner(title string) {
	fmt.Println()
	fmt.Printf("\033[36;1m  ┌%s┐\033[0m\n", strings.Repeat("─", 43))
	fmt.Printf("\033[36;1m  │\033[0m%s\033[36;1m│\033[0m\n", center(title, 43))
	fmt.Printf("\033[36;1m  └%s┘\033[0m\n", strings.Repeat("─", 43))
	fmt.Println()
}

func printSection(title string) {
	lineLen := max(46-displayWidth(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-displayWidth(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func center(s string, cols int) string {
	pad := cols - displayWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}

// displayWidth counts terminal columns, wide and fullwidth runes as two.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
