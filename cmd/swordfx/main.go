package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hand-sword-fx/internal/config"
)

var (
	// Global flags
	verbose    bool
	configFile string
	flags      config.Flags

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "swordfx",
	Short: "Hand-gesture driven sword swarm",
	Long: `swordfx turns hand landmarks from a detector into a swarm of flying swords.

Each frame the latest hand pose is classified into a gesture mode, the swarm
eases toward that mode's formation around the wrist, and entering a mode
plays a short sound cue.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc = zap.NewDevelopmentConfig()
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	pf.StringVarP(&configFile, "config", "c", "", "Config file (.yaml, .json or .hujson)")
	pf.IntVar(&flags.Count, "count", 0, "Number of swords (default 10)")
	pf.Float64Var(&flags.MoveSpeed, "move-speed", 0, "Position smoothing rate (default 0.04)")
	pf.Float64Var(&flags.RotSpeed, "rot-speed", 0, "Rotation smoothing rate (default 0.1)")
	pf.IntVar(&flags.FPS, "fps", 0, "Frame rate (default 60)")
	pf.Uint64Var(&flags.Seed, "seed", 0, "Random seed (0: time seeded; render uses 1)")
	pf.StringVar(&flags.PreviewDir, "preview-dir", "", "Preview output directory")
	pf.IntVar(&flags.Workers, "workers", 0, "Preview workers (default NumCPU)")

	rootCmd.AddCommand(serveCmd, renderCmd, classifyCmd, inspectCmd)
}

// loadConfig builds the effective configuration from file, environment and flags.
func loadConfig() (config.Config, error) {
	return config.Build(configFile, flags)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
