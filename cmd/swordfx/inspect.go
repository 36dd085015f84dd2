package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/recording"
)

var inspectJSON bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <recording.jsonl>",
	Short: "Summarise a landmark recording",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Print JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	samples, err := readRecording(args[0])
	if err != nil {
		return err
	}
	sum := recording.Summarize(samples)

	if inspectJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	fmt.Printf("Recording: %s\n", args[0])
	fmt.Printf("Samples: %d over %.2fs, hands in %d (%d malformed)\n", sum.Samples, sum.Duration, sum.Hands, sum.Malformed)
	fmt.Printf("Transitions: %d, cues: %d\n", sum.Transitions, sum.Cues)
	fmt.Println("------------------------------------------------------------")
	for _, m := range gesture.Modes() {
		n := sum.Frames[m]
		if n == 0 {
			continue
		}
		fmt.Printf("  %-8s %6d  %5.1f%%\n", m, n, 100*float64(n)/float64(sum.Samples))
	}
	return nil
}
