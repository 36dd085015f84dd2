package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hand-sword-fx/internal/gesture"
	"hand-sword-fx/internal/recording"
)

var classifyJSON bool

var classifyCmd = &cobra.Command{
	Use:   "classify <pose.json>",
	Short: "Classify one hand pose",
	Long: `Reads a pose as either a bare array of 21 {x,y,z} landmarks or a
recording sample {"t":..,"hand":[..]} and prints its gesture mode and the
anchor point the swarm would gather around.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Print JSON")
}

// ClassifyResult is the output of the classify command.
type ClassifyResult struct {
	Mode     gesture.Mode     `json:"mode"`
	Anchor   [3]float64       `json:"anchor"`
	Fingers  gesture.Fingers  `json:"fingers"`
	Features gesture.Features `json:"features"`
	Error    string           `json:"error,omitempty"`
}

func readPose(path string) (*gesture.HandPose, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var lms []gesture.Landmark
		if err := json.Unmarshal(data, &lms); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &gesture.HandPose{Landmarks: lms}, nil
	}
	var s recording.Sample
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s.Pose(), nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	pose, err := readPose(args[0])
	if err != nil {
		return err
	}

	res := ClassifyResult{
		Mode:   gesture.Classify(pose),
		Anchor: gesture.MapAnchor(pose),
	}
	if err := pose.Validate(); err != nil {
		res.Error = err.Error()
	} else if pose != nil {
		res.Features = gesture.Measure(pose)
		res.Fingers = res.Features.Fingers
	}

	if classifyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Printf("Mode:    %s\n", res.Mode)
	fmt.Printf("Anchor:  (%.3f, %.3f, %.3f)\n", res.Anchor[0], res.Anchor[1], res.Anchor[2])
	if res.Error != "" {
		fmt.Printf("Invalid: %s\n", res.Error)
		return nil
	}
	f := res.Fingers
	fmt.Printf("Open:    index=%t middle=%t ring=%t pinky=%t (%d)\n", f.Index, f.Middle, f.Ring, f.Pinky, f.OpenCount())
	fmt.Printf("Thumb:   index dist %.3f, above wrist %.3f\n", res.Features.ThumbIndexDist, res.Features.ThumbVerticalOffset)
	return nil
}
