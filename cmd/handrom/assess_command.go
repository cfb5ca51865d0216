package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rehabmetrics/handrom/internal/assessment"
	"github.com/rehabmetrics/handrom/internal/config"
	"github.com/rehabmetrics/handrom/internal/landmark"
)

// recordingFile is the JSON layout of an exported repetition.
type recordingFile struct {
	Type   string                 `json:"type"`
	Hand   string                 `json:"hand"`
	Frames []landmark.MotionFrame `json:"frames"`
}

func newAssessCommand(configFlag *string) *cobra.Command {
	var typeFlag string
	var handFlag string

	cmd := &cobra.Command{
		Use:   "assess <recording.json>",
		Short: "Evaluate a recorded repetition and print the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read recording: %w", err)
			}

			var recording recordingFile
			if err := json.Unmarshal(data, &recording); err != nil {
				return fmt.Errorf("parse recording: %w", err)
			}

			if typeFlag != "" {
				recording.Type = typeFlag
			}
			if handFlag != "" {
				recording.Hand = handFlag
			}

			assessmentType, err := assessment.ParseType(recording.Type)
			if err != nil {
				return err
			}
			hand := landmark.Hand(recording.Hand)
			if hand != landmark.HandLeft && hand != landmark.HandRight {
				return fmt.Errorf("hand must be %q or %q", landmark.HandLeft, landmark.HandRight)
			}

			engineCfg, err := cfg.EngineConfig()
			if err != nil {
				return err
			}

			engine := assessment.New(engineCfg)
			results, err := engine.Evaluate(assessmentType, hand, recording.Frames)
			if err != nil {
				return err
			}

			out := json.NewEncoder(cmd.OutOrStdout())
			out.SetIndent("", "  ")
			return out.Encode(results)
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "Assessment type (overrides the recording)")
	cmd.Flags().StringVar(&handFlag, "hand", "", "Recorded hand, Left or Right (overrides the recording)")

	return cmd
}
