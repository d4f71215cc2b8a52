package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"resumeBuilder/internal/resume"
	"resumeBuilder/internal/store"
)

var convertTo string

var sectionCmd = &cobra.Command{
	Use:   "section",
	Short: "Edit a single section",
}

var sectionConvertCmd = &cobra.Command{
	Use:   "convert <section-id>",
	Short: "Switch a section's editor type, converting its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to := resume.EditorType(convertTo)
		if !to.Valid() {
			return fmt.Errorf("--to must be one of timeline, list, text")
		}
		return withStore(func(ctx context.Context, s *store.Store) error {
			found, err := s.ChangeEditorType(ctx, args[0], to)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("section %q not found", args[0])
			}
			fmt.Printf("section %s now uses the %s editor\n", args[0], to)
			return nil
		})(cmd, args)
	},
}

var sectionToggleCmd = &cobra.Command{
	Use:   "toggle <section-id>",
	Short: "Show or hide a section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, s *store.Store) error {
			found, err := s.ToggleVisibility(ctx, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("section %q not found", args[0])
			}
			sec, _ := s.Section(args[0])
			fmt.Printf("section %s visible=%t\n", sec.ID, sec.Visible)
			return nil
		})(cmd, args)
	},
}

var sectionAddCmd = &cobra.Command{
	Use:   "add-custom",
	Short: "Append an empty custom section",
	RunE: withStore(func(ctx context.Context, s *store.Store) error {
		sec, err := s.AddCustomSection(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("added section %s (order %d)\n", sec.ID, sec.Order)
		return nil
	}),
}

func init() {
	sectionConvertCmd.Flags().StringVar(&convertTo, "to", "", "Target editor type: timeline, list or text (required)")
	_ = sectionConvertCmd.MarkFlagRequired("to")

	sectionCmd.AddCommand(sectionConvertCmd, sectionToggleCmd, sectionAddCmd)
	rootCmd.AddCommand(sectionCmd)
}
