package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resumeBuilder/internal/store"
)

var enableTotal int

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Multi-page layout maintenance",
}

var pagesAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Distribute sections over the pages round-robin",
	RunE: withStore(func(ctx context.Context, s *store.Store) error {
		if err := s.AutoAssignPages(ctx); err != nil {
			return err
		}
		return writeOutline(os.Stdout, s.Snapshot())
	}),
}

var pagesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear every page assignment",
	RunE: withStore(func(ctx context.Context, s *store.Store) error {
		return s.ResetPageAssignments(ctx)
	}),
}

var pagesEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Turn multi-page mode on",
	RunE: withStore(func(ctx context.Context, s *store.Store) error {
		if err := s.EnableMultiPage(ctx, enableTotal); err != nil {
			return err
		}
		fmt.Printf("multi-page enabled with %d pages\n", s.Snapshot().PageSettings.TotalPages)
		return nil
	}),
}

var pagesDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Turn multi-page mode off and move everything to page 1",
	RunE: withStore(func(ctx context.Context, s *store.Store) error {
		return s.DisableMultiPage(ctx)
	}),
}

func init() {
	pagesEnableCmd.Flags().IntVar(&enableTotal, "total", 2, "Number of pages")

	pagesCmd.AddCommand(pagesAutoCmd, pagesResetCmd, pagesEnableCmd, pagesDisableCmd)
	rootCmd.AddCommand(pagesCmd)
}
