package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/culler/internal/adapter"
	"github.com/mmcdole/culler/internal/domain"
	"github.com/mmcdole/culler/internal/service"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how much of the library is left to review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			svc := service.NewLibraryService(a.media, a.store, a.logger)
			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(stats))
			return nil
		},
	}
}

func renderStatus(stats []service.KindStats) string {
	headers := []string{"Kind", "Total", "Reviewed", "Left", "Left size", "Gone"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []string{
			st.Kind.Plural(),
			strconv.Itoa(st.Total),
			strconv.Itoa(st.Seen),
			strconv.Itoa(st.Unseen),
			domain.FormatSize(st.Bytes),
			strconv.Itoa(st.Stale),
		})
	}
	return renderTable(headers, rows, aligns)
}

func newResetCommand() *cobra.Command {
	var (
		kindFlag string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget reviewed items so they are shown again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds, err := parseKinds(kindFlag)
			if err != nil {
				return err
			}

			if !yes {
				ok, err := confirm(fmt.Sprintf("Forget every reviewed item (%s)?", kindFlag))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			svc := service.NewLibraryService(a.media, a.store, a.logger)
			for _, kind := range kinds {
				if err := svc.Reset(kind); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset reviewed %s.\n", kind.Plural())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "all", "photo, video or all")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func parseKinds(s string) ([]domain.Kind, error) {
	if strings.EqualFold(s, "all") {
		return domain.Kinds(), nil
	}
	kind, err := domain.ParseKind(s)
	if err != nil {
		return nil, err
	}
	return []domain.Kind{kind}, nil
}

// confirm asks a yes/no question on an interactive terminal. Without one it
// refuses rather than guessing.
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("not a terminal: pass --yes to confirm")
	}
	fmt.Printf("%s [y/N]: ", question)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := cfgFile
			if path == "" {
				path = filepath.Join(adapter.DefaultConfigPath(), "config.yaml")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			written, err := adapter.SaveConfig(adapter.DefaultConfig(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", written)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
