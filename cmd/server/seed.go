package main

import (
	"errors"
	"fmt"

	"github.com/mindwell/internal/service"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import routine tasks from a YAML template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}

			tpl, err := service.LoadRoutineTemplate(file)
			if err != nil {
				return err
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			added, err := a.routines().ApplyTemplate(tpl)
			if err != nil {
				return fmt.Errorf("apply template: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d tasks from %s\n", added, len(tpl.Tasks), file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Routine template (YAML)")
	return cmd
}
