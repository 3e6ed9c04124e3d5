package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-client/internal/domain"
	"github.com/spec-kit/helpdesk-client/internal/session"
)

var refreshRefData bool

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List ticket categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			var categories []domain.Category
			var err error
			if refreshRefData {
				categories, err = s.Reference().RefreshCategories(ctx)
			} else {
				categories, err = s.Reference().Categories(ctx)
			}
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, category := range categories {
				fmt.Fprintf(w, "%s\t%s\n", category.ID, category.Name)
			}
			return w.Flush()
		})
	},
}

var techniciansCmd = &cobra.Command{
	Use:   "technicians",
	Short: "List technicians available for assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			var technicians []domain.Actor
			var err error
			if refreshRefData {
				technicians, err = s.Reference().RefreshTechnicians(ctx)
			} else {
				technicians, err = s.Reference().Technicians(ctx)
			}
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME")
			for _, technician := range technicians {
				if !technician.Active {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\n", technician.ID, technician.Name)
			}
			return w.Flush()
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{categoriesCmd, techniciansCmd} {
		cmd.Flags().BoolVar(&refreshRefData, "refresh", false, "bypass the session cache")
	}
}
