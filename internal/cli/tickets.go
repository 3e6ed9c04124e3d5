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

var (
	listStatus    string
	listCancelled bool
	listArchived  bool

	createTitle       string
	createDescription string
	createPriority    string
	createCategory    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets visible to the current actor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			filter := domain.TicketFilter{
				IncludeCancelled: listCancelled,
				IncludeArchived:  listArchived,
			}
			if listStatus != "" {
				filter.Statuses = []domain.TicketStatus{domain.TicketStatus(listStatus)}
			}
			tickets, err := s.Coordinator().List(ctx, s.Actor(), filter)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROTOCOL\tSTATUS\tPRIORITY\tTITLE")
			for _, t := range tickets {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Protocol, displayStatus(&t), t.Priority, t.Title)
			}
			return w.Flush()
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <ticket-id>",
	Short: "Show one ticket with comments and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			coordinator := s.Coordinator()
			ticket, err := coordinator.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if ticket == nil {
				return fmt.Errorf("ticket %s not found", args[0])
			}

			fmt.Printf("%s  %s\n", ticket.Protocol, ticket.Title)
			fmt.Printf("status: %s  priority: %s", displayStatus(ticket), ticket.Priority)
			if ticket.Archived {
				fmt.Print("  [archived]")
			}
			fmt.Println()
			fmt.Println(ticket.Description)
			if ticket.Resolution != nil {
				fmt.Printf("resolution: %s\n", *ticket.Resolution)
			}

			comments, err := coordinator.Comments(ctx, ticket.ID, s.Actor())
			if err != nil {
				return err
			}
			for _, comment := range comments {
				marker := ""
				if comment.Internal {
					marker = " (internal)"
				}
				fmt.Printf("  [%s]%s %s\n", comment.CreatedAt.Format("2006-01-02 15:04"), marker, comment.Body)
			}

			history, err := coordinator.History(ctx, ticket.ID)
			if err != nil {
				return err
			}
			for _, entry := range history {
				line := string(entry.Action)
				if entry.PriorStatus != nil && entry.NewStatus != nil {
					line = fmt.Sprintf("%s: %s -> %s", entry.Action, *entry.PriorStatus, *entry.NewStatus)
				}
				fmt.Printf("  %s %s\n", entry.CreatedAt.Format("2006-01-02 15:04"), line)
			}
			return nil
		})
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a new ticket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			draft := domain.TicketDraft{
				Title:       createTitle,
				Description: createDescription,
				Priority:    domain.TicketPriority(createPriority),
			}
			if createCategory != "" {
				draft.CategoryID = &createCategory
			}
			ticket, err := s.Coordinator().Create(ctx, s.Actor(), draft)
			if err != nil {
				return err
			}
			fmt.Printf("created %s (%s)\n", ticket.Protocol, ticket.ID)
			return nil
		})
	},
}

// displayStatus merges Closed into Resolved for presentation only; the
// underlying states stay distinct.
func displayStatus(t *domain.Ticket) string {
	if t.Cancelled {
		return "CANCELLED"
	}
	if t.Status == domain.TicketStatusClosed {
		return string(domain.TicketStatusResolved)
	}
	return string(t.Status)
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "filter by status")
	listCmd.Flags().BoolVar(&listCancelled, "cancelled", false, "include cancelled tickets")
	listCmd.Flags().BoolVar(&listArchived, "archived", false, "include archived tickets")

	createCmd.Flags().StringVar(&createTitle, "title", "", "ticket title")
	createCmd.Flags().StringVar(&createDescription, "description", "", "ticket description")
	createCmd.Flags().StringVar(&createPriority, "priority", string(domain.TicketPriorityMedium), "ticket priority")
	createCmd.Flags().StringVar(&createCategory, "category", "", "category id")
}
