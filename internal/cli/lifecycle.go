package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-client/internal/domain"
	"github.com/spec-kit/helpdesk-client/internal/session"
)

var (
	transitionResolution string
	transitionTechnician string
	transitionNote       string

	cancelReason string

	commentBody     string
	commentInternal bool
)

var transitionCmd = &cobra.Command{
	Use:   "transition <ticket-id> <status>",
	Short: "Change a ticket's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			input := session.TransitionInput{
				Resolution: transitionResolution,
				Note:       transitionNote,
			}
			if transitionTechnician != "" {
				input.TechnicianID = &transitionTechnician
			}
			ticket, err := s.Coordinator().ApplyTransition(ctx, args[0], domain.TicketStatus(args[1]), s.Actor(), input)
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", ticket.Protocol, ticket.Status)
			return nil
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <ticket-id>",
	Short: "Cancel a ticket (reason required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			ticket, err := s.Coordinator().Cancel(ctx, args[0], s.Actor(), cancelReason)
			if err != nil {
				return err
			}
			fmt.Printf("%s cancelled\n", ticket.Protocol)
			return nil
		})
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <ticket-id>",
	Short: "Archive a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			ticket, err := s.Coordinator().Archive(ctx, args[0], s.Actor())
			if err != nil {
				return err
			}
			fmt.Printf("%s archived\n", ticket.Protocol)
			return nil
		})
	},
}

var unarchiveCmd = &cobra.Command{
	Use:   "unarchive <ticket-id>",
	Short: "Unarchive a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			ticket, err := s.Coordinator().Unarchive(ctx, args[0], s.Actor())
			if err != nil {
				return err
			}
			fmt.Printf("%s unarchived\n", ticket.Protocol)
			return nil
		})
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <ticket-id>",
	Short: "Add a comment to a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *session.Session) error {
			comment, err := s.Coordinator().AddComment(ctx, args[0], s.Actor(), commentBody, commentInternal)
			if err != nil {
				return err
			}
			fmt.Printf("comment %s added\n", comment.ID)
			return nil
		})
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <ticket-id> <rating>",
	Short: "Rate a resolved ticket from 1 to 5",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be a number: %w", err)
		}
		return withSession(func(ctx context.Context, s *session.Session) error {
			ticket, err := s.Coordinator().Rate(ctx, args[0], s.Actor(), rating)
			if err != nil {
				return err
			}
			fmt.Printf("%s rated %d\n", ticket.Protocol, rating)
			return nil
		})
	},
}

func init() {
	transitionCmd.Flags().StringVar(&transitionResolution, "resolution", "", "resolution text (required for RESOLVED)")
	transitionCmd.Flags().StringVar(&transitionTechnician, "technician", "", "assign technician id")
	transitionCmd.Flags().StringVar(&transitionNote, "note", "", "note for the history entry")

	cancelCmd.Flags().StringVar(&cancelReason, "reason", "", "cancellation reason (required)")

	commentCmd.Flags().StringVar(&commentBody, "body", "", "comment text")
	commentCmd.Flags().BoolVar(&commentInternal, "internal", false, "hide from the requester")
}
