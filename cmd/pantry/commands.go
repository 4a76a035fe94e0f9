package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/mealink-backend/internal/domain"
	"github.com/heartmarshall/mealink-backend/internal/service/intake"
)

func searchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search the ingredient catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, g)
			if err != nil {
				return err
			}
			defer s.Close()

			userID, _ := s.identity.CurrentUserID(ctx)
			found, err := s.core.Catalog.Search(ctx, strings.Join(args, " "), userID)
			if err != nil {
				return errors.New(describe(err))
			}
			printIngredients(cmd.OutOrStdout(), found)
			return nil
		},
	}
}

func addCmd(g *globalFlags) *cobra.Command {
	var items []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record inventory items",
		Long: `Record one or more inventory items in a single batch.

Each --item is name:quantity:unit:location:expiry; trailing parts may be
omitted. Location is refrigerated, frozen or ambient.`,
		Example: `  pantry add --item "milk:1:l:refrigerated:2026-10-20" --item "peas:500:g:frozen"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}
			lines := make([]domain.InventoryLine, 0, len(items))
			for _, raw := range items {
				lines = append(lines, parseItem(raw))
			}

			ctx := cmd.Context()
			s, err := openSession(ctx, g)
			if err != nil {
				return err
			}
			defer s.Close()

			userID, _ := s.identity.CurrentUserID(ctx)
			res, err := s.core.Inventory.Ingest(ctx, userID, lines)
			if err != nil {
				return errors.New(intake.Describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", savedMessage(res.Written()))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&items, "item", "i", nil, "Item as name:quantity:unit:location:expiry")

	return cmd
}

func listCmd(g *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, g)
			if err != nil {
				return err
			}
			defer s.Close()

			userID, _ := s.identity.CurrentUserID(ctx)
			items, err := s.core.Inventory.List(ctx, userID, limit)
			if err != nil {
				return errors.New(describe(err))
			}
			printItems(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of items")

	return cmd
}

// parseItem splits name:quantity:unit:location:expiry. Missing parts stay
// empty; the location is validated later by the ingestion.
func parseItem(raw string) domain.InventoryLine {
	parts := strings.SplitN(raw, ":", 5)
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	return domain.InventoryLine{
		NameInput:     parts[0],
		QuantityInput: parts[1],
		UnitInput:     strings.TrimSpace(parts[2]),
		Location:      domain.StorageLocation(strings.TrimSpace(parts[3])),
		ExpiresAt:     strings.TrimSpace(parts[4]),
	}
}

// describe is the message for errors outside a submission.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		return "not signed in: pass --token or use device identity"
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "no store backend is configured"
	}
	return err.Error()
}

func savedMessage(n int) string {
	switch n {
	case 0:
		return "Nothing to save."
	case 1:
		return "Saved 1 item."
	}
	return fmt.Sprintf("Saved %d items.", n)
}

func printIngredients(w io.Writer, items []domain.Ingredient) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No matching ingredients.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, it.Name, it.DefaultUnit(), it.Status)
	}
	_ = tw.Flush()
}

func printItems(w io.Writer, items []domain.InventoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Inventory is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tQUANTITY\tUNIT\tLOCATION\tEXPIRES")
	for _, it := range items {
		expires := "-"
		if it.ExpiresAt != nil {
			expires = *it.ExpiresAt
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.IngredientName, it.Quantity.String(), it.Unit, it.Location, expires)
	}
	_ = tw.Flush()
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
