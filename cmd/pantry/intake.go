package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/heartmarshall/mealink-backend/internal/domain"
	"github.com/heartmarshall/mealink-backend/internal/service/intake"
	"github.com/heartmarshall/mealink-backend/internal/service/suggest"
)

const intakeHelp = `Type an ingredient name to see suggestions. Commands:
  :pick N        use suggestion N for the current row
  :qty X         set quantity        :unit X      set unit
  :loc X         set location        :exp DATE    set expiry
  :next          start a new row     :rows        show all rows
  :drop          remove current row  :save        save all rows
  :help          show this help      :quit        leave`

func intakeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "intake",
		Short: "Enter inventory interactively with live suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, g)
			if err != nil {
				return err
			}
			defer s.Close()

			out := &syncWriter{w: cmd.OutOrStdout()}
			deps := intake.Deps{
				Identity:      s.identity,
				Catalog:       s.core.Catalog,
				Inventory:     s.core.Inventory,
				OnSuggestions: func(_ uuid.UUID, ev suggest.Event) { printEvent(out, ev) },
			}
			form := intake.NewForm(s.logger, deps,
				suggest.WithQuietPeriod(s.core.Config.Catalog.Debounce),
				suggest.WithMetrics(s.core.Metrics),
			)
			defer form.Close()

			return runIntake(ctx, form, cmd.InOrStdin(), out)
		},
	}
}

// syncWriter serializes writes from the prompt loop and the debouncer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func printEvent(w io.Writer, ev suggest.Event) {
	if ev.Err != nil {
		fmt.Fprintf(w, "search %q failed: %s\n", ev.Query, describe(ev.Err))
		return
	}
	if ev.Query == "" {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "suggestions for %q:\n", ev.Query)
	printIngredients(&b, ev.Suggestions)
	_, _ = io.WriteString(w, b.String())
}

type formCommand struct {
	name string
	arg  string
}

// parseFormCommand treats lines starting with ':' as commands and anything
// else as name input.
func parseFormCommand(line string) formCommand {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return formCommand{name: "input", arg: line}
	}
	name, arg, _ := strings.Cut(trimmed[1:], " ")
	return formCommand{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}
}

func runIntake(ctx context.Context, form *intake.Form, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, intakeHelp)

	current := form.Rows()[0].ID
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd := parseFormCommand(scanner.Text())
		var err error
		switch cmd.name {
		case "input":
			err = form.InputChanged(current, cmd.arg)
		case "pick":
			err = pick(form, current, cmd.arg)
		case "qty":
			err = form.EditRow(current, intake.RowEdit{Quantity: &cmd.arg})
		case "unit":
			err = form.EditRow(current, intake.RowEdit{Unit: &cmd.arg})
		case "loc":
			loc := domain.StorageLocation(cmd.arg)
			err = form.EditRow(current, intake.RowEdit{Location: &loc})
		case "exp":
			err = form.EditRow(current, intake.RowEdit{ExpiresAt: &cmd.arg})
		case "next":
			current = form.AddRow()
			fmt.Fprintf(out, "row %s\n", shortID(current))
		case "drop":
			current, err = drop(form, current)
		case "rows":
			printRows(out, form.Rows(), current)
		case "save":
			outcome := form.Submit(ctx)
			fmt.Fprintln(out, outcome.Message)
			if outcome.OK() {
				form.Reset()
				current = form.Rows()[0].ID
			}
		case "help":
			fmt.Fprintln(out, intakeHelp)
		case "quit", "q":
			return nil
		default:
			fmt.Fprintf(out, "unknown command :%s\n", cmd.name)
		}
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", describe(err))
		}
	}
	return scanner.Err()
}

func pick(form *intake.Form, rowID uuid.UUID, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return errors.New("pick needs a suggestion number")
	}
	suggestions, err := form.Suggestions(rowID)
	if err != nil {
		return err
	}
	if n < 1 || n > len(suggestions) {
		return fmt.Errorf("no suggestion %d", n)
	}
	return form.SuggestionPicked(rowID, suggestions[n-1])
}

// drop removes the current row and returns the row to continue on. The form
// always keeps at least one row.
func drop(form *intake.Form, rowID uuid.UUID) (uuid.UUID, error) {
	rows := form.Rows()
	if len(rows) == 1 {
		form.Reset()
		return form.Rows()[0].ID, nil
	}
	if err := form.RemoveRow(rowID); err != nil {
		return rowID, err
	}
	rows = form.Rows()
	return rows[len(rows)-1].ID, nil
}

func printRows(w io.Writer, rows []intake.Row, current uuid.UUID) {
	for _, r := range rows {
		marker := " "
		if r.ID == current {
			marker = ">"
		}
		picked := ""
		if r.Line.Selected != nil {
			picked = " (picked)"
		}
		fmt.Fprintf(w, "%s %s %q qty=%q unit=%q loc=%s exp=%q%s\n",
			marker, shortID(r.ID), r.Line.NameInput, r.Line.QuantityInput,
			r.Line.UnitInput, r.Line.Location, r.Line.ExpiresAt, picked)
	}
}
