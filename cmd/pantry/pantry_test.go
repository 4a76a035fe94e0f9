package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/mealink-backend/internal/domain"
	"github.com/heartmarshall/mealink-backend/internal/identity"
	"github.com/heartmarshall/mealink-backend/internal/service/intake"
	"github.com/heartmarshall/mealink-backend/internal/service/inventory"
)

func TestParseItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want domain.InventoryLine
	}{
		{
			raw: "milk:1:l:refrigerated:2026-10-20",
			want: domain.InventoryLine{
				NameInput: "milk", QuantityInput: "1", UnitInput: "l",
				Location: domain.LocationRefrigerated, ExpiresAt: "2026-10-20",
			},
		},
		{
			raw:  "peas:500:g:frozen",
			want: domain.InventoryLine{NameInput: "peas", QuantityInput: "500", UnitInput: "g", Location: domain.LocationFrozen},
		},
		{
			raw:  "salt",
			want: domain.InventoryLine{NameInput: "salt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseItem(tt.raw))
		})
	}
}

func TestParseFormCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, formCommand{name: "input", arg: "tom"}, parseFormCommand("tom"))
	assert.Equal(t, formCommand{name: "qty", arg: "2.5"}, parseFormCommand("  :QTY  2.5 "))
	assert.Equal(t, formCommand{name: "next"}, parseFormCommand(":next"))
}

func TestSavedMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Nothing to save.", savedMessage(0))
	assert.Equal(t, "Saved 1 item.", savedMessage(1))
	assert.Equal(t, "Saved 3 items.", savedMessage(3))
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	assert.Contains(t, describe(domain.ErrAuthRequired), "--token")
	assert.Contains(t, describe(domain.ErrBackendUnavailable), "backend")
	assert.Equal(t, "boom", describe(errors.New("boom")))
}

type ingestFunc func(ctx context.Context, requesterID uuid.UUID, lines []domain.InventoryLine) (*inventory.Result, error)

func (f ingestFunc) Ingest(ctx context.Context, requesterID uuid.UUID, lines []domain.InventoryLine) (*inventory.Result, error) {
	return f(ctx, requesterID, lines)
}

func TestRunIntake_EditAndSave(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var got []domain.InventoryLine
	ing := ingestFunc(func(_ context.Context, requesterID uuid.UUID, lines []domain.InventoryLine) (*inventory.Result, error) {
		assert.Equal(t, userID, requesterID)
		got = lines
		return &inventory.Result{Records: make([]domain.InventoryRecord, 2)}, nil
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	form := intake.NewForm(logger, intake.Deps{Identity: identity.Fixed(userID), Inventory: ing})
	defer form.Close()

	in := strings.NewReader(strings.Join([]string{
		"",
		":qty 2",
		":loc frozen",
		":next",
		":loc cellar",
		":unit g",
		":bogus",
		":save",
		":quit",
		"never read",
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, runIntake(context.Background(), form, in, &out))

	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].QuantityInput)
	assert.Equal(t, domain.LocationFrozen, got[0].Location)
	assert.Equal(t, "g", got[1].UnitInput)

	text := out.String()
	assert.Contains(t, text, "unknown location cellar")
	assert.Contains(t, text, "unknown command :bogus")
	assert.Contains(t, text, "Saved 2 items.")

	rows := form.Rows()
	require.Len(t, rows, 1, "form is reset after a successful save")
}

func TestRunIntake_PickWithoutSuggestions(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	form := intake.NewForm(logger, intake.Deps{})
	defer form.Close()

	var out bytes.Buffer
	require.NoError(t, runIntake(context.Background(), form, strings.NewReader(":pick 1\n:pick x\n:drop\n:rows\n"), &out))

	text := out.String()
	assert.Contains(t, text, "no suggestion 1")
	assert.Contains(t, text, "pick needs a suggestion number")
	assert.Len(t, form.Rows(), 1)
}
