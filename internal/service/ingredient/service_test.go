package ingredient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/mealink-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type mockCatalog struct {
	SearchFunc    func(ctx context.Context, keyword string, requesterID uuid.UUID, limit int) ([]domain.Ingredient, error)
	FindExactFunc func(ctx context.Context, normalized string, requesterID uuid.UUID) (*domain.Ingredient, error)
	CreateFunc    func(ctx context.Context, name string, requesterID uuid.UUID) (*domain.Ingredient, error)

	mu          sync.Mutex
	searchCalls int
	findCalls   int
	createCalls int
}

func (m *mockCatalog) Search(ctx context.Context, keyword string, requesterID uuid.UUID, limit int) ([]domain.Ingredient, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()
	return m.SearchFunc(ctx, keyword, requesterID, limit)
}

func (m *mockCatalog) FindExact(ctx context.Context, normalized string, requesterID uuid.UUID) (*domain.Ingredient, error) {
	m.mu.Lock()
	m.findCalls++
	m.mu.Unlock()
	return m.FindExactFunc(ctx, normalized, requesterID)
}

func (m *mockCatalog) Create(ctx context.Context, name string, requesterID uuid.UUID) (*domain.Ingredient, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	return m.CreateFunc(ctx, name, requesterID)
}

type countingRecorder struct{ created int }

func (c *countingRecorder) IngredientCreated() { c.created++ }

// memCatalog is a tiny in-memory store keyed by (owner, normalized name).
func memCatalog() *mockCatalog {
	store := map[string]*domain.Ingredient{}
	key := func(owner uuid.UUID, normalized string) string { return owner.String() + "/" + normalized }

	m := &mockCatalog{}
	m.FindExactFunc = func(_ context.Context, normalized string, requesterID uuid.UUID) (*domain.Ingredient, error) {
		if ing, ok := store[key(requesterID, normalized)]; ok {
			return ing, nil
		}
		return nil, fmt.Errorf("ingredient %s: %w", normalized, domain.ErrNotFound)
	}
	m.CreateFunc = func(_ context.Context, name string, requesterID uuid.UUID) (*domain.Ingredient, error) {
		owner := requesterID
		ing := &domain.Ingredient{
			ID:             uuid.New(),
			Name:           name,
			NameNormalized: domain.NormalizeName(name),
			Scope:          domain.IngredientScopeUser,
			Status:         domain.IngredientStatusPending,
			OwnerID:        &owner,
		}
		store[key(requesterID, ing.NameNormalized)] = ing
		return ing, nil
	}
	return m
}

func newTestService(catalog catalogStore) *Service {
	return NewService(slog.Default(), catalog, nil, 0)
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func TestService_Search_EmptyKeyword(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	svc := newTestService(catalog)

	for _, kw := range []string{"", "   ", "\t\n"} {
		got, err := svc.Search(context.Background(), kw, uuid.Nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	}
	assert.Zero(t, catalog.searchCalls)
}

func TestService_Search_PassesTrimmedKeywordAndLimit(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	catalog := &mockCatalog{
		SearchFunc: func(_ context.Context, keyword string, requesterID uuid.UUID, limit int) ([]domain.Ingredient, error) {
			assert.Equal(t, "Tom", keyword)
			assert.Equal(t, user, requesterID)
			assert.Equal(t, 10, limit)
			return []domain.Ingredient{{Name: "Tomato", Scope: domain.IngredientScopeMaster, Status: domain.IngredientStatusActive}}, nil
		},
	}

	got, err := newTestService(catalog).Search(context.Background(), "  Tom ", user)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tomato", got[0].Name)
}

func TestService_Search_DropsEntriesNotVisibleToRequester(t *testing.T) {
	t.Parallel()

	me, someoneElse := uuid.New(), uuid.New()
	catalog := &mockCatalog{
		SearchFunc: func(context.Context, string, uuid.UUID, int) ([]domain.Ingredient, error) {
			return []domain.Ingredient{
				{ID: uuid.New(), Name: "Tomato", Scope: domain.IngredientScopeMaster, Status: domain.IngredientStatusActive},
				{ID: uuid.New(), Name: "Tomato paste", Scope: domain.IngredientScopeUser, Status: domain.IngredientStatusPending, OwnerID: &someoneElse},
				{ID: uuid.New(), Name: "Tomatillo", Scope: domain.IngredientScopeMaster, Status: domain.IngredientStatusPending},
				{ID: uuid.New(), Name: "Tomato jam", Scope: domain.IngredientScopeUser, Status: domain.IngredientStatusPending, OwnerID: &me},
			}, nil
		},
	}

	got, err := newTestService(catalog).Search(context.Background(), "tom", me)
	require.NoError(t, err)

	var names []string
	for _, ing := range got {
		names = append(names, ing.Name)
	}
	assert.Equal(t, []string{"Tomato", "Tomato jam"}, names)
}

func TestService_Search_RequiresIdentity(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	_, err := newTestService(catalog).Search(context.Background(), "tom", uuid.Nil)

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.Zero(t, catalog.searchCalls)
}

func TestService_Search_NoBackend(t *testing.T) {
	t.Parallel()

	_, err := NewService(slog.Default(), nil, nil, 10).Search(context.Background(), "tom", uuid.New())
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestService_Search_StoreError(t *testing.T) {
	t.Parallel()

	cause := domain.NewRemoteReadError("search ingredients", errors.New("timeout"))
	catalog := &mockCatalog{
		SearchFunc: func(context.Context, string, uuid.UUID, int) ([]domain.Ingredient, error) {
			return nil, cause
		},
	}

	_, err := newTestService(catalog).Search(context.Background(), "tom", uuid.New())
	assert.ErrorIs(t, err, domain.ErrRemoteRead)
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10, clampLimit(0))
	assert.Equal(t, 1, clampLimit(-5))
	assert.Equal(t, 50, clampLimit(500))
	assert.Equal(t, 25, clampLimit(25))
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestService_Resolve_SelectedSuggestionBypassesStore(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	picked := &domain.Ingredient{ID: uuid.New(), Name: "Tomato"}

	got, err := newTestService(catalog).Resolve(context.Background(), domain.InventoryLine{
		NameInput: "whatever the user typed",
		Selected:  picked,
	}, uuid.New())

	require.NoError(t, err)
	assert.Same(t, picked, got)
	assert.Zero(t, catalog.searchCalls+catalog.findCalls+catalog.createCalls)
}

func TestService_Resolve_EmptyName(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{}
	_, err := newTestService(catalog).Resolve(context.Background(), domain.InventoryLine{NameInput: "  "}, uuid.New())

	assert.ErrorIs(t, err, domain.ErrEmptyName)
	assert.Zero(t, catalog.findCalls+catalog.createCalls)
}

func TestService_Resolve_ReusesExisting(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	existing := &domain.Ingredient{ID: uuid.New(), Name: "tomato", NameNormalized: "tomato"}
	catalog := &mockCatalog{
		FindExactFunc: func(_ context.Context, normalized string, requesterID uuid.UUID) (*domain.Ingredient, error) {
			assert.Equal(t, "tomato", normalized)
			assert.Equal(t, user, requesterID)
			return existing, nil
		},
	}

	got, err := newTestService(catalog).Resolve(context.Background(), domain.InventoryLine{NameInput: "  ToMaTo "}, user)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	assert.Zero(t, catalog.createCalls)
}

func TestService_Resolve_CreatesWithTrimmedName(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	catalog := memCatalog()
	rec := &countingRecorder{}
	svc := NewService(slog.Default(), catalog, rec, 10)

	got, err := svc.Resolve(context.Background(), domain.InventoryLine{NameInput: "  Heirloom Tomato "}, user)
	require.NoError(t, err)
	assert.Equal(t, "Heirloom Tomato", got.Name)
	assert.Equal(t, domain.IngredientStatusPending, got.Status)
	assert.Equal(t, domain.IngredientScopeUser, got.Scope)
	assert.Equal(t, 1, rec.created)
}

func TestService_Resolve_Idempotent(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	catalog := memCatalog()
	svc := newTestService(catalog)

	first, err := svc.Resolve(context.Background(), domain.InventoryLine{NameInput: "Tomato"}, user)
	require.NoError(t, err)
	second, err := svc.Resolve(context.Background(), domain.InventoryLine{NameInput: "  tomato"}, user)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, catalog.createCalls)
}

func TestService_Resolve_PerUserIsolation(t *testing.T) {
	t.Parallel()

	catalog := memCatalog()
	svc := newTestService(catalog)

	a, err := svc.Resolve(context.Background(), domain.InventoryLine{NameInput: "Tomato"}, uuid.New())
	require.NoError(t, err)
	b, err := svc.Resolve(context.Background(), domain.InventoryLine{NameInput: "Tomato"}, uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, catalog.createCalls)
}

func TestService_Resolve_ConcurrentCreate(t *testing.T) {
	t.Parallel()

	user := uuid.New()
	winner := &domain.Ingredient{ID: uuid.New(), Name: "Tomato", NameNormalized: "tomato"}
	finds := 0
	catalog := &mockCatalog{
		FindExactFunc: func(context.Context, string, uuid.UUID) (*domain.Ingredient, error) {
			finds++
			if finds == 1 {
				return nil, domain.ErrNotFound
			}
			return winner, nil
		},
		CreateFunc: func(context.Context, string, uuid.UUID) (*domain.Ingredient, error) {
			return nil, domain.NewRemoteWriteError("create ingredient", fmt.Errorf("ingredient tomato: %w", domain.ErrAlreadyExists))
		},
	}

	got, err := newTestService(catalog).Resolve(context.Background(), domain.InventoryLine{NameInput: "Tomato"}, user)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, got.ID)
	assert.Equal(t, 2, catalog.findCalls)
}

func TestService_Resolve_FindErrorDoesNotCreate(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		FindExactFunc: func(context.Context, string, uuid.UUID) (*domain.Ingredient, error) {
			return nil, domain.NewRemoteReadError("find ingredient", errors.New("connection refused"))
		},
	}

	_, err := newTestService(catalog).Resolve(context.Background(), domain.InventoryLine{NameInput: "Tomato"}, uuid.New())
	assert.ErrorIs(t, err, domain.ErrRemoteRead)
	assert.Zero(t, catalog.createCalls)
}

func TestService_Resolve_CreateError(t *testing.T) {
	t.Parallel()

	catalog := &mockCatalog{
		FindExactFunc: func(context.Context, string, uuid.UUID) (*domain.Ingredient, error) {
			return nil, domain.ErrNotFound
		},
		CreateFunc: func(context.Context, string, uuid.UUID) (*domain.Ingredient, error) {
			return nil, domain.NewRemoteWriteError("create ingredient", errors.New("503"))
		},
	}

	_, err := newTestService(catalog).Resolve(context.Background(), domain.InventoryLine{NameInput: "Tomato"}, uuid.New())
	assert.ErrorIs(t, err, domain.ErrRemoteWrite)
}
