package knowledge_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/plexybot/internal/knowledge"
)

var fixedNow = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *knowledge.Store {
	t.Helper()
	return knowledge.NewStore(knowledge.NewMemoryBackend(), nil, knowledge.WithClock(func() time.Time { return fixedNow }))
}

func TestCatalog_GetByName(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	for _, name := range []string{"Монстера", "Монстера пестрая", "Фикус Бенджамина", "Фикус каучуконосный"} {
		_, err := store.Plants.Upsert(ctx, &knowledge.Plant{Name: name})
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		query string
		want  string
		err   error
	}{
		{name: "exact", query: "Монстера", want: "Монстера"},
		{name: "lower case", query: "монстера", want: "Монстера"},
		{name: "upper case with spaces", query: "  МОНСТЕРА  ", want: "Монстера"},
		{name: "exact beats substring", query: "монстера пестрая", want: "Монстера пестрая"},
		{name: "substring picks first inserted", query: "фикус", want: "Фикус Бенджамина"},
		{name: "substring", query: "каучук", want: "Фикус каучуконосный"},
		{name: "missing", query: "Кактус", err: knowledge.ErrNotFound},
		{name: "empty", query: " ", err: knowledge.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := store.Plants.GetByName(ctx, tt.query)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestCatalog_SearchMatchesAliasesAndDescription(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	records := []*knowledge.Vitamin{
		{Name: "Витамин C", Aliases: []string{"Аскорбиновая кислота"}, Description: "Антиоксидант"},
		{Name: "Витамин D", Description: "Нужен для усвоения кальция"},
		{Name: "Кальций", Description: "Минерал для костей"},
	}
	for _, r := range records {
		_, err := store.Vitamins.Upsert(ctx, r)
		require.NoError(t, err)
	}

	names := func(vs []*knowledge.Vitamin) []string {
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			out = append(out, v.Name)
		}
		return out
	}

	got, err := store.Vitamins.Search(ctx, "аскорбиновая", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Витамин C"}, names(got))

	got, err = store.Vitamins.Search(ctx, "КАЛЬЦИ", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Витамин D", "Кальций"}, names(got), "insertion order is kept")

	got, err = store.Vitamins.Search(ctx, "витамин", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Витамин C"}, names(got))

	got, err = store.Vitamins.Search(ctx, "", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalog_SearchLimitIsCapped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)
	for i := range 20 {
		_, err := store.Plants.Upsert(ctx, &knowledge.Plant{Name: fmt.Sprintf("Растение %02d", i)})
		require.NoError(t, err)
	}

	got, err := store.Plants.Search(ctx, "растение", 100)
	require.NoError(t, err)
	assert.Len(t, got, knowledge.MaxSearchLimit)

	got, err = store.Plants.Search(ctx, "растение", 0)
	require.NoError(t, err)
	assert.Len(t, got, knowledge.DefaultSearchLimit)
}

func TestCatalog_UpsertMergesOnlyEmptyOrPlaceholderFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	res, err := store.Plants.Upsert(ctx, &knowledge.Plant{
		Name:        "Монстера",
		Description: "Тропическая лиана",
		Care:        knowledge.Care{Watering: "Нет информации"},
		Problems:    []knowledge.Problem{{Label: "Желтые листья"}},
		Confidence:  knowledge.ConfidenceMedium,
		Source:      knowledge.SourceGenerated,
	})
	require.NoError(t, err)
	assert.Equal(t, knowledge.Inserted, res)

	res, err = store.Plants.Upsert(ctx, &knowledge.Plant{
		Name:           "монстера",
		ScientificName: "Monstera deliciosa",
		Description:    "Другое описание",
		Care:           knowledge.Care{Watering: "Раз в неделю", Light: "Яркий рассеянный"},
		Problems:       []knowledge.Problem{{Label: "желтые листья", Resolution: "Сократить полив"}},
		Tips:           []string{"Поставьте опору"},
		Confidence:     knowledge.ConfidenceLow,
	})
	require.NoError(t, err)
	assert.Equal(t, knowledge.Updated, res)

	got, err := store.Plants.GetByName(ctx, "Монстера")
	require.NoError(t, err)

	want := &knowledge.Plant{
		Name:           "Монстера",
		ScientificName: "Monstera deliciosa",
		Description:    "Тропическая лиана",
		Care:           knowledge.Care{Watering: "Раз в неделю", Light: "Яркий рассеянный"},
		Problems:       []knowledge.Problem{{Label: "Желтые листья", Resolution: "Сократить полив"}},
		Tips:           []string{"Поставьте опору"},
		Confidence:     knowledge.ConfidenceMedium,
		Source:         knowledge.SourceGenerated,
		LastUpdated:    fixedNow,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged plant mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Vitamins.Upsert(ctx, &knowledge.Vitamin{Name: "Витамин C"})
	require.NoError(t, err)

	delta := &knowledge.Vitamin{Name: "Витамин C", Benefits: "Иммунитет", DailyIntake: "90 мг"}
	first, err := store.Vitamins.Upsert(ctx, delta)
	require.NoError(t, err)
	afterFirst, err := store.Vitamins.GetByName(ctx, "Витамин C")
	require.NoError(t, err)

	second, err := store.Vitamins.Upsert(ctx, delta)
	require.NoError(t, err)
	afterSecond, err := store.Vitamins.GetByName(ctx, "Витамин C")
	require.NoError(t, err)

	assert.Equal(t, knowledge.Updated, first)
	assert.Equal(t, knowledge.Unchanged, second)
	assert.Empty(t, cmp.Diff(afterFirst, afterSecond))
}

func TestCatalog_ConcurrentUpsertsOfSameNameKeepEveryField(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	deltas := []*knowledge.Plant{
		{Name: "Фикус", Care: knowledge.Care{Watering: "Умеренно"}},
		{Name: "Фикус", Care: knowledge.Care{Light: "Рассеянный"}},
		{Name: "ФИКУС", Care: knowledge.Care{Soil: "Рыхлая"}},
		{Name: "фикус", Care: knowledge.Care{Humidity: "Средняя"}},
		{Name: "Фикус", Description: "Комнатное дерево"},
	}

	var wg sync.WaitGroup
	for _, d := range deltas {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Plants.Upsert(ctx, d)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Plants.GetByName(ctx, "фикус")
	require.NoError(t, err)
	assert.Equal(t, "Умеренно", got.Care.Watering)
	assert.Equal(t, "Рассеянный", got.Care.Light)
	assert.Equal(t, "Рыхлая", got.Care.Soil)
	assert.Equal(t, "Средняя", got.Care.Humidity)
	assert.Equal(t, "Комнатное дерево", got.Description)

	n, err := store.Plants.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCatalog_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Plants.Upsert(ctx, &knowledge.Plant{Name: "Алоэ"})
	require.NoError(t, err)

	require.NoError(t, store.Plants.Delete(ctx, "алоэ"))
	_, err = store.Plants.GetByName(ctx, "Алоэ")
	require.ErrorIs(t, err, knowledge.ErrNotFound)
	require.ErrorIs(t, store.Plants.Delete(ctx, "алоэ"), knowledge.ErrNotFound)
}

func TestCatalog_UpsertRejectsEmptyName(t *testing.T) {
	t.Parallel()
	_, err := newStore(t).Plants.Upsert(context.Background(), &knowledge.Plant{Name: "  "})
	require.Error(t, err)
}

func TestCatalog_Modify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newStore(t)

	_, err := store.Plants.Upsert(ctx, &knowledge.Plant{Name: "Алоэ"})
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, store.Plants.Modify(ctx, "алоэ", func(p *knowledge.Plant) bool {
			p.ImageCount++
			return true
		}))
	}
	got, err := store.Plants.GetByName(ctx, "Алоэ")
	require.NoError(t, err)
	assert.Equal(t, 3, got.ImageCount)

	err = store.Plants.Modify(ctx, "кактус", func(*knowledge.Plant) bool { return true })
	require.ErrorIs(t, err, knowledge.ErrNotFound)
}
