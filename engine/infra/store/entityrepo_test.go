package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intakehq/intake/engine/entity"
	"github.com/intakehq/intake/engine/infra/store"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool
}

func projectRows(pool pgxmock.PgxPoolIface) *pgxmock.Rows {
	return pool.NewRows([]string{
		"id", "name", "normalized_name", "workspace_id", "category", "matching_keywords", "default_assignee",
	})
}

func TestEntityRepo_Projects(t *testing.T) {
	t.Run("Should fetch projects by normalized name", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewEntityRepo(mockPool)
		rows := projectRows(mockPool).
			AddRow("p1", "Sales", "sales", "ws1", "sales", []string{"deal"}, "")
		mockPool.ExpectQuery("SELECT (.+) FROM projects WHERE normalized_name = \\$1").
			WithArgs("sales").
			WillReturnRows(rows)

		projects, err := repo.ProjectsByNormalizedName(context.Background(), "sales")

		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "Sales", projects[0].Name)
		assert.Equal(t, []string{"deal"}, projects[0].Keywords)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should return an empty slice when nothing matches", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewEntityRepo(mockPool)
		mockPool.ExpectQuery("SELECT (.+) FROM projects WHERE normalized_name = \\$1").
			WithArgs("nope").
			WillReturnRows(projectRows(mockPool))

		projects, err := repo.ProjectsByNormalizedName(context.Background(), "nope")

		require.NoError(t, err)
		assert.Empty(t, projects)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should list all projects ordered by name", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewEntityRepo(mockPool)
		rows := projectRows(mockPool).
			AddRow("p1", "Marketing", "marketing", "", "", []string{}, "").
			AddRow("p2", "Sales", "sales", "", "", []string{}, "")
		mockPool.ExpectQuery("SELECT (.+) FROM projects ORDER BY name").
			WillReturnRows(rows)

		projects, err := repo.ListProjects(context.Background())

		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestEntityRepo_Users(t *testing.T) {
	t.Run("Should fetch users by email case insensitively", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewEntityRepo(mockPool)
		rows := mockPool.NewRows([]string{"id", "name", "normalized_name", "email"}).
			AddRow("u1", "Gabriel", "gabriel", "gabriel@opus.com")
		mockPool.ExpectQuery("SELECT (.+) FROM users WHERE lower\\(email\\) = lower\\(\\$1\\)").
			WithArgs("Gabriel@Opus.com").
			WillReturnRows(rows)

		users, err := repo.UsersByEmail(context.Background(), "Gabriel@Opus.com")

		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "gabriel@opus.com", users[0].Email)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestEntityRepo_Sections(t *testing.T) {
	t.Run("Should fetch a section by display name", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewEntityRepo(mockPool)
		rows := mockPool.NewRows([]string{"id", "project_id", "name", "normalized_name"}).
			AddRow("s1", "p1", "📅 Meeting Notes", "meeting notes")
		mockPool.ExpectQuery("SELECT (.+) FROM sections WHERE name = \\$1 AND project_id = \\$2").
			WillReturnRows(rows)

		section, err := repo.SectionByName(context.Background(), "p1", "📅 Meeting Notes")

		require.NoError(t, err)
		assert.Equal(t, "📅 Meeting Notes", section.Name)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should return ErrNotFound on a cache miss", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewEntityRepo(mockPool)
		mockPool.ExpectQuery("SELECT (.+) FROM sections").
			WillReturnRows(mockPool.NewRows([]string{"id", "project_id", "name", "normalized_name"}))

		_, err := repo.SectionByName(context.Background(), "p1", "Missing")

		assert.ErrorIs(t, err, entity.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should upsert a section on conflict", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewEntityRepo(mockPool)
		mockPool.ExpectExec("INSERT INTO sections (.+) ON CONFLICT \\(id\\) DO UPDATE").
			WithArgs("s1", "p1", "🧭 Strategy", "strategy").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.UpsertSection(context.Background(), &entity.Section{
			ID:             "s1",
			ProjectID:      "p1",
			Name:           "🧭 Strategy",
			NormalizedName: "strategy",
		})

		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Should surface query failures", func(t *testing.T) {
		mockPool := newMockPool(t)
		repo := store.NewEntityRepo(mockPool)
		mockPool.ExpectQuery("SELECT (.+) FROM sections").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.ListSections(context.Background(), "p1")

		assert.ErrorContains(t, err, "connection reset")
	})
}
