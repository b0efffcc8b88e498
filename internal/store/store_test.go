package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/zach-portfolio/internal/catalog"
	"github.com/Zachkp/zach-portfolio/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleDoc() *catalog.Document {
	return &catalog.Document{
		Projects: []catalog.Project{
			{ID: "b", Title: "Beta", Description: "second", Category: "web", Technologies: []string{"Go", "SQLite"}, CompletionDate: catalog.NewDate(2024, time.April, 2), Featured: true, GithubURL: "https://github.com/x/beta"},
			{ID: "a", Title: "Alpha", Description: "first", Category: "design", Technologies: nil, CompletionDate: catalog.NewDate(2023, time.January, 9), DemoURL: "https://alpha.example"},
		},
		Categories: []catalog.Category{
			{ID: "web", Name: "Web", Count: 1},
			{ID: "design", Name: "Design", Count: 1},
		},
	}
}

func Test_ImportDocument_Round_Trips_Through_Fetch(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.ImportDocument(ctx, sampleDoc()))

	got, err := s.Fetch(ctx)
	require.NoError(t, err)

	want := sampleDoc()
	want.Projects[1].Technologies = []string{}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("fetched document (-want +got):\n%s", diff)
	}
}

func Test_ImportDocument_Replaces_Previous_Collection(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.ImportDocument(ctx, sampleDoc()))

	next := &catalog.Document{Projects: []catalog.Project{{ID: "c", Title: "Gamma"}}}
	require.NoError(t, s.ImportDocument(ctx, next))

	got, err := s.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, got.Projects, 1)
	assert.Equal(t, "c", got.Projects[0].ID)
	assert.Empty(t, got.Categories)
}

func Test_ImportDocument_Rejects_Duplicate_IDs(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	doc := &catalog.Document{Projects: []catalog.Project{{ID: "x"}, {ID: "x"}}}

	err := s.ImportDocument(context.Background(), doc)
	assert.ErrorIs(t, err, catalog.ErrMalformedDocument)
}

func Test_Store_Backs_A_Catalog(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()
	require.NoError(t, s.ImportDocument(ctx, sampleDoc()))

	c := catalog.New(ctx, s)
	require.NoError(t, c.Wait(ctx))

	r := c.SetSearchTerm("sqlite")
	assert.Equal(t, catalog.StatusReady, r.Status)
	require.Len(t, r.VisibleProjects, 1)
	assert.Equal(t, "b", r.VisibleProjects[0].ID)
}

func Test_Visits_Cleanup_And_Stats(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()
	now := time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)

	visits := []store.Visit{
		{HashedIP: "aaa", Path: "/", Timestamp: now.Add(-time.Hour)},
		{HashedIP: "aaa", Path: "/projects", Timestamp: now.Add(-2 * time.Hour)},
		{HashedIP: "bbb", Path: "/", Timestamp: now.AddDate(0, 0, -3)},
		{HashedIP: "ccc", Path: "/", Timestamp: now.AddDate(-2, 0, 0)},
	}
	for _, v := range visits {
		require.NoError(t, s.RecordVisit(ctx, v))
	}
	require.NoError(t, s.ImportDocument(ctx, sampleDoc()))

	stats, err := s.Stats(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalVisitors)
	assert.EqualValues(t, 3, stats.UniqueVisitors)
	assert.EqualValues(t, 2, stats.VisitorsToday)
	assert.EqualValues(t, 3, stats.VisitorsThisWeek)
	assert.EqualValues(t, 2, stats.TotalProjects)
	assert.EqualValues(t, 2, stats.TotalCategories)
	assert.Equal(t, []store.PathCount{{Path: "/", Views: 3}, {Path: "/projects", Views: 1}}, stats.TopPaths)
	require.Len(t, stats.RecentVisitors, 4)
	assert.Equal(t, "/", stats.RecentVisitors[0].Path)
	assert.True(t, stats.RecentVisitors[0].Timestamp.Equal(now.Add(-time.Hour)))

	removed, err := s.CleanupVisits(ctx, now.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

func Test_Messages_Save_Mark_And_List(t *testing.T) {
	t.Parallel()

	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveMessage(ctx, store.ContactMessage{ID: "m1", Name: "Ada", Email: "ada@example.com", Subject: "job", Body: "Hello there!", CreatedAt: base}))
	require.NoError(t, s.SaveMessage(ctx, store.ContactMessage{ID: "m2", Name: "Bob", Email: "bob@example.com", Subject: "other", Body: "Second message", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.MarkMessage(ctx, "m1", store.MessageFailed))

	err := s.MarkMessage(ctx, "missing", store.MessageSent)
	assert.ErrorIs(t, err, store.ErrNotFound)

	msgs, err := s.RecentMessages(ctx, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[0].ID)
	assert.Equal(t, store.MessagePending, msgs[0].Status)
	assert.Equal(t, store.MessageFailed, msgs[1].Status)

	stats, err := s.Stats(ctx, base)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalMessages)
	assert.EqualValues(t, 1, stats.FailedMessages)
}
