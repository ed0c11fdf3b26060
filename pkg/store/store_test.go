package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webtrailhq/webtrail/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "webtrail.db"), nil)
	require.NoError(t, err)
	return s
}

func sampleOutcome() *types.Outcome {
	return &types.Outcome{
		TestID:        "TC-001",
		Status:        types.StatusSuccess,
		ExecutionTime: 12.5,
		StepsExecuted: 4,
		AgentOutput:   "✅ navigate: ✅ Successfully navigated to https://example.com - Page title: 'Example Domain'",
		Pages: []types.Page{
			{
				ID:    "page_1",
				Label: "Example Domain (example.com)",
				X:     200,
				Y:     100,
				Metadata: types.PageMetadata{
					URL:   "https://example.com/",
					Title: "Example Domain",
					KeyElements: []types.Element{
						{ID: "element_1", Type: "link", Tag: "a", Text: "More information...", Selector: "a", DependsOn: []string{}},
					},
				},
			},
		},
		Edges:       []types.Edge{},
		Screenshots: []string{"shots/home.png"},
		ExecutedAt:  time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC),
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Save(ctx, sampleOutcome())
	require.NoError(t, err)
	require.NotZero(t, id)

	loaded, err := s.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, "TC-001", loaded.TestID)
	assert.Equal(t, types.StatusSuccess, loaded.Status)
	assert.Equal(t, 12.5, loaded.ExecutionTime)
	assert.Equal(t, 4, loaded.StepsExecuted)
	require.Len(t, loaded.Pages, 1)
	assert.Equal(t, "Example Domain (example.com)", loaded.Pages[0].Label)
	require.Len(t, loaded.Pages[0].Metadata.KeyElements, 1)
	assert.Equal(t, "More information...", loaded.Pages[0].Metadata.KeyElements[0].Text)
	assert.Equal(t, []string{"shots/home.png"}, loaded.Screenshots)
	assert.True(t, loaded.ExecutedAt.Equal(sampleOutcome().ExecutedAt))
}

func TestGetMissingRecord(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListByTestIDNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleOutcome()
	second := sampleOutcome()
	second.Status = types.StatusFailed

	_, err := s.Save(ctx, first)
	require.NoError(t, err)
	_, err = s.Save(ctx, second)
	require.NoError(t, err)

	other := sampleOutcome()
	other.TestID = "TC-999"
	_, err = s.Save(ctx, other)
	require.NoError(t, err)

	outcomes, err := s.ListByTestID(ctx, "TC-001")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, types.StatusFailed, outcomes[0].Status)
	assert.Equal(t, types.StatusSuccess, outcomes[1].Status)
}

func TestListHonorsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.Save(ctx, sampleOutcome())
		require.NoError(t, err)
	}

	outcomes, err := s.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, outcomes, 3)
}
