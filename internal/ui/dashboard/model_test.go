package dashboard_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/api/apitest"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/ui/dashboard"
)

func TestFetch(t *testing.T) {
	srv := apitest.NewServer(t, "")
	srv.SetCounter("projects", 4)
	srv.SetCounter("completed", 1200)
	srv.SetCounter("members", 7)
	srv.SetTasks([]model.Task{
		{ID: "t1", Status: model.TaskInProgress, CompletedPercentage: 40},
		{ID: "t2", Status: model.TaskInProgress, CompletedPercentage: 60},
		{ID: "t3", Status: model.TaskTodo},
	})

	s, err := dashboard.Fetch(context.Background(), api.NewClient(srv.URL, ""), "u1")

	require.NoError(t, err)
	assert.Equal(t, 4, s.TotalProjects)
	assert.Equal(t, 1200, s.CompletedTasks)
	assert.Equal(t, 7, s.ActiveMembers)
	assert.Equal(t, 3, s.InProgress.Total)
	assert.Equal(t, 2, s.InProgress.InProgress)
	assert.InDelta(t, 50.0, s.InProgress.AverageProgress, 0.001)
}

func TestView_RendersLoadedSummary(t *testing.T) {
	srv := apitest.NewServer(t, "")
	srv.SetCounter("completed", 1200)
	client := api.NewClient(srv.URL, "")

	m := dashboard.New(client, 100, 30)
	m.SetUser("u1")
	cmd := m.Load()
	require.NotNil(t, cmd)

	m, _ = m.Update(cmd())

	assert.Contains(t, m.View(), "1,200")
}

func TestFetch_Error(t *testing.T) {
	srv := apitest.NewServer(t, "")
	srv.Fail(http.MethodGet, "/project/total-projects/u1", http.StatusInternalServerError, "db down")

	_, err := dashboard.Fetch(context.Background(), api.NewClient(srv.URL, ""), "u1")

	require.Error(t, err)
	assert.Equal(t, "db down", api.Message(err, ""))
}
