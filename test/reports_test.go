//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/formcheck/internal/analysis"
	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/pose"
	"github.com/2beens/formcheck/internal/reports"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squatFrames(knees ...float64) []batch.Frame {
	frames := make([]batch.Frame, 0, len(knees))
	for _, k := range knees {
		frames = append(frames, batch.Frame{Observations: []pose.Observation{squatPose(k)}})
	}
	return frames
}

func (s *IntegrationTestSuite) TestBatchReports() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	req := analysis.BatchRequest{
		ExerciseType: "squat",
		FPS:          10,
		Frames:       squatFrames(175, 120, 65, 120, 175, 120, 65, 120, 175),
	}

	status := s.doRequest(ctx, http.MethodPost, "/batch/analyze", req, "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	var report batch.Report
	status = s.doRequest(ctx, http.MethodPost, "/batch/analyze", req, testToken, &report)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, exercise.TypeSquat, report.ExerciseType)
	assert.Equal(t, 9, report.TotalFrames)
	assert.Equal(t, 0.9, report.Duration)
	assert.Equal(t, 2, report.RepCount)

	// persisted row, checked straight in postgres
	var (
		storedType  string
		storedScore float64
		storedReps  int
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT exercise_type, overall_form_score, rep_count FROM formcheck_report WHERE id = $1`, report.ID,
	).Scan(&storedType, &storedScore, &storedReps)
	require.NoError(t, err)
	assert.Equal(t, "squat", storedType)
	assert.Equal(t, report.OverallFormScore, storedScore)
	assert.Equal(t, 2, storedReps)

	var fetched batch.Report
	status = s.doRequest(ctx, http.MethodGet, "/reports/"+report.ID, nil, "", &fetched)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, report.ID, fetched.ID)
	assert.Len(t, fetched.FrameRecords, 9)

	var page reports.Page
	status = s.doRequest(ctx, http.MethodGet, "/reports/list/page/1/size/5", nil, "", &page)
	require.Equal(t, http.StatusOK, status)
	assert.GreaterOrEqual(t, page.Total, 1)
	require.NotEmpty(t, page.Reports)
	assert.Equal(t, report.ID, page.Reports[0].ID)

	status = s.doRequest(ctx, http.MethodGet, "/reports/list/page/0/size/5", nil, "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	tooMany := analysis.BatchRequest{ExerciseType: "plank", Frames: make([]batch.Frame, 101)}
	status = s.doRequest(ctx, http.MethodPost, "/batch/analyze", tooMany, testToken, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)

	status = s.doRequest(ctx, http.MethodDelete, "/reports/"+report.ID, nil, testToken, nil)
	require.Equal(t, http.StatusOK, status)
	status = s.doRequest(ctx, http.MethodGet, "/reports/"+report.ID, nil, "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM formcheck_report WHERE id = $1`, report.ID).Scan(&count))
	assert.Zero(t, count)
}

// tokenTransport adds the API token to every MCP request.
type tokenTransport struct {
	token string
	next  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	req.Header.Set("User-Agent", "test-agent")
	return t.next.RoundTrip(req)
}

func (s *IntegrationTestSuite) TestMCPOverHTTP() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration-test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint: fmt.Sprintf("%s/mcp", serverEndpoint),
		HTTPClient: &http.Client{
			Transport: &tokenTransport{token: testToken, next: http.DefaultTransport},
		},
	}, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "analyze_frames",
		Arguments: map[string]any{
			"exercise_type": "squat",
			"fps":           10,
			"frames":        squatFrames(175, 65, 175),
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	var report batch.Report
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*mcp.TextContent).Text), &report))
	assert.Equal(t, 3, report.TotalFrames)
	assert.Empty(t, report.FrameRecords)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_report",
		Arguments: map[string]any{"id": report.ID},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_report",
		Arguments: map[string]any{"id": "00000000-0000-0000-0000-000000000000"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
