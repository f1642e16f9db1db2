//go:build integration_test || all_tests

package test

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/formcheck/internal/analysis"
	"github.com/2beens/formcheck/internal/exercise"
	"github.com/2beens/formcheck/internal/pose"
	"github.com/2beens/formcheck/internal/session"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const segment = 0.2

func lm(name string, x, y float64) pose.Landmark {
	return pose.Landmark{Name: name, X: x, Y: y, Visibility: 0.9}
}

// squatPose bends both knees to kneeAngle degrees, torso upright.
func squatPose(kneeAngle float64) pose.Observation {
	k := kneeAngle * math.Pi / 180
	return pose.Observation{
		Confidence: 0.9,
		Landmarks: []pose.Landmark{
			lm(pose.LeftShoulder, 0.45, 0.7-2*segment),
			lm(pose.RightShoulder, 0.55, 0.7-2*segment),
			lm(pose.LeftHip, 0.45, 0.7-segment),
			lm(pose.RightHip, 0.55, 0.7-segment),
			lm(pose.LeftKnee, 0.45, 0.7),
			lm(pose.RightKnee, 0.55, 0.7),
			lm(pose.LeftAnkle, 0.45-segment*math.Sin(k), 0.7-segment*math.Cos(k)),
			lm(pose.RightAnkle, 0.55+segment*math.Sin(k), 0.7-segment*math.Cos(k)),
		},
	}
}

func (s *IntegrationTestSuite) TestExercises() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var resp analysis.ExercisesResponse
	status := s.doRequest(ctx, http.MethodGet, "/exercises", nil, "", &resp)
	s.Require().Equal(http.StatusOK, status)
	s.Len(resp.Exercises, len(exercise.AllTypes))
}

func (s *IntegrationTestSuite) TestStreamingSession() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	t := s.T()

	sessionID := "it-session-1"
	var last analysis.AnalyzeResponse
	for _, knee := range []float64{175, 120, 65, 120, 175} {
		status := s.doRequest(ctx, http.MethodPost, "/sessions/"+sessionID+"/analyze", analysis.AnalyzeRequest{
			ExerciseType: "squat",
			Observation:  squatPose(knee),
		}, "", &last)
		require.Equal(t, http.StatusOK, status)
	}
	require.True(t, last.Analyzed)
	assert.Equal(t, 1, last.RepCount)
	assert.True(t, last.Supported)

	// session stats live in redis
	exists, err := s.redisClient.Exists(ctx, "formcheck-session||"+sessionID).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	var stats session.Stats
	status := s.doRequest(ctx, http.MethodGet, "/sessions/"+sessionID+"/stats", nil, "", &stats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 5, stats.FrameCount)
	assert.Equal(t, 1, stats.RepCounts[exercise.TypeSquat])

	status = s.doRequest(ctx, http.MethodPost, "/sessions/"+sessionID+"/reset/squat", nil, "", nil)
	require.Equal(t, http.StatusOK, status)

	status = s.doRequest(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status = s.doRequest(ctx, http.MethodDelete, "/sessions/"+sessionID, nil, testToken, nil)
	assert.Equal(t, http.StatusOK, status)

	exists, err = s.redisClient.Exists(ctx, "formcheck-session||"+sessionID).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func (s *IntegrationTestSuite) TestWebsocketStream() {
	t := s.T()

	wsURL := strings.Replace(serverEndpoint, "http://", "ws://", 1) + "/ws/sessions/it-ws-1/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"User-Agent": []string{"test-agent"}})
	require.NoError(t, err)
	defer conn.Close()
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	for _, knee := range []float64{175, 65, 175} {
		require.NoError(t, conn.WriteJSON(analysis.StreamMessage{
			Action:       analysis.StreamActionAnalyze,
			ExerciseType: "squat",
			Observation:  squatPose(knee),
		}))
		var reply analysis.StreamReply
		require.NoError(t, conn.ReadJSON(&reply))
		require.Empty(t, reply.Error)
		assert.Equal(t, "it-ws-1", reply.SessionID)
	}

	require.NoError(t, conn.WriteJSON(analysis.StreamMessage{Action: analysis.StreamActionAnalyze, ExerciseType: "moonwalk"}))
	var reply analysis.StreamReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.NotEmpty(t, reply.Error)
}
