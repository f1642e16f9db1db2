//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/stretchr/testify/require"
)

// doRequest sends body as JSON and decodes a 2xx response into out (when not nil).
func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path string, body any, token string, out any) int {
	t := s.T()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, &buf)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-FORMCHECK-TOKEN", token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
