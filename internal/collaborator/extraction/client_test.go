package extraction

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantflow/internal/collaborator"
)

func TestExtractChecklist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/extract", r.URL.Path)

		var req collaborator.ExtractionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "PNDR-6.1", req.CallCode)

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []collaborator.ChecklistCandidate{
				{OfficialName: "Cerere de finanțare", FolderGroup: "depunere", Required: true},
				{OfficialName: "Plan de afaceri", FolderGroup: "depunere", Required: true, GuideReference: "cap. 3.1"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	candidates, err := client.ExtractChecklist(context.Background(), collaborator.ExtractionRequest{
		DossierID: "d-1",
		CallCode:  "PNDR-6.1",
		GuideRefs: []string{"blob://ghid.pdf"},
	})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Plan de afaceri", candidates[1].OfficialName)
	assert.Equal(t, "cap. 3.1", candidates[1].GuideReference)
}

func TestExtractChecklistServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.ExtractChecklist(context.Background(), collaborator.ExtractionRequest{DossierID: "d-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestExtractChecklistHonorsContextDeadline(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect and
		// cancels r.Context(); otherwise server.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ExtractChecklist(ctx, collaborator.ExtractionRequest{DossierID: "d-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	<-started
}
