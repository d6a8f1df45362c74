package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"labeling-service/internal/apiclient"
	"labeling-service/internal/models"
	"labeling-service/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// The labeling client and the service agree on the wire contract.
func TestRemoteWorkflowAgainstServer(t *testing.T) {
	srv := httptest.NewServer(newRouter(t, stubSuggester{}))
	defer srv.Close()

	ctx := context.Background()
	client := apiclient.NewClient(apiclient.Config{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, zap.NewNop())
	require.NoError(t, client.Ping(ctx))

	ctrl := workflow.NewController(workflow.NewRemoteSource(client), zap.NewNop())

	_, err := ctrl.Next(ctx)
	assert.ErrorIs(t, err, workflow.ErrNoWork)
	assert.Equal(t, workflow.Idle, ctrl.State())

	sentences, err := ctrl.SubmitParagraph(ctx, "Only this one.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Only this one."}, sentences)

	text, err := ctrl.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Only this one.", text)

	adv, err := ctrl.Label(ctx, models.HateSpeech)
	require.NoError(t, err)
	assert.True(t, errors.Is(adv.FetchErr, workflow.ErrNoWork))
	assert.Equal(t, workflow.Idle, ctrl.State())

	_, err = ctrl.SubmitUserInput(ctx, "  typed text  ", models.Normal)
	require.NoError(t, err)

	err = client.LabelSentence(ctx, "x", "spam")
	assert.ErrorIs(t, err, models.ErrTransport)

	suggestion, err := client.Suggest(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, "stub", suggestion.Provider)

	pending, err := client.UnlabeledSentences(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	csv, err := client.ExportCSV(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csv), "sentence,label,timestamp\n\"Only this one.\",\"hate_speech\","))
	assert.Contains(t, string(csv), `"typed text","normal"`)
}
