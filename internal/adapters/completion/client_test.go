package completion_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tubot/internal/adapters/completion"
	"github.com/PabloGalante/tubot/internal/domain"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func request() domain.ChatRequest {
	return domain.ChatRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.RoleAssistant, Content: "¡Hola! Soy Aria. ¿En qué puedo ayudarte hoy?"},
			{Role: domain.RoleUser, Content: "Hello"},
		},
		Instructions: "Sé breve.",
		Model:        "mistralai/mistral-7b-instruct",
	}
}

func completionError(t *testing.T, err error) *domain.CompletionError {
	t.Helper()
	var cerr *domain.CompletionError
	require.ErrorAs(t, err, &cerr)
	return cerr
}

func TestCompleteSendsContractBody(t *testing.T) {
	var (
		got                       map[string]any
		method, path, contentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path, contentType = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"reply":"Hi there","model_used":"mistralai/mistral-7b-instruct"}`))
	}))
	defer srv.Close()

	resp, err := completion.New(srv.URL+"/").Complete(context.Background(), request())
	require.NoError(t, err)
	require.Equal(t, "Hi there", resp.Reply)
	require.Equal(t, "mistralai/mistral-7b-instruct", resp.ModelUsed)

	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "/chatbot/message", path)
	require.Equal(t, "application/json", contentType)

	require.Equal(t, "Sé breve.", got["instructions"])
	require.Equal(t, "mistralai/mistral-7b-instruct", got["model"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	require.Equal(t, map[string]any{"role": "user", "content": "Hello"}, msgs[1])
}

func TestCompleteStatusWithDetail(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, `{"detail":"rate limited"}`)

	_, err := completion.New(srv.URL).Complete(context.Background(), request())
	cerr := completionError(t, err)
	require.Equal(t, domain.FailureStatus, cerr.Kind)
	require.Equal(t, http.StatusInternalServerError, cerr.Status)
	require.Equal(t, "rate limited", domain.FailureText(err))
}

func TestCompleteStatusWithoutBody(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, ``)

	_, err := completion.New(srv.URL).Complete(context.Background(), request())
	cerr := completionError(t, err)
	require.Equal(t, domain.FailureStatus, cerr.Kind)
	require.Empty(t, cerr.Detail)
	require.Equal(t, domain.MsgServerError, domain.FailureText(err))
}

func TestCompleteStatusWithDetailList(t *testing.T) {
	srv := serve(t, http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","message"],"msg":"field required"}]}`)

	_, err := completion.New(srv.URL).Complete(context.Background(), request())
	cerr := completionError(t, err)
	require.Equal(t, domain.FailureStatus, cerr.Kind)
	require.Equal(t, http.StatusUnprocessableEntity, cerr.Status)
	require.Empty(t, cerr.Detail)
	require.Equal(t, domain.MsgServerError, domain.FailureText(err))
}

func TestCompleteStatusWithHTMLBody(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := completion.New(srv.URL).Complete(context.Background(), request())
	require.Equal(t, domain.MsgServerError, domain.FailureText(err))
}

func TestCompleteMissingReply(t *testing.T) {
	for _, body := range []string{`{}`, `{"reply":""}`, `not json`} {
		srv := serve(t, http.StatusOK, body)

		_, err := completion.New(srv.URL).Complete(context.Background(), request())
		cerr := completionError(t, err)
		require.Equal(t, domain.FailureMalformed, cerr.Kind, body)
		require.Equal(t, domain.MsgServerError, domain.FailureText(err))
	}
}

func TestCompleteTransportFailure(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"reply":"x"}`)
	url := srv.URL
	srv.Close()

	_, err := completion.New(url).Complete(context.Background(), request())
	cerr := completionError(t, err)
	require.Equal(t, domain.FailureTransport, cerr.Kind)
	require.Equal(t, domain.MsgTransportError, domain.FailureText(err))
}

func TestCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := completion.New(srv.URL).Complete(ctx, request())
	cerr := completionError(t, err)
	require.Equal(t, domain.FailureTimeout, cerr.Kind)
	require.Equal(t, domain.MsgTimeout, domain.FailureText(err))
}
