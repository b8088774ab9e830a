package collections

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sgfkit/internal/bootstrap"
	"sgfkit/internal/repository"
	collectionsuc "sgfkit/internal/usecase/collections"
)

type envelope struct {
	Status int             `json:"Status"`
	Body   json.RawMessage `json:"Body"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWithImportRoot(t, "")
}

func newTestServerWithImportRoot(t *testing.T, importRoot string) *httptest.Server {
	t.Helper()
	cfg := bootstrap.Config{StrictParsing: true, MaxSgfBytes: 4096, PageLimitCollections: 10, ImportRoot: importRoot}
	log := zap.NewNop().Sugar()
	uc := collectionsuc.NewCollectionUseCase(cfg, log, repository.NewMapCollectionStorage(cfg.PageLimitCollections))

	r := chi.NewRouter()
	NewCollectionHandler(cfg, log, uc).Router(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	} else {
		env.Body = raw
	}
	return resp, env
}

func TestHandleParse(t *testing.T) {
	srv := newTestServer(t)

	resp, env := do(t, http.MethodPost, srv.URL+"/parse", "(;B[aa](;W[bb])(;W[cc]))")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, env.Status)

	var body struct {
		GameCount int `json:"game_count"`
		NodeCount int `json:"node_count"`
		Tree      struct {
			Games []struct {
				Properties map[string]any `json:"properties"`
				Children   []any          `json:"children"`
			} `json:"games"`
		} `json:"tree"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &body))
	assert.Equal(t, 1, body.GameCount)
	assert.Equal(t, 3, body.NodeCount)
	require.Len(t, body.Tree.Games, 1)
	assert.Equal(t, "aa", body.Tree.Games[0].Properties["B"])
	assert.Len(t, body.Tree.Games[0].Children, 2)
}

func TestHandleParseErrors(t *testing.T) {
	srv := newTestServer(t)

	resp, env := do(t, http.MethodPost, srv.URL+"/parse", "B[aa];W[bb]")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(env.Body), "B[")

	resp, _ = do(t, http.MethodPost, srv.URL+"/parse?strict=false", "B[aa];W[bb]")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/parse?strict=maybe", "(;)")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/parse", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/parse", "(;C["+strings.Repeat("x", 5000)+"])")
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestCollectionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp, env := do(t, http.MethodPost, srv.URL+"/collections?name=demo", "(;GM[1]PB[Black];B[pd];W[dd])")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID        string            `json:"id"`
		Name      string            `json:"name"`
		NodeCount int               `json:"node_count"`
		GameInfo  map[string]string `json:"game_info"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "demo", created.Name)
	assert.Equal(t, 3, created.NodeCount)
	assert.Equal(t, "Black", created.GameInfo["PB"])

	resp, env = do(t, http.MethodGet, srv.URL+"/collections", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Total       int64 `json:"total"`
		Collections []struct {
			ID string `json:"id"`
		} `json:"collections"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &page))
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Collections, 1)
	assert.Equal(t, created.ID, page.Collections[0].ID)

	resp, _ = do(t, http.MethodGet, srv.URL+"/collections/"+created.ID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = do(t, http.MethodGet, srv.URL+"/collections/"+created.ID+"/sgf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "(;GM[1]PB[Black];B[pd];W[dd])", string(env.Body))

	resp, env = do(t, http.MethodGet, srv.URL+"/collections/"+created.ID+"/mainline", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var line struct {
		Nodes []map[string]any `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &line))
	require.Len(t, line.Nodes, 3)
	assert.Equal(t, "dd", line.Nodes[2]["W"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/collections/"+created.ID+"/mainline?game=3", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/collections/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/collections/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleListRejectsBadPage(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/collections?page=zero", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/collections?page=0", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleListPastTheEnd(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/collections", "(;B[aa])")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := do(t, http.MethodGet, srv.URL+"/collections?page=9223372036854775807", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Total       int64 `json:"total"`
		TotalPages  int   `json:"total_pages"`
		Collections []any `json:"collections"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Collections)
}

func TestHandleImport(t *testing.T) {
	root := t.TempDir()
	srv := newTestServerWithImportRoot(t, root)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.sgf"), []byte("(;B[aa])"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.sgf"), []byte("B[aa]"), 0o644))

	reqBody, _ := json.Marshal(map[string]any{"path": root, "strict": true})
	resp, env := do(t, http.MethodPost, srv.URL+"/collections/import", string(reqBody))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Imported []struct {
			Name string `json:"name"`
		} `json:"imported"`
		Failed []struct {
			Path string `json:"path"`
		} `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &result))
	require.Len(t, result.Imported, 1)
	assert.Equal(t, "a", result.Imported[0].Name)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "b.sgf", filepath.Base(result.Failed[0].Path))

	resp, _ = do(t, http.MethodPost, srv.URL+"/collections/import", `{"path":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/collections/import", `{"dir":"x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	reqBody, _ = json.Marshal(map[string]any{"path": filepath.Join(root, "missing")})
	resp, _ = do(t, http.MethodPost, srv.URL+"/collections/import", string(reqBody))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/collections/import", `{"path":"../"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandleImportDisabledWithoutRoot(t *testing.T) {
	srv := newTestServer(t)

	reqBody, _ := json.Marshal(map[string]any{"path": t.TempDir()})
	resp, _ := do(t, http.MethodPost, srv.URL+"/collections/import", string(reqBody))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandleParseStream(t *testing.T) {
	srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var result streamResult
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("(;AB[aa][bb];W[cc])")))
	require.NoError(t, conn.ReadJSON(&result))
	assert.True(t, result.OK)
	require.NotNil(t, result.Result)
	assert.Equal(t, 2, result.Result.NodeCount)

	result = streamResult{}
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("(;B[aa]))")))
	require.NoError(t, conn.ReadJSON(&result))
	assert.False(t, result.OK)
	assert.Contains(t, result.Error, "unbalanced branch")
}
