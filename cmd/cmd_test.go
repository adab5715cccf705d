package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	URL   string
	calls atomic.Int32
}

func newFakeAPI(t *testing.T, register func(e *echo.Echo)) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	e := echo.New()
	e.Pre(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			f.calls.Add(1)
			return next(c)
		}
	})
	if register != nil {
		register(e)
	}
	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)
	f.URL = ts.URL
	return f
}

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, api *fakeAPI, args ...string) result {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_ORGANIZATION", "")
	if api != nil {
		args = append(args, "--api-base", api.URL)
	}
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestExecute_usage(t *testing.T) {
	t.Run("no command prints help", func(t *testing.T) {
		res := run(t, nil)
		assert.Equal(t, exitOK, res.code)
		assert.Contains(t, res.stdout, "Usage:")
		assert.Contains(t, res.stdout, "engines.list")
		assert.Contains(t, res.stdout, "tokens.count_tokens")
	})

	tTable := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown command",
			args:    []string{"engines.nope"},
			wantErr: `unknown command "engines.nope"`,
		},
		{
			name:    "missing required id",
			args:    []string{"engines.get"},
			wantErr: `required flag(s) "id" not set`,
		},
		{
			name:    "documents and file together",
			args:    []string{"engines.search", "-i", "ada", "-q", "x", "-d", "a", "-f", "file-1"},
			wantErr: "documents",
		},
		{
			name:    "bad int",
			args:    []string{"completions.create", "-e", "ada", "-n", "two"},
			wantErr: "invalid argument",
		},
	}

	for _, tc := range tTable {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI(t, nil)
			res := run(t, api, tc.args...)

			assert.Equal(t, exitUsage, res.code)
			assert.Contains(t, res.stderr, tc.wantErr)
			assert.Contains(t, res.stderr, "--help' for usage.")
			assert.Empty(t, res.stdout)
			assert.Zero(t, api.calls.Load())
		})
	}
}

func TestExecute_usageBeforeConfig(t *testing.T) {
	tTable := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing required id",
			args:    []string{"engines.get"},
			wantErr: `required flag(s) "id" not set`,
		},
		{
			name:    "documents and file together",
			args:    []string{"engines.search", "-i", "ada", "-q", "x", "-d", "a", "-f", "file-1"},
			wantErr: "documents",
		},
	}

	for _, tc := range tTable {
		t.Run(tc.name, func(t *testing.T) {
			res := run(t, nil, append(tc.args, "--api-base", "ftp://example.com")...)

			assert.Equal(t, exitUsage, res.code)
			assert.Contains(t, res.stderr, tc.wantErr)
			assert.NotContains(t, res.stderr, "invalid configuration")
		})
	}
}

func TestExecute_validation(t *testing.T) {
	tTable := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "stream completions with n>1",
			args:    []string{"completions.create", "-e", "ada", "--stream", "-n", "2"},
			wantErr: "Error: Can't stream completions with n>1 with the current CLI\n",
		},
		{
			name:    "stream generate with several completions",
			args:    []string{"engines.generate", "-i", "ada", "--stream", "-n", "3"},
			wantErr: "Error: Can't stream multiple completions with openai CLI\n",
		},
		{
			name:    "malformed hparams",
			args:    []string{"fine_tunes.create", "-t", "file-1", "-p", "{not json"},
			wantErr: "--hparams must be JSON decodable and match the hyperparameter arguments of the API\n",
		},
		{
			name:    "missing upload",
			args:    []string{"files.create", "-f", "/does/not/exist.jsonl", "-p", "fine-tune"},
			wantErr: "cannot open /does/not/exist.jsonl",
		},
	}

	for _, tc := range tTable {
		t.Run(tc.name, func(t *testing.T) {
			api := newFakeAPI(t, nil)
			res := run(t, api, tc.args...)

			assert.Equal(t, exitFailure, res.code)
			assert.Contains(t, res.stderr, tc.wantErr)
			assert.Empty(t, res.stdout)
			assert.Zero(t, api.calls.Load())
		})
	}
}

func TestExecute_apiError(t *testing.T) {
	api := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/v1/engines/:id", func(c echo.Context) error {
			c.Response().Header().Set("OpenAI-Organization", "acme")
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": echo.Map{"message": "not found", "type": "invalid_request_error"},
			})
		})
	})

	res := run(t, api, "engines.get", "-i", "missing")

	assert.Equal(t, exitFailure, res.code)
	assert.Equal(t, "[organization=acme] Error: not found (HTTP status code: 404)\n", res.stderr)
	assert.Empty(t, res.stdout)
}

func TestExecute_invalidConfig(t *testing.T) {
	res := run(t, nil, "engines.list", "--api-base", "ftp://example.com")

	assert.Equal(t, exitFailure, res.code)
	assert.Contains(t, res.stderr, "invalid configuration")
}

func TestExecute_completions(t *testing.T) {
	var body map[string]any
	api := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/v1/engines/:engine/completions", func(c echo.Context) error {
			require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&body))
			return c.JSON(http.StatusOK, echo.Map{
				"id":     "cmpl-1",
				"object": "text_completion",
				"choices": []echo.Map{
					{"index": 1, "text": "second"},
					{"index": 0, "text": "first"},
				},
			})
		})
	})

	res := run(t, api, "completions.create", "-e", "davinci", "-p", "hi", "-n", "2")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "===== Completion 0 =====\nfirst\n===== Completion 1 =====\nsecond\n", res.stdout)
	assert.Equal(t, true, body["echo"])
	assert.Equal(t, "hi", body["prompt"])
	assert.NotContains(t, body, "max_tokens")
	assert.NotContains(t, body, "stream")
}

func TestExecute_completionsStream(t *testing.T) {
	api := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/v1/engines/:engine/completions", func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
			c.Response().WriteHeader(http.StatusOK)
			for _, ev := range []string{
				`{"choices":[{"index":0,"text":"Hel"}]}`,
				`{"choices":[{"index":0,"text":"lo"}]}`,
				`[DONE]`,
			} {
				c.Response().Write([]byte("data: " + ev + "\n\n"))
				c.Response().Flush()
			}
			return nil
		})
	})

	res := run(t, api, "completions.create", "-e", "davinci", "--stream")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "Hello", res.stdout)
}

func TestExecute_search(t *testing.T) {
	var body map[string]any
	api := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/v1/engines/:id/search", func(c echo.Context) error {
			require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&body))
			return c.JSON(http.StatusOK, echo.Map{
				"object": "list",
				"data": []echo.Map{
					{"document": 0, "score": 0.2},
					{"document": 1, "score": 0.9},
				},
			})
		})
	})

	res := run(t, api, "engines.search", "-i", "ada", "-q", "fruit", "-d", "carrot", "-d", "apple")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "=== score 0.900 ===\napple\n=== score 0.200 ===\ncarrot\n", res.stdout)
	assert.Equal(t, float64(200), body["max_rerank"])
	assert.Equal(t, false, body["return_metadata"])
	assert.Equal(t, []any{"carrot", "apple"}, body["documents"])
}

func TestExecute_fineTuneCreate(t *testing.T) {
	var body map[string]any
	api := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/v1/fine-tunes", func(c echo.Context) error {
			require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&body))
			c.Response().Header().Set("OpenAI-Organization", "acme")
			return c.JSON(http.StatusOK, echo.Map{"id": "ft-1", "object": "fine-tune"})
		})
	})

	res := run(t, api, "fine_tunes.create", "-t", "file-1", "-b", "curie", "-p", `{"n_epochs": 4}`)

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, map[string]any{
		"train_file": "file-1",
		"base_model": "curie",
		"n_epochs":   float64(4),
	}, body)
	assert.Equal(t, "{\n  \"id\": \"ft-1\",\n  \"object\": \"fine-tune\"\n}\n", res.stdout)
	assert.Equal(t, "[organization=acme] ", res.stderr)
}

func TestExecute_filesCreate(t *testing.T) {
	var purpose, name string
	api := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/v1/files", func(c echo.Context) error {
			purpose = c.FormValue("purpose")
			fh, err := c.FormFile("file")
			require.NoError(t, err)
			name = fh.Filename
			return c.JSON(http.StatusOK, echo.Map{"id": "file-1"})
		})
	})

	path := filepath.Join(t.TempDir(), "train.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"prompt":"a","completion":"b"}`+"\n"), 0o600))

	res := run(t, api, "files.create", "-f", path, "-p", "fine-tune")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "fine-tune", purpose)
	assert.Equal(t, "train.jsonl", name)
	assert.Contains(t, res.stdout, `"id": "file-1"`)
}

func TestExecute_yamlFormat(t *testing.T) {
	api := newFakeAPI(t, func(e *echo.Echo) {
		e.GET("/v1/tokens/:text", func(c echo.Context) error {
			return c.JSON(http.StatusOK, echo.Map{"count": 3})
		})
	})

	res := run(t, api, "tokens.count_tokens", "-t", "hello world", "--format", "yaml")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "count: 3\n", res.stdout)
}

func TestExecute_generate(t *testing.T) {
	var body map[string]any
	var engine string
	api := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/v1/engines/:id/generate", func(c echo.Context) error {
			engine = c.Param("id")
			require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&body))
			return c.JSON(http.StatusOK, echo.Map{
				"object": "list",
				"data": []echo.Map{
					{"text": []string{"sec", "ond"}},
					{"text": "first"},
				},
			})
		})
	})

	res := run(t, api, "engines.generate", "-i", "davinci", "-c", "Once", "-n", "2", "-l", "16", "-p", "0.5", "-m", "snap-1")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "davinci", engine)
	assert.Equal(t, map[string]any{
		"context":     "Once",
		"completions": float64(2),
		"length":      float64(16),
		"top_p":       0.5,
		"model":       "snap-1",
	}, body)
	assert.Equal(t, "===== Completion 0 =====\nsecond\n===== Completion 1 =====\nfirst\n", res.stdout)
}

func TestExecute_searchFileMetadata(t *testing.T) {
	tTable := []struct {
		name     string
		value    string
		wantMeta bool
	}{
		{name: "true", value: "true", wantMeta: true},
		{name: "false", value: "false", wantMeta: false},
	}

	for _, tc := range tTable {
		t.Run(tc.name, func(t *testing.T) {
			var body map[string]any
			api := newFakeAPI(t, func(e *echo.Echo) {
				e.POST("/v1/engines/:id/search", func(c echo.Context) error {
					require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&body))
					return c.JSON(http.StatusOK, echo.Map{
						"object": "list",
						"data": []echo.Map{
							{"document": 0, "score": 0.5, "text": "doc a", "metadata": echo.Map{"k": "v"}},
						},
					})
				})
			})

			res := run(t, api, "engines.search", "-i", "ada", "-q", "x", "-f", "file-1", "--return_metadata", tc.value)

			require.Equal(t, exitOK, res.code, res.stderr)
			assert.Equal(t, "file-1", body["file"])
			assert.Equal(t, tc.wantMeta, body["return_metadata"])
			assert.NotContains(t, body, "documents")

			want := "=== score 0.500 ===\ndoc a\n"
			if tc.wantMeta {
				want += "METADATA: {\"k\":\"v\"}\n"
			}
			assert.Equal(t, want, res.stdout)
		})
	}

	t.Run("not a boolean", func(t *testing.T) {
		api := newFakeAPI(t, nil)
		res := run(t, api, "engines.search", "-i", "ada", "-q", "x", "-f", "file-1", "--return_metadata", "maybe")

		assert.Equal(t, exitUsage, res.code)
		assert.Contains(t, res.stderr, "return_metadata")
		assert.Zero(t, api.calls.Load())
	})
}

func TestExecute_fineTuneCreateSkipsEmpty(t *testing.T) {
	var body map[string]any
	api := newFakeAPI(t, func(e *echo.Echo) {
		e.POST("/v1/fine-tunes", func(c echo.Context) error {
			require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&body))
			return c.JSON(http.StatusOK, echo.Map{"id": "ft-1"})
		})
	})

	res := run(t, api, "fine_tunes.create", "-t", "file-1", "--test_file", "", "-b", "", "-p", "")

	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, map[string]any{"train_file": "file-1"}, body)
}
