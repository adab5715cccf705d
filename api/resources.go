package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

const (
	_engines_path    = "/v1/engines"
	_snapshots_path  = "/v1/snapshots"
	_files_path      = "/v1/files"
	_fine_tunes_path = "/v1/fine-tunes"
	_tokens_path     = "/v1/tokens"
)

func enginePath(id string, rest ...string) string {
	p := _engines_path + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

/* ENGINES */

func (c *Client) ListEngines(ctx context.Context) (*Object, error) {
	return c.object(ctx, http.MethodGet, _engines_path, nil)
}

func (c *Client) GetEngine(ctx context.Context, id string) (*Object, error) {
	return c.object(ctx, http.MethodGet, enginePath(id), nil)
}

func (c *Client) UpdateEngine(ctx context.Context, id string, in EngineUpdate) (*Object, error) {
	return c.object(ctx, http.MethodPost, enginePath(id), in)
}

func (c *Client) Generate(ctx context.Context, id string, in GenerateRequest) (*GenerateResponse, error) {
	in.Stream = false
	var out GenerateResponse
	if err := c.decode(ctx, http.MethodPost, enginePath(id, "generate"), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateStream is Generate with server-sent partial responses.
// The caller must Close the stream.
func (c *Client) GenerateStream(ctx context.Context, id string, in GenerateRequest) (*Stream[*GenerateResponse], error) {
	in.Stream = true
	res, err := c.sendJSON(ctx, http.MethodPost, enginePath(id, "generate"), in)
	if err != nil {
		return nil, err
	}
	return newStream[*GenerateResponse](res), nil
}

func (c *Client) Search(ctx context.Context, id string, in SearchRequest) (*SearchResponse, error) {
	var out SearchResponse
	if err := c.decode(ctx, http.MethodPost, enginePath(id, "search"), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

/* COMPLETIONS */

func (c *Client) CreateCompletion(ctx context.Context, engine string, in CompletionRequest) (*Completion, error) {
	in.Stream = false
	var out Completion
	if err := c.decode(ctx, http.MethodPost, enginePath(engine, "completions"), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCompletionStream is CreateCompletion with server-sent partial
// responses. The caller must Close the stream.
func (c *Client) CreateCompletionStream(ctx context.Context, engine string, in CompletionRequest) (*Stream[*Completion], error) {
	in.Stream = true
	res, err := c.sendJSON(ctx, http.MethodPost, enginePath(engine, "completions"), in)
	if err != nil {
		return nil, err
	}
	return newStream[*Completion](res), nil
}

/* SNAPSHOTS */

func (c *Client) ListSnapshots(ctx context.Context) (*Object, error) {
	return c.object(ctx, http.MethodGet, _snapshots_path, nil)
}

// GetSnapshot blocks up to timeout seconds server side while the snapshot
// is pending. An empty engine addresses the snapshot directly.
func (c *Client) GetSnapshot(ctx context.Context, engine, id string, timeout *float64) (*Object, error) {
	path := _snapshots_path + "/" + url.PathEscape(id)
	if engine != "" {
		path = enginePath(engine, "snapshots", url.PathEscape(id))
	}
	if timeout != nil {
		q := url.Values{}
		q.Set("timeout", strconv.FormatFloat(*timeout, 'f', -1, 64))
		path += "?" + q.Encode()
	}
	return c.object(ctx, http.MethodGet, path, nil)
}

func (c *Client) DeleteSnapshot(ctx context.Context, id string) (*Object, error) {
	return c.object(ctx, http.MethodDelete, _snapshots_path+"/"+url.PathEscape(id), nil)
}

/* FILES */

// CreateFile uploads r as a multipart form under the given file name.
func (c *Client) CreateFile(ctx context.Context, name string, r io.Reader, purpose string) (*Object, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("purpose", purpose); err != nil {
		return nil, &Error{Message: fmt.Sprintf("client failed encode upload: %v", err)}
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("client failed encode upload: %v", err)}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &Error{Message: fmt.Sprintf("client failed read upload: %v", err)}
	}
	if err := w.Close(); err != nil {
		return nil, &Error{Message: fmt.Sprintf("client failed encode upload: %v", err)}
	}

	res, err := c.send(ctx, http.MethodPost, _files_path, &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer res.Close()
	return readObject(res)
}

func (c *Client) GetFile(ctx context.Context, id string) (*Object, error) {
	return c.object(ctx, http.MethodGet, _files_path+"/"+url.PathEscape(id), nil)
}

func (c *Client) DeleteFile(ctx context.Context, id string) (*Object, error) {
	return c.object(ctx, http.MethodDelete, _files_path+"/"+url.PathEscape(id), nil)
}

func (c *Client) ListFiles(ctx context.Context) (*Object, error) {
	return c.object(ctx, http.MethodGet, _files_path, nil)
}

/* FINE-TUNES */

func (c *Client) ListFineTunes(ctx context.Context) (*Object, error) {
	return c.object(ctx, http.MethodGet, _fine_tunes_path, nil)
}

// CreateFineTune posts the body as is; hyperparameters are top level keys.
func (c *Client) CreateFineTune(ctx context.Context, body map[string]any) (*Object, error) {
	return c.object(ctx, http.MethodPost, _fine_tunes_path, body)
}

func (c *Client) GetFineTune(ctx context.Context, id string) (*Object, error) {
	return c.object(ctx, http.MethodGet, _fine_tunes_path+"/"+url.PathEscape(id), nil)
}

func (c *Client) ListFineTuneEvents(ctx context.Context, id string) (*Object, error) {
	return c.object(ctx, http.MethodGet, _fine_tunes_path+"/"+url.PathEscape(id)+"/events", nil)
}

func (c *Client) CancelFineTune(ctx context.Context, id string) (*Object, error) {
	return c.object(ctx, http.MethodPost, _fine_tunes_path+"/"+url.PathEscape(id)+"/cancel", nil)
}

/* TOKENS */

func (c *Client) CountTokens(ctx context.Context, text string) (*Object, error) {
	return c.object(ctx, http.MethodGet, _tokens_path+"/"+url.PathEscape(text), nil)
}
