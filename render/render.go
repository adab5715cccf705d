// Package render formats API responses for the terminal. Rendered results go
// to the output writer; organization prefixes and errors go to the error writer.
package render

import (
	"bufio"
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/odit-bit/openai-cli/api"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type Renderer struct {
	out     *bufio.Writer
	errw    io.Writer
	palette Palette
	format  Format
}

func New(out, errw io.Writer, palette Palette, format Format) *Renderer {
	if palette == nil {
		palette = Plain
	}
	if format == "" {
		format = FormatJSON
	}
	return &Renderer{
		out:     bufio.NewWriter(out),
		errw:    errw,
		palette: palette,
		format:  format,
	}
}

// Once adapts a non-streamed response to the streamed rendering path.
func Once[T any](v T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		yield(v, nil)
	}
}

// Generate renders legacy engine output in the order the server sent it.
func (r *Renderer) Generate(parts iter.Seq2[*api.GenerateResponse, error]) error {
	for part, err := range parts {
		if err != nil {
			return err
		}
		texts := make([]string, 0, len(part.Data))
		for _, d := range part.Data {
			texts = append(texts, d.Text.String())
		}
		if err := r.items(texts); err != nil {
			return err
		}
	}
	return nil
}

// Completions renders each part's choices ordered by their index field.
func (r *Renderer) Completions(parts iter.Seq2[*api.Completion, error]) error {
	for part, err := range parts {
		if err != nil {
			return err
		}
		choices := slices.Clone(part.Choices)
		slices.SortStableFunc(choices, func(a, b api.Choice) int {
			return cmp.Compare(a.Index, b.Index)
		})
		texts := make([]string, 0, len(choices))
		for _, c := range choices {
			texts = append(texts, c.Text)
		}
		if err := r.items(texts); err != nil {
			return err
		}
	}
	return nil
}

// items writes one part. A lone item is written bare so streamed tokens
// join up; several items get a numbered header each.
func (r *Renderer) items(texts []string) error {
	multi := len(texts) > 1
	for i, text := range texts {
		if multi {
			fmt.Fprintf(r.out, "===== Completion %d =====\n", i)
		}
		r.out.WriteString(text)
		if multi {
			r.out.WriteString("\n")
		}
		if err := r.out.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// Search renders results by descending score. Document text comes from
// documents when the query supplied them, otherwise from the results.
func (r *Renderer) Search(resp *api.SearchResponse, documents []string, withMetadata bool) error {
	ranked := slices.Clone(resp.Data)
	slices.SortStableFunc(ranked, func(a, b api.SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})

	for _, res := range ranked {
		fmt.Fprintf(r.out, "=== score %.3f ===\n", res.Score)
		fmt.Fprintln(r.out, documentText(resp, documents, res))

		if withMetadata && res.Document >= 0 && res.Document < len(resp.Data) {
			meta := resp.Data[res.Document].Metadata
			if len(meta) > 0 && !bytes.Equal(meta, []byte("null")) {
				fmt.Fprintf(r.out, "METADATA: %s\n", compact(meta))
			}
		}
	}
	return r.out.Flush()
}

func documentText(resp *api.SearchResponse, documents []string, res api.SearchResult) string {
	if len(documents) > 0 {
		if res.Document >= 0 && res.Document < len(documents) {
			return documents[res.Document]
		}
		return res.Text
	}
	if res.Document >= 0 && res.Document < len(resp.Data) {
		return resp.Data[res.Document].Text
	}
	return res.Text
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// Object prints a resource with sorted keys, prefixed on the error writer
// by the organization that served it.
func (r *Renderer) Object(obj *api.Object) error {
	if obj.Organization != "" {
		fmt.Fprintf(r.errw, "[organization=%s] ", obj.Organization)
	}

	dec := json.NewDecoder(bytes.NewReader(obj.Raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("render object: %w", err)
	}

	var b []byte
	switch r.format {
	case FormatYAML:
		out, err := yaml.Marshal(yamlNumbers(v))
		if err != nil {
			return fmt.Errorf("render object: %w", err)
		}
		b = out
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("render object: %w", err)
		}
		b = append(out, '\n')
	}

	r.out.Write(b)
	return r.out.Flush()
}

// yamlNumbers replaces json.Number so integers keep every digit; yaml.v3
// would otherwise quote them as strings.
func yamlNumbers(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, e := range v {
			v[k] = yamlNumbers(e)
		}
	case []any:
		for i, e := range v {
			v[i] = yamlNumbers(e)
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	}
	return v
}

// Error prints an API failure as
// `[organization=X] Error: <message> (HTTP status code: N)`.
func (r *Renderer) Error(err *api.Error) {
	var b strings.Builder
	if err.Organization != "" {
		fmt.Fprintf(&b, "[organization=%s] ", err.Organization)
	}
	b.WriteString(r.palette.Paint(StyleFail, "Error:"))
	b.WriteString(" ")
	b.WriteString(err.Message)
	if err.HasStatus() {
		fmt.Fprintf(&b, " (HTTP status code: %d)", err.HTTPStatus)
	}
	b.WriteString("\n")
	io.WriteString(r.errw, b.String())
}

// Failure prints a local error with the same prefix as Error.
func (r *Renderer) Failure(msg string) {
	fmt.Fprintf(r.errw, "%s %s\n", r.palette.Paint(StyleFail, "Error:"), msg)
}

func (r *Renderer) WithFormat(f Format) *Renderer {
	if f == "" {
		return r
	}
	cp := *r
	cp.format = f
	return &cp
}
