package cmd

import (
	"context"
	"log/slog"

	"github.com/odit-bit/openai-cli/api"
	"github.com/odit-bit/openai-cli/render"
)

func engineList(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.ListEngines(ctx)
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func engineGet(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.GetEngine(ctx, p.String("id"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func engineUpdate(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.UpdateEngine(ctx, p.String("id"), api.EngineUpdate{
		Replicas: p.IntPtr("replicas"),
	})
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func engineGenerate(ctx context.Context, app *App, p Params) error {
	stream := p.Bool("stream")
	if stream && p.Int("completions") > 1 {
		return &ValidationError{Message: "Can't stream multiple completions with openai CLI"}
	}
	slog.Debug("engines.generate is deprecated, use completions.create")

	req := api.GenerateRequest{
		Completions: p.IntPtr("completions"),
		Context:     p.StringPtr("context"),
		Length:      p.IntPtr("length"),
		Temperature: p.FloatPtr("temperature"),
		TopP:        p.FloatPtr("top_p"),
		Logprobs:    p.IntPtr("logprobs"),
		Stop:        p.StringPtr("stop"),
		Model:       p.StringPtr("model"),
	}
	id := p.String("id")

	if !stream {
		resp, err := app.client.Generate(ctx, id, req)
		if err != nil {
			return err
		}
		return app.render.Generate(render.Once(resp))
	}

	s, err := app.client.GenerateStream(ctx, id, req)
	if err != nil {
		return err
	}
	defer s.Close()
	return app.render.Generate(s.All())
}

func engineSearch(ctx context.Context, app *App, p Params) error {
	req := api.SearchRequest{
		Query:          p.String("query"),
		Documents:      p.Strings("documents"),
		File:           p.String("file"),
		MaxRerank:      p.Int("max_rerank"),
		ReturnMetadata: p.Bool("return_metadata"),
	}
	resp, err := app.client.Search(ctx, p.String("id"), req)
	if err != nil {
		return err
	}
	return app.render.Search(resp, req.Documents, req.ReturnMetadata && req.File != "")
}
