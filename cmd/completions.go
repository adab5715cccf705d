package cmd

import (
	"context"

	"github.com/odit-bit/openai-cli/api"
	"github.com/odit-bit/openai-cli/render"
)

func completionCreate(ctx context.Context, app *App, p Params) error {
	stream := p.Bool("stream")
	if stream && p.Int("n") > 1 {
		return &ValidationError{Message: "Can't stream completions with n>1 with the current CLI"}
	}

	req := api.CompletionRequest{
		Prompt:      p.StringPtr("prompt"),
		MaxTokens:   p.IntPtr("max-tokens"),
		Temperature: p.FloatPtr("temperature"),
		TopP:        p.FloatPtr("top_p"),
		N:           p.IntPtr("n"),
		Logprobs:    p.IntPtr("logprobs"),
		Stop:        p.StringPtr("stop"),
		Echo:        true,
	}
	engine := p.String("engine")

	if !stream {
		resp, err := app.client.CreateCompletion(ctx, engine, req)
		if err != nil {
			return err
		}
		return app.render.Completions(render.Once(resp))
	}

	s, err := app.client.CreateCompletionStream(ctx, engine, req)
	if err != nil {
		return err
	}
	defer s.Close()
	return app.render.Completions(s.All())
}
