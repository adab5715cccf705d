package cmd

import "context"

func tokensCount(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.CountTokens(ctx, p.String("text"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}
