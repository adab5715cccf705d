package cmd

import (
	"context"
	"encoding/json"
)

const hparamsError = "--hparams must be JSON decodable and match the hyperparameter arguments of the API"

func fineTuneList(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.ListFineTunes(ctx)
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func fineTuneCreate(ctx context.Context, app *App, p Params) error {
	body := map[string]any{
		"train_file": p.String("train_file"),
	}
	// empty values count as not given
	if v := p.String("test_file"); v != "" {
		body["test_file"] = v
	}
	if v := p.String("base_model"); v != "" {
		body["base_model"] = v
	}
	if p.String("hparams") != "" {
		var hparams map[string]any
		if err := json.Unmarshal([]byte(p.String("hparams")), &hparams); err != nil || hparams == nil {
			return &ExitError{Code: exitFailure, Message: hparamsError}
		}
		for k, v := range hparams {
			body[k] = v
		}
	}

	obj, err := app.client.CreateFineTune(ctx, body)
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func fineTuneGet(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.GetFineTune(ctx, p.String("id"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func fineTuneEvents(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.ListFineTuneEvents(ctx, p.String("id"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func fineTuneCancel(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.CancelFineTune(ctx, p.String("id"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}
