package cmd

import "context"

func snapshotList(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.ListSnapshots(ctx)
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func snapshotGet(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.GetSnapshot(ctx, p.String("engine"), p.String("id"), p.FloatPtr("timeout"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func snapshotDelete(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.DeleteSnapshot(ctx, p.String("id"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}
