package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

func fileCreate(ctx context.Context, app *App, p Params) error {
	path := p.String("file")
	f, err := os.Open(path)
	if err != nil {
		return &ExitError{Code: exitFailure, Message: fmt.Sprintf("cannot open %s: %v", path, err)}
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		slog.Debug("uploading file", "path", path, "size", humanize.Bytes(uint64(info.Size())))
	}

	obj, err := app.client.CreateFile(ctx, filepath.Base(path), f, p.String("purpose"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func fileGet(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.GetFile(ctx, p.String("id"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func fileDelete(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.DeleteFile(ctx, p.String("id"))
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}

func fileList(ctx context.Context, app *App, p Params) error {
	obj, err := app.client.ListFiles(ctx)
	if err != nil {
		return err
	}
	return app.render.Object(obj)
}
