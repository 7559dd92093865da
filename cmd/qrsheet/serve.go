package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/alnah/go-qrsheet"
	"github.com/alnah/go-qrsheet/internal/assets"
	"github.com/alnah/go-qrsheet/internal/server"
)

// runServe starts the web editor and blocks until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, _, err := parseServeFlags(args, env.Stdout)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(f.common, &f.sheet, env)
	if err != nil {
		return err
	}
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	kv, err := openState(cfg)
	if err != nil {
		return err
	}
	script, err := defaultScript(cfg)
	if err != nil {
		return err
	}

	log := newLogger(env.Stderr, f.common)
	store := qrsheet.NewMemoryStore(server.BlobPrefix)
	opts := append(sheetOptions(cfg, log), qrsheet.WithStateStore(kv), qrsheet.WithBlobStore(store))
	sheet, err := qrsheet.NewSheet(opts...)
	if err != nil {
		return err
	}
	defer sheet.Close()

	loader := env.AssetLoader
	if cfg.Assets.BasePath != "" {
		resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
		if err != nil {
			return err
		}
		loader = resolver
	}

	serverOpts := []server.Option{
		server.WithLogger(log),
		server.WithDefaultScript(script),
	}
	if loader != nil {
		serverOpts = append(serverOpts, server.WithAssets(loader))
	}
	if cfg.Sheet.Title != "" {
		serverOpts = append(serverOpts, server.WithTitle(cfg.Sheet.Title))
	}

	if !f.common.verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(ctx, sheet, store, serverOpts...)
	if err != nil {
		return err
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Editor at http://%s (Ctrl+C to stop)\n", cfg.Server.Addr)
	}
	return srv.Run(ctx, cfg.Server.Addr)
}
