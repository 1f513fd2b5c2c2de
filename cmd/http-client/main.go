package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"electronicos-api/internal/client"
	"electronicos-api/internal/config"
	"electronicos-api/internal/logger"
	"electronicos-api/internal/model"
	"electronicos-api/internal/tracer"
	"electronicos-api/internal/version"
)

var (
	errNotDeleted   = errors.New("product still readable after delete")
	errWrongProduct = errors.New("server answered with another codigo")
)

// Walks one product through create, read, precio update, search and delete
// against a running server. Exits 1 on the first unexpected answer.
func main() {
	ctx := context.Background()
	log := logger.Instance()

	cfg, err := config.LoadClient()
	if err != nil {
		log.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info(cfg.AppName,
		slog.String("version", version.Version),
		slog.String("commit", version.Commit),
		slog.String("buildTime", version.BuildTime),
		slog.String("target", cfg.APIBaseURL),
	)

	shutdown, err := tracer.Setup(ctx, tracer.Options{AppName: cfg.AppName})
	if err != nil {
		log.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = shutdown(ctx) }()

	api := client.NewElectronicosClient(cfg.APIBaseURL, cfg.Timeout)
	codigo := cfg.Codigo

	fail := func(step string, err error) {
		log.Error("Smoke step failed", slog.String("step", step), slog.String("error", err.Error()))
		_ = shutdown(ctx)
		os.Exit(1)
	}

	welcome, err := api.Welcome(ctx)
	if err != nil {
		fail("welcome", err)
	}
	log.Info("Welcome", slog.String("body", welcome))

	created, err := api.Create(ctx, model.Electronico{
		model.FieldCodigo:    codigo,
		model.FieldNombre:    "Mouse",
		model.FieldCategoria: "Perifericos",
		model.FieldPrecio:    15,
	})
	if err != nil {
		fail("create", err)
	}
	log.Info("Created", slog.Any("id", created[model.FieldID]), slog.Int("codigo", codigo))

	fetched, err := api.GetByCodigo(ctx, codigo)
	if err != nil {
		fail("get", err)
	}
	if got, ok := fetched.Codigo(); !ok || got != int64(codigo) {
		fail("get", errWrongProduct)
	}

	if _, err := api.UpdatePrecio(ctx, codigo, 20); err != nil {
		fail("update precio", err)
	}

	found, err := api.SearchByPrecio(ctx, 18)
	if err != nil {
		fail("search precio", err)
	}
	log.Info("Found by precio", slog.Int("count", len(found)))

	if err := api.Delete(ctx, codigo); err != nil {
		fail("delete", err)
	}

	_, err = api.GetByCodigo(ctx, codigo)
	if !client.IsNotFound(err) {
		if err == nil {
			err = errNotDeleted
		}
		fail("get after delete", err)
	}

	log.Info("Smoke run passed", slog.Int("codigo", codigo))
}
