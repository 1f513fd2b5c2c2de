package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"electronicos-api/internal/database"
	"electronicos-api/internal/logger"
	"electronicos-api/internal/model"
	"electronicos-api/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
)

// Connector hands out database handles; database.Gateway implements it.
type Connector interface {
	Connect(ctx context.Context) (*database.Conn, error)
}

// Repository is the set of collection operations the service runs, one per call.
type Repository interface {
	FindAll(ctx context.Context) ([]model.Electronico, error)
	FindByCodigo(ctx context.Context, codigo int64) (model.Electronico, error)
	FindByNombre(ctx context.Context, nombre string) ([]model.Electronico, error)
	FindByCategoria(ctx context.Context, categoria string) ([]model.Electronico, error)
	FindByPrecioMin(ctx context.Context, precio int64) ([]model.Electronico, error)
	Insert(ctx context.Context, doc model.Electronico) error
	Merge(ctx context.Context, codigo int64, fields model.Electronico) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, codigo int64) (int64, error)
}

// RepositoryFactory binds a Repository to the database of one connection.
type RepositoryFactory func(db *mongo.Database) Repository

type ElectronicoService struct {
	gateway Connector
	repoFor RepositoryFactory
}

var ElectronicoServiceTracer = otel.Tracer("ElectronicoService")

func NewElectronicoService(gateway Connector, collection string) *ElectronicoService {
	return NewElectronicoServiceWithFactory(gateway, func(db *mongo.Database) Repository {
		return repository.NewElectronicoRepository(db, collection)
	})
}

func NewElectronicoServiceWithFactory(gateway Connector, factory RepositoryFactory) *ElectronicoService {
	return &ElectronicoService{gateway: gateway, repoFor: factory}
}

// withRepository opens a connection, runs fn and always releases the connection.
func (s *ElectronicoService) withRepository(ctx context.Context, fn func(repo Repository) error) error {
	conn, err := s.gateway.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer func() {
		if err := conn.Disconnect(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "Failed to disconnect from MongoDB", slog.String("error", err.Error()))
		}
	}()

	return fn(s.repoFor(conn.Database))
}

func (s *ElectronicoService) GetAll(ctx context.Context) ([]model.Electronico, error) {
	ctx, span := ElectronicoServiceTracer.Start(ctx, "ElectronicoService.GetAll")
	defer span.End()

	var docs []model.Electronico
	err := s.withRepository(ctx, func(repo Repository) error {
		var err error
		docs, err = repo.FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []model.Electronico{}
	}
	return docs, nil
}

// GetByCodigo treats a non numeric codigo as a lookup that matches nothing.
func (s *ElectronicoService) GetByCodigo(ctx context.Context, rawCodigo string) (model.Electronico, error) {
	ctx, span := ElectronicoServiceTracer.Start(ctx, "ElectronicoService.GetByCodigo")
	defer span.End()

	var doc model.Electronico
	err := s.withRepository(ctx, func(repo Repository) error {
		codigo, ok := model.ParseInt(rawCodigo)
		if !ok {
			return ErrNotFound
		}
		var err error
		doc, err = repo.FindByCodigo(ctx, codigo)
		if err != nil {
			return err
		}
		if doc == nil {
			return ErrNotFound
		}
		return nil
	})
	return doc, err
}

func (s *ElectronicoService) SearchByNombre(ctx context.Context, nombre string) ([]model.Electronico, error) {
	ctx, span := ElectronicoServiceTracer.Start(ctx, "ElectronicoService.SearchByNombre")
	defer span.End()

	return s.search(ctx, func(repo Repository) ([]model.Electronico, error) {
		return repo.FindByNombre(ctx, normalizeTerm(nombre))
	})
}

func (s *ElectronicoService) SearchByCategoria(ctx context.Context, categoria string) ([]model.Electronico, error) {
	ctx, span := ElectronicoServiceTracer.Start(ctx, "ElectronicoService.SearchByCategoria")
	defer span.End()

	return s.search(ctx, func(repo Repository) ([]model.Electronico, error) {
		return repo.FindByCategoria(ctx, normalizeTerm(categoria))
	})
}

func (s *ElectronicoService) SearchByPrecio(ctx context.Context, rawPrecio string) ([]model.Electronico, error) {
	ctx, span := ElectronicoServiceTracer.Start(ctx, "ElectronicoService.SearchByPrecio")
	defer span.End()

	return s.search(ctx, func(repo Repository) ([]model.Electronico, error) {
		precio, ok := model.ParseInt(rawPrecio)
		if !ok {
			return nil, nil
		}
		return repo.FindByPrecioMin(ctx, precio)
	})
}

// search reports ErrNotFound for an empty result set.
func (s *ElectronicoService) search(ctx context.Context, find func(repo Repository) ([]model.Electronico, error)) ([]model.Electronico, error) {
	var docs []model.Electronico
	err := s.withRepository(ctx, func(repo Repository) error {
		var err error
		docs, err = find(repo)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Create inserts doc verbatim and returns it with its generated _id.
func (s *ElectronicoService) Create(ctx context.Context, doc model.Electronico) (model.Electronico, error) {
	ctx, span := ElectronicoServiceTracer.Start(ctx, "ElectronicoService.Create")
	defer span.End()

	if doc == nil {
		return nil, ErrInvalidBody
	}

	err := s.withRepository(ctx, func(repo Repository) error {
		return repo.Insert(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	if codigo, ok := doc.Codigo(); ok {
		logger.Info(ctx, "Nuevo producto creado", slog.Int64("codigo", codigo))
	} else {
		logger.Info(ctx, "Nuevo producto creado")
	}
	return doc, nil
}

// Update merges every field of fields, except _id, into the document with codigo.
func (s *ElectronicoService) Update(ctx context.Context, rawCodigo string, fields model.Electronico) error {
	ctx, span := ElectronicoServiceTracer.Start(ctx, "ElectronicoService.Update")
	defer span.End()

	codigo, ok := model.ParseInt(rawCodigo)
	if !ok {
		return ErrInvalidCodigo
	}
	set := fields.WithoutID()
	if len(set) == 0 {
		return ErrInvalidBody
	}

	err := s.withRepository(ctx, func(repo Repository) error {
		res, err := repo.Merge(ctx, codigo, set)
		if err != nil {
			return err
		}
		logger.Info(ctx, "Producto modificado",
			slog.Int64("codigo", codigo),
			slog.Int64("matched", res.MatchedCount),
		)
		return nil
	})
	return err
}

// UpdatePrecio applies only body.precio; every other member of body is ignored.
func (s *ElectronicoService) UpdatePrecio(ctx context.Context, rawCodigo string, body model.Electronico) error {
	ctx, span := ElectronicoServiceTracer.Start(ctx, "ElectronicoService.UpdatePrecio")
	defer span.End()

	codigo, ok := model.ParseInt(rawCodigo)
	if !ok {
		return ErrInvalidCodigo
	}
	precio, ok := body.Precio()
	if !ok {
		return ErrInvalidBody
	}

	return s.withRepository(ctx, func(repo Repository) error {
		res, err := repo.Merge(ctx, codigo, model.Electronico{model.FieldPrecio: precio})
		if err != nil {
			return err
		}
		logger.Info(ctx, "Precio actualizado correctamente",
			slog.Int64("codigo", codigo),
			slog.Int64("matched", res.MatchedCount),
		)
		return nil
	})
}

// Delete rejects codigo 0 as well as NaN.
func (s *ElectronicoService) Delete(ctx context.Context, rawCodigo string) error {
	ctx, span := ElectronicoServiceTracer.Start(ctx, "ElectronicoService.Delete")
	defer span.End()

	codigo, ok := model.ParseInt(rawCodigo)
	if !ok || codigo == 0 {
		return ErrInvalidCodigo
	}

	return s.withRepository(ctx, func(repo Repository) error {
		deleted, err := repo.Delete(ctx, codigo)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrNotFound
		}
		logger.Info(ctx, "Producto eliminado", slog.Int64("codigo", codigo))
		return nil
	})
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
