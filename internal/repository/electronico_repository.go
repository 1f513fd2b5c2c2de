package repository

import (
	"context"
	"errors"
	"regexp"

	"electronicos-api/internal/logger"
	"electronicos-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
)

const DefaultCollection = "electronicos"

type ElectronicoRepository struct {
	collection *mongo.Collection
}

var ElectronicoRepositoryTracer = otel.Tracer("ElectronicoRepository")

func NewElectronicoRepository(db *mongo.Database, collection string) *ElectronicoRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	return &ElectronicoRepository{
		collection: db.Collection(collection),
	}
}

func (r *ElectronicoRepository) FindAll(ctx context.Context) ([]model.Electronico, error) {
	ctx, span := ElectronicoRepositoryTracer.Start(ctx, "ElectronicoRepository.FindAll")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.find(ctx, bson.M{})
}

// FindByCodigo returns nil without error when nothing matches.
func (r *ElectronicoRepository) FindByCodigo(ctx context.Context, codigo int64) (model.Electronico, error) {
	ctx, span := ElectronicoRepositoryTracer.Start(ctx, "ElectronicoRepository.FindByCodigo")
	defer span.End()
	logger.Info(ctx, "Repository")

	var doc model.Electronico
	err := r.collection.FindOne(ctx, bson.M{model.FieldCodigo: codigo}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *ElectronicoRepository) FindByNombre(ctx context.Context, nombre string) ([]model.Electronico, error) {
	ctx, span := ElectronicoRepositoryTracer.Start(ctx, "ElectronicoRepository.FindByNombre")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.find(ctx, bson.M{model.FieldNombre: containsFold(nombre)})
}

func (r *ElectronicoRepository) FindByCategoria(ctx context.Context, categoria string) ([]model.Electronico, error) {
	ctx, span := ElectronicoRepositoryTracer.Start(ctx, "ElectronicoRepository.FindByCategoria")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.find(ctx, bson.M{model.FieldCategoria: containsFold(categoria)})
}

func (r *ElectronicoRepository) FindByPrecioMin(ctx context.Context, precio int64) ([]model.Electronico, error) {
	ctx, span := ElectronicoRepositoryTracer.Start(ctx, "ElectronicoRepository.FindByPrecioMin")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.find(ctx, bson.M{model.FieldPrecio: bson.M{"$gte": precio}})
}

// Insert stores doc as sent, assigning an _id when the client did not.
func (r *ElectronicoRepository) Insert(ctx context.Context, doc model.Electronico) error {
	ctx, span := ElectronicoRepositoryTracer.Start(ctx, "ElectronicoRepository.Insert")
	defer span.End()
	logger.Info(ctx, "Repository")

	if _, ok := doc[model.FieldID]; !ok {
		doc[model.FieldID] = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// Merge applies fields with $set on the first document carrying codigo.
func (r *ElectronicoRepository) Merge(ctx context.Context, codigo int64, fields model.Electronico) (*mongo.UpdateResult, error) {
	ctx, span := ElectronicoRepositoryTracer.Start(ctx, "ElectronicoRepository.Merge")
	defer span.End()
	logger.Info(ctx, "Repository")

	return r.collection.UpdateOne(ctx, bson.M{model.FieldCodigo: codigo}, bson.M{"$set": fields})
}

func (r *ElectronicoRepository) Delete(ctx context.Context, codigo int64) (int64, error) {
	ctx, span := ElectronicoRepositoryTracer.Start(ctx, "ElectronicoRepository.Delete")
	defer span.End()
	logger.Info(ctx, "Repository")

	res, err := r.collection.DeleteOne(ctx, bson.M{model.FieldCodigo: codigo})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *ElectronicoRepository) find(ctx context.Context, filter bson.M) ([]model.Electronico, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]model.Electronico, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// containsFold matches text as a literal, case-insensitive substring.
func containsFold(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}
