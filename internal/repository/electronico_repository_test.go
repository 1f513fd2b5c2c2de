package repository

import (
	"context"
	"testing"

	"electronicos-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "electronicos.electronicos"

func mouse() bson.D {
	return bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "codigo", Value: int32(101)},
		{Key: "nombre", Value: "Mouse"},
		{Key: "categoria", Value: "Perifericos"},
		{Key: "precio", Value: int32(15)},
	}
}

func TestElectronicoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("FindAll returns every document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, mouse(), mouse()))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		docs, err := repo.FindAll(ctx)
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		assert.Equal(mt, "Mouse", docs[0][model.FieldNombre])
	})

	mt.Run("FindAll on empty collection is an empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewElectronicoRepository(mt.DB, "")

		docs, err := repo.FindAll(ctx)
		require.NoError(mt, err)
		assert.NotNil(mt, docs)
		assert.Empty(mt, docs)
	})

	mt.Run("FindByCodigo hit", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, mouse()))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		doc, err := repo.FindByCodigo(ctx, 101)
		require.NoError(mt, err)
		require.NotNil(mt, doc)
		assert.Equal(mt, int32(101), doc[model.FieldCodigo])

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, int64(101), evt.Command.Lookup("filter", "codigo").Int64())
	})

	mt.Run("FindByCodigo miss", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		doc, err := repo.FindByCodigo(ctx, 404)
		require.NoError(mt, err)
		assert.Nil(mt, doc)
	})

	mt.Run("FindByNombre sends a literal case-insensitive regex", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, mouse()))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		docs, err := repo.FindByNombre(ctx, "tv (4k)")
		require.NoError(mt, err)
		assert.Len(mt, docs, 1)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		pattern, options := evt.Command.Lookup("filter", "nombre").Regex()
		assert.Equal(mt, `tv \(4k\)`, pattern)
		assert.Equal(mt, "i", options)
	})

	mt.Run("FindByCategoria", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, mouse()))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		docs, err := repo.FindByCategoria(ctx, "perif")
		require.NoError(mt, err)
		assert.Len(mt, docs, 1)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		pattern, _ := evt.Command.Lookup("filter", "categoria").Regex()
		assert.Equal(mt, "perif", pattern)
	})

	mt.Run("FindByPrecioMin uses $gte", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, mouse()))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		_, err := repo.FindByPrecioMin(ctx, 10)
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, int64(10), evt.Command.Lookup("filter", "precio", "$gte").Int64())
	})

	mt.Run("Find surfaces command errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "bad filter",
		}))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		_, err := repo.FindByPrecioMin(ctx, 1)
		assert.Error(mt, err)
	})

	mt.Run("Insert assigns an _id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		doc := model.Electronico{"codigo": int32(101), "nombre": "Mouse"}
		require.NoError(mt, repo.Insert(ctx, doc))

		_, ok := doc.ID()
		assert.True(mt, ok)
	})

	mt.Run("Insert keeps a client supplied _id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		doc := model.Electronico{"_id": "custom", "codigo": int32(7)}
		require.NoError(mt, repo.Insert(ctx, doc))
		assert.Equal(mt, "custom", doc["_id"])
	})

	mt.Run("Merge uses $set", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		res, err := repo.Merge(ctx, 101, model.Electronico{"precio": int32(20)})
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), res.MatchedCount)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
		update := evt.Command.Lookup("updates").Array().Index(0).Value().Document()
		assert.Equal(mt, int32(20), update.Lookup("u", "$set", "precio").Int32())
		assert.Equal(mt, int64(101), update.Lookup("q", "codigo").Int64())
	})

	mt.Run("Delete reports count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		n, err := repo.Delete(ctx, 101)
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), n)
	})

	mt.Run("Delete miss", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		repo := NewElectronicoRepository(mt.DB, "electronicos")

		n, err := repo.Delete(ctx, 999)
		require.NoError(mt, err)
		assert.Zero(mt, n)
	})
}
