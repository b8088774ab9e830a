package repository

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"sgfkit/internal/adapters"
	"sgfkit/internal/bootstrap"
	"sgfkit/internal/domain/collection"
	errs "sgfkit/internal/errors"
)

const operationTimeout = 5 * time.Second

type CollectionRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewCollectionRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *CollectionRepository {
	return &CollectionRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func sgfCacheKey(id string) string {
	return "sgf:" + id
}

func (c *CollectionRepository) collections() *mongo.Collection {
	return c.mongo.Collection(adapters.CollectionsCollection)
}

func (c *CollectionRepository) Save(ctx context.Context, record collection.StoredCollection) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	if _, err := c.collections().InsertOne(ctx, record); err != nil {
		return pkgerrors.Wrapf(err, "insert collection %s", record.ID)
	}

	c.cacheSGF(ctx, record.ID, record.Sgf)
	c.log.Infow("collection stored", "id", record.ID, "games", record.GameCount, "nodes", record.NodeCount)
	return nil
}

// cacheSGF is best effort, a miss falls back to Mongo.
func (c *CollectionRepository) cacheSGF(ctx context.Context, id, text string) {
	if err := c.redis.Set(ctx, sgfCacheKey(id), text, c.cfg.CacheTTL).Err(); err != nil {
		c.log.Warnw("failed to cache sgf", "id", id, "error", err)
	}
}

func (c *CollectionRepository) GetByID(ctx context.Context, id string) (collection.StoredCollection, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	var record collection.StoredCollection
	err := c.collections().FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return record, pkgerrors.Wrapf(errs.ErrCollectionNotFound, "id %s", id)
	}
	if err != nil {
		return record, pkgerrors.Wrapf(err, "find collection %s", id)
	}
	return record, nil
}

// LoadSGF returns the stored text, reading through the Redis cache.
func (c *CollectionRepository) LoadSGF(ctx context.Context, id string) (string, error) {
	text, err := c.redis.Get(ctx, sgfCacheKey(id)).Result()
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.log.Warnw("redis read failed, falling back to mongo", "id", id, "error", err)
	}

	record, err := c.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	c.cacheSGF(ctx, id, record.Sgf)
	return record.Sgf, nil
}

func (c *CollectionRepository) List(ctx context.Context, pageNum int) (*collection.CollectionPage, error) {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	total, err := c.collections().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "count collections")
	}

	pageLimit := c.cfg.PageLimitCollections
	skip, totalPages := pageBounds(total, pageNum, pageLimit)

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(pageLimit)).
		SetProjection(bson.M{"sgf": 0})

	cursor, err := c.collections().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "find collections")
	}
	defer cursor.Close(ctx)

	records := []collection.StoredCollection{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, pkgerrors.Wrap(err, "decode collections")
	}

	return &collection.CollectionPage{
		PageNum:     pageNum,
		TotalPages:  totalPages,
		Total:       total,
		Collections: records,
	}, nil
}

func (c *CollectionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, operationTimeout)
	defer cancel()

	res, err := c.collections().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return pkgerrors.Wrapf(err, "delete collection %s", id)
	}
	if err := c.redis.Del(ctx, sgfCacheKey(id)).Err(); err != nil {
		c.log.Warnw("failed to drop cached sgf", "id", id, "error", err)
	}
	if res.DeletedCount == 0 {
		return pkgerrors.Wrapf(errs.ErrCollectionNotFound, "id %s", id)
	}
	return nil
}

// pageBounds converts a 1-based page number into a skip count. Pages past
// the end give an empty page rather than an error.
func pageBounds(total int64, pageNum, pageLimit int) (skip int64, totalPages int) {
	if pageLimit <= 0 {
		pageLimit = 1
	}
	if pageNum < 1 {
		pageNum = 1
	}
	totalPages = int((total + int64(pageLimit) - 1) / int64(pageLimit))
	if pageNum > totalPages {
		return total, totalPages
	}
	skip = int64(pageNum-1) * int64(pageLimit)
	return skip, totalPages
}
