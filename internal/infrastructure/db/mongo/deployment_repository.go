package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/funcland/control-plane/internal/core/domain"
)

const (
	collectionDeployments = "deployments"
	collectionCounters    = "counters"
)

// DeploymentRepository implements ports.DeploymentRepository using MongoDB.
type DeploymentRepository struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewDeploymentRepository(db *mongo.Database) *DeploymentRepository {
	return &DeploymentRepository{
		col:      db.Collection(collectionDeployments),
		counters: db.Collection(collectionCounters),
	}
}

func (r *DeploymentRepository) Create(ctx context.Context, d *domain.Deployment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, d)
	return err
}

func (r *DeploymentRepository) FindByUUID(ctx context.Context, uuid string) (*domain.Deployment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.Deployment
	err := r.col.FindOne(ctx, bson.M{"_id": uuid}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDeploymentNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DeploymentRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Deployment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var deployments []*domain.Deployment
	if err := cur.All(ctx, &deployments); err != nil {
		return nil, err
	}
	return deployments, nil
}

// NextSeq increments and returns the per-project deployment counter.
func (r *DeploymentRepository) NextSeq(ctx context.Context, projectID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "deployments:" + projectID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

// SetDeployStatus records the build outcome. The filter includes the
// expected current status, so the deploying-to-terminal transition happens
// at most once even under concurrent reports.
func (r *DeploymentRepository) SetDeployStatus(ctx context.Context, uuid string, from, to domain.DeployStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": uuid, "deploy_status": from},
		bson.M{"$set": bson.M{"deploy_status": to, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": uuid})
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrDeploymentNotFound
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *DeploymentRepository) SetStatus(ctx context.Context, uuid string, status domain.DeploymentStatus) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": uuid},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrDeploymentNotFound
	}
	return nil
}

func (r *DeploymentRepository) SetProd(ctx context.Context, uuid string, isProd bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": uuid},
		bson.M{"$set": bson.M{"is_prod": isProd, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrDeploymentNotFound
	}
	return nil
}

func (r *DeploymentRepository) DeleteByProject(ctx context.Context, projectID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"project_id": projectID}); err != nil {
		return err
	}
	_, err := r.counters.DeleteOne(ctx, bson.M{"_id": "deployments:" + projectID})
	return err
}

func (r *DeploymentRepository) CountByDeployStatus(ctx context.Context) (map[domain.DeployStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$deploy_status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := make(map[domain.DeployStatus]int64)
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[domain.DeployStatus(row.Status)] = row.Count
	}
	return counts, cur.Err()
}

// EnsureIndexes creates the indexes the repository queries rely on.
func (r *DeploymentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "project_id", Value: 1}, {Key: "seq", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
