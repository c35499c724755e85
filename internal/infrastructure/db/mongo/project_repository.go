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

const collectionProjects = "projects"

// ProjectRepository implements ports.ProjectRepository using MongoDB. The
// production pointer lives on the project document, so every swap is a
// single-document compare-and-set and readers never observe a half-applied
// promotion.
type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(collectionProjects)}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProjectExists
		}
		return err
	}
	return nil
}

func (r *ProjectRepository) FindByUUID(ctx context.Context, uuid string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Project
	err := r.col.FindOne(ctx, bson.M{"_id": uuid}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) FindByName(ctx context.Context, ownerID, name string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Project
	err := r.col.FindOne(ctx, bson.M{"owner_id": ownerID, "name": name}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns projects newest first. An empty ownerID lists all projects
// (admin aggregates only).
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []*domain.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) SetStatus(ctx context.Context, uuid string, status domain.ProjectStatus) error {
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
		return domain.ErrProjectNotFound
	}
	return nil
}

// CompareAndSwapProdDeployment sets the production pointer to next only when
// it still equals prev. A filter miss on an existing project means another
// writer moved the pointer first.
func (r *ProjectRepository) CompareAndSwapProdDeployment(ctx context.Context, uuid, prev, next string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": uuid, "prod_deployment_id": prev},
		bson.M{"$set": bson.M{"prod_deployment_id": next, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missReason(ctx, uuid)
	}
	return nil
}

// Rename carries the same guard: the write lands only if the production
// pointer is unchanged since the caller read it.
func (r *ProjectRepository) Rename(ctx context.Context, uuid, prev, name string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": uuid, "prod_deployment_id": prev},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProjectExists
		}
		return err
	}
	if res.MatchedCount == 0 {
		return r.missReason(ctx, uuid)
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, uuid, prev string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": uuid, "prod_deployment_id": prev})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return r.missReason(ctx, uuid)
	}
	return nil
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{})
}

// missReason distinguishes a vanished project from a lost race.
func (r *ProjectRepository) missReason(ctx context.Context, uuid string) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": uuid})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrProjectNotFound
	}
	return domain.ErrConcurrentModification
}

// EnsureIndexes creates the indexes the repository queries rely on.
func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
