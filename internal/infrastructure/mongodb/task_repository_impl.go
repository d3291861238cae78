package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/repository"
)

type TaskRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection), now: time.Now}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	owner, err := primitive.ObjectIDFromHex(t.UserID)
	if err != nil {
		return err
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := taskDoc{
		ID:          primitive.NewObjectID(),
		Title:       t.Title,
		Description: t.Description,
		Progress:    string(t.Progress),
		DueDate:     t.DueDate,
		UserID:      owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	t.ID = doc.ID.Hex()
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

// findFilter renders the filter as a query document.
func findFilter(f repository.TaskFilter) bson.M {
	q := bson.M{"userId": bson.M{"$in": objectIDs(f.OwnerIDs)}}
	if f.Progress != "" {
		q["progress"] = string(f.Progress)
	}
	if f.IDs != nil {
		q["_id"] = bson.M{"$in": objectIDs(f.IDs)}
	}
	return q
}

func (r *TaskRepository) Find(ctx context.Context, f repository.TaskFilter) ([]entity.Task, error) {
	if len(f.OwnerIDs) == 0 || (f.IDs != nil && len(f.IDs) == 0) {
		return []entity.Task{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, findFilter(f), opts)
	if err != nil {
		return nil, err
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Task, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc taskDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	t := doc.toEntity()
	return &t, nil
}

// updateDoc renders the patch as an update document.
func updateDoc(p entity.TaskPatch, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if p.Title != nil {
		set["title"] = *p.Title
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Progress != nil {
		set["progress"] = string(*p.Progress)
	}
	update := bson.M{"$set": set}
	if p.ClearDueDate {
		update["$unset"] = bson.M{"dueDate": ""}
	} else if p.DueDate != nil {
		set["dueDate"] = *p.DueDate
	}
	return update
}

func (r *TaskRepository) Update(ctx context.Context, id string, p entity.TaskPatch) (*entity.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDoc
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, updateDoc(p, now), opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	t := doc.toEntity()
	return &t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
