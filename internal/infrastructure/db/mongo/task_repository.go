package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskforge/task-system/internal/core/domain"
	"github.com/taskforge/task-system/internal/core/ports"
)

const taskCollection = "tasks"

// TaskRepository persists tasks in MongoDB.
type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(taskCollection)}
}

// EnsureIndexes creates the user_id index used by List. Call once at startup.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create task index: %w", err)
	}
	return nil
}

type mongoTask struct {
	ID          string     `bson:"_id"`
	UserID      string     `bson:"user_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description,omitempty"`
	Completed   bool       `bson:"completed"`
	DueDate     *time.Time `bson:"due_date,omitempty"`
	Priority    string     `bson:"priority"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

func toMongoTask(t *domain.Task) mongoTask {
	return mongoTask{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (mt mongoTask) toDomain() *domain.Task {
	return &domain.Task{
		ID:          mt.ID,
		UserID:      mt.UserID,
		Title:       mt.Title,
		Description: mt.Description,
		Completed:   mt.Completed,
		DueDate:     mt.DueDate,
		Priority:    mt.Priority,
		CreatedAt:   mt.CreatedAt.UTC(),
		UpdatedAt:   mt.UpdatedAt.UTC(),
	}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if _, err := r.coll.InsertOne(ctx, toMongoTask(t)); err != nil {
		return fmt.Errorf("%w: insert task: %v", domain.ErrUnavailable, err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var mt mongoTask
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("%w: find task: %v", domain.ErrUnavailable, err)
	}
	return mt.toDomain(), nil
}

func (r *TaskRepository) List(ctx context.Context, filter ports.ListTasksFilter) ([]*domain.Task, error) {
	query := bson.M{"user_id": filter.UserID}
	switch filter.Status {
	case ports.StatusPending:
		query["completed"] = false
	case ports.StatusCompleted:
		query["completed"] = true
	}

	opts := options.Find().SetSort(sortSpec(filter.Sort))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: list tasks: %v", domain.ErrUnavailable, err)
	}
	defer cursor.Close(ctx)

	var out []*domain.Task
	for cursor.Next(ctx) {
		var mt mongoTask
		if err := cursor.Decode(&mt); err != nil {
			return nil, fmt.Errorf("%w: decode task: %v", domain.ErrUnavailable, err)
		}
		out = append(out, mt.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: list tasks: %v", domain.ErrUnavailable, err)
	}
	return out, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, toMongoTask(t))
	if err != nil {
		return fmt.Errorf("%w: update task: %v", domain.ErrUnavailable, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: delete task: %v", domain.ErrUnavailable, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// sortSpec maps the filter sort key to a mongo sort document.
func sortSpec(sort string) bson.D {
	switch sort {
	case ports.SortTitle:
		return bson.D{{Key: "title", Value: 1}}
	case ports.SortDueDate:
		return bson.D{{Key: "due_date", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}
