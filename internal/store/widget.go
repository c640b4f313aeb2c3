package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/pkg/logger"
)

type widgetStore struct {
	client *firestore.Client
}

func NewWidgetStore(client *firestore.Client) *widgetStore {
	return &widgetStore{client: client}
}

func (s *widgetStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("widgets")
}

func (s *widgetStore) Create(ctx context.Context, uid string, w *models.Widget) error {
	now := time.Now()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
	_, err := s.collection(uid).Doc(w.WidgetID).Create(ctx, w)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewValidationError("widget already exists")
		}
		return errs.NewDatabaseError("create", "failed to create widget", err)
	}
	return nil
}

func (s *widgetStore) Get(ctx context.Context, uid, widgetID string) (*models.Widget, error) {
	doc, err := s.collection(uid).Doc(widgetID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("widget not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get widget", err)
	}
	var w models.Widget
	if err := doc.DataTo(&w); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse widget data", err)
	}
	return &w, nil
}

func (s *widgetStore) List(ctx context.Context, uid string) ([]*models.Widget, error) {
	iter := s.collection(uid).OrderBy("position", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	widgets := []*models.Widget{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.NewDatabaseError("read", "failed to list widgets", err)
		}
		var w models.Widget
		if err := doc.DataTo(&w); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse widget data", err)
		}
		widgets = append(widgets, &w)
	}
	return widgets, nil
}

// UpdateConfig replaces the widget configuration wholesale.
func (s *widgetStore) UpdateConfig(ctx context.Context, uid, widgetID string, cfg models.WidgetConfig) error {
	_, err := s.collection(uid).Doc(widgetID).Update(ctx, []firestore.Update{
		{Path: "config", Value: cfg},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errs.NewNotFoundError("widget not found")
		}
		return errs.NewDatabaseError("update", "failed to update widget", err)
	}
	return nil
}

func (s *widgetStore) Delete(ctx context.Context, uid, widgetID string) error {
	_, err := s.collection(uid).Doc(widgetID).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete widget", err)
	}
	return nil
}

func (s *widgetStore) Count(ctx context.Context, uid string) (int, error) {
	docs, err := s.collection(uid).Documents(ctx).GetAll()
	if err != nil {
		return 0, errs.NewDatabaseError("read", "failed to count widgets", err)
	}
	return len(docs), nil
}

type bulkPositionJob struct {
	widgetID string
	job      *firestore.BulkWriterJob
}

func (s *widgetStore) BulkUpdatePositions(ctx context.Context, uid string, positions map[string]int) error {
	log := logger.FromContext(ctx)
	bw := s.client.BulkWriter(ctx)
	coll := s.collection(uid)
	now := time.Now()

	jobs := make([]bulkPositionJob, 0, len(positions))
	for widgetID, pos := range positions {
		j, err := bw.Update(coll.Doc(widgetID), []firestore.Update{
			{Path: "position", Value: pos},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			return errs.NewDatabaseError("update", "failed to schedule position update", err)
		}
		jobs = append(jobs, bulkPositionJob{widgetID: widgetID, job: j})
	}
	bw.End()

	for _, entry := range jobs {
		if _, err := entry.job.Results(); err != nil {
			log.Error("failed to update widget position", "widget_id", entry.widgetID, "error", err)
			if status.Code(err) == codes.NotFound {
				return errs.NewNotFoundError("widget not found: " + entry.widgetID)
			}
			return errs.NewDatabaseError("update", "failed to update widget position", err)
		}
	}
	return nil
}
