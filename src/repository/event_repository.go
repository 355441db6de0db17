package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"orderplanner/src/database"
	"orderplanner/src/model"
)

// defaultSearchLimit caps event listings when the caller gives no limit.
const defaultSearchLimit = 100

// EventRepository handles read/write operations for the decision journal.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new repository instance using the main read/write database.
func NewEventRepository() *EventRepository {
	logger.WithField("component", "EventRepository").
		Info("Creating new EventRepository with MainDB")

	return &EventRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *EventRepository) WithDB(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create appends one decision event to the journal. The given event is
// updated with the generated ID and timestamp.
func (r *EventRepository) Create(ctx context.Context, event *model.DecisionEvent) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "EventRepository",
		"op":     "Create",
		"symbol": event.Symbol,
		"stage":  event.Stage,
	}).Debug("Appending decision event")

	err := r.db.WithContext(ctx).Create(event).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "EventRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to append decision event")

		return err
	}
	return nil
}

// EventSearchOptions filters a journal listing. Zero-valued fields are
// ignored.
type EventSearchOptions struct {
	Symbol string
	Stage  string
	Limit  int
	Offset int
}

// Search lists journal events, newest first.
func (r *EventRepository) Search(ctx context.Context, opts EventSearchOptions) ([]model.DecisionEvent, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	query := r.db.WithContext(ctx).Model(&model.DecisionEvent{})
	if opts.Symbol != "" {
		query = query.Where("symbol = ?", opts.Symbol)
	}
	if opts.Stage != "" {
		query = query.Where("stage = ?", opts.Stage)
	}

	var events []model.DecisionEvent
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(opts.Offset).
		Find(&events).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "EventRepository",
			"op":   "Search",
		}).WithError(err).Error("Failed to search decision events")

		return nil, err
	}
	return events, nil
}

// FindByID fetches a single journal event by its primary ID.
// Returns (nil, nil) if the event is not found.
func (r *EventRepository) FindByID(ctx context.Context, id uint) (*model.DecisionEvent, error) {
	var event model.DecisionEvent

	err := r.db.WithContext(ctx).First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "EventRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch decision event")

		return nil, err
	}
	return &event, nil
}
