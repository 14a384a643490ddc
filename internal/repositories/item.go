package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// ItemRepository implements [models.Repository] for [models.Item] persistence.
//
// Items are the local catalog cache of engageable content; their counter
// columns hold the last authoritative values read from the counter service.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new [ItemRepository] with the given database connection
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Create inserts a new item into the database with generated ID and sequence.
// If the item already carries an ID (a remote-assigned id), it is kept.
func (r *ItemRepository) Create(item *models.Item) error {
	sequence, err := NextSequence(r.db, "items")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if item.ID() == "" {
		item.SetID(shared.GenerateID())
	}

	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO items (id, sequence, title, like_count, viewer_has_liked, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		item.ID(),
		sequence,
		item.Title(),
		item.LikeCount(),
		item.ViewerHasLiked(),
		item.CreatedAt(),
		item.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	return nil
}

// Get retrieves an item by ID, excluding soft-deleted items
func (r *ItemRepository) Get(id string) (*models.Item, error) {
	query := `
		SELECT id, sequence, title, like_count, viewer_has_liked, created_at, updated_at, deleted_at
		FROM items
		WHERE id = ? AND deleted_at IS NULL
	`

	item, err := scanItem(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item: %w", err)
	}

	return item, nil
}

// Update modifies an existing item in the database
func (r *ItemRepository) Update(item *models.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	item.SetUpdatedAt(now)

	query := `
		UPDATE items
		SET title = ?, like_count = ?, viewer_has_liked = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, item.Title(), item.LikeCount(), item.ViewerHasLiked(), now, item.ID())
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item not found or already deleted: %s", item.ID())
	}

	return nil
}

// UpdateCounters overwrites an item's cached counter columns with
// authoritative values from the counter service.
func (r *ItemRepository) UpdateCounters(id string, likeCount int, viewerHasLiked bool) error {
	if likeCount < 0 {
		likeCount = 0
	}

	query := `
		UPDATE items
		SET like_count = ?, viewer_has_liked = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, likeCount, viewerHasLiked, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update item counters: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrItemNotFound, id)
	}

	return nil
}

// Delete soft-deletes an item by ID
func (r *ItemRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE items
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all items matching the given criteria, excluding soft-deleted items
func (r *ItemRepository) List(criteria map[string]any) ([]*models.Item, error) {
	query := `
		SELECT id, sequence, title, like_count, viewer_has_liked, created_at, updated_at, deleted_at
		FROM items
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if liked, ok := criteria["viewer_has_liked"].(bool); ok {
		query += " AND viewer_has_liked = ?"
		args = append(args, liked)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// scanItem builds a [models.Item] from a row scan function.
func scanItem(scan func(dest ...any) error) (*models.Item, error) {
	var (
		id             string
		sequence       int
		title          string
		likeCount      int
		viewerHasLiked bool
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	if err := scan(&id, &sequence, &title, &likeCount, &viewerHasLiked, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	item := models.NewItem(sequence, title)
	item.SetID(id)
	item.SetLikeCount(likeCount)
	item.SetViewerHasLiked(viewerHasLiked)
	item.SetCreatedAt(createdAt)
	item.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		item.SetDeletedAt(&deletedAt.Time)
	}

	return item, nil
}
