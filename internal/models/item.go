package models

import (
	"fmt"
	"time"
)

// Item represents an engageable content item with its like counter.
//
// LikeCount holds the last authoritative value read from the counter
// service; ViewerHasLiked is the viewer's actor flag for the item.
type Item struct {
	id             string
	sequence       int
	title          string
	likeCount      int
	viewerHasLiked bool
	createdAt      time.Time
	updatedAt      time.Time
	deletedAt      *time.Time
}

// NewItem creates an Item with the given sequence number and title.
// The ID is assigned by the repository on Create.
func NewItem(sequence int, title string) *Item {
	now := time.Now()
	return &Item{
		sequence:  sequence,
		title:     title,
		createdAt: now,
		updatedAt: now,
	}
}

func (i *Item) ID() string            { return i.id }
func (i *Item) Sequence() int         { return i.sequence }
func (i *Item) Title() string         { return i.title }
func (i *Item) LikeCount() int        { return i.likeCount }
func (i *Item) ViewerHasLiked() bool  { return i.viewerHasLiked }
func (i *Item) CreatedAt() time.Time  { return i.createdAt }
func (i *Item) UpdatedAt() time.Time  { return i.updatedAt }
func (i *Item) DeletedAt() *time.Time { return i.deletedAt }

func (i *Item) SetID(id string)           { i.id = id }
func (i *Item) SetCreatedAt(t time.Time)  { i.createdAt = t }
func (i *Item) SetTitle(title string)     { i.title = title }
func (i *Item) SetUpdatedAt(t time.Time)  { i.updatedAt = t }
func (i *Item) SetDeletedAt(t *time.Time) { i.deletedAt = t }
func (i *Item) SetViewerHasLiked(v bool)  { i.viewerHasLiked = v }

// SetLikeCount overwrites the cached counter with an authoritative value.
// Negative values are clamped to zero to preserve the zero-floor invariant.
func (i *Item) SetLikeCount(count int) {
	if count < 0 {
		count = 0
	}
	i.likeCount = count
}

// Validate checks the item's data integrity.
func (i *Item) Validate() error {
	if i.title == "" {
		return fmt.Errorf("item title is required")
	}
	if i.likeCount < 0 {
		return fmt.Errorf("like count cannot be negative: %d", i.likeCount)
	}
	return nil
}
