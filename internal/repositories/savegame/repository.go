// Package savegame provides the storage interface for loadout save records
package savegame

//go:generate mockgen -destination=mock/mock_repository.go -package=savegamemock github.com/KirkDiggler/rpg-loadout/internal/repositories/savegame Repository

import (
	"context"

	"github.com/KirkDiggler/rpg-loadout/internal/errors"
	"github.com/KirkDiggler/rpg-loadout/internal/savegame"
)

// Repository defines the storage interface for save records
type Repository interface {
	// Get retrieves the save record of a player
	// Returns errors.InvalidArgument for an empty player ID
	// Returns errors.NotFound if the player has no save
	// Returns errors.Internal for storage failures
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Save writes the save record of a player, replacing any previous one
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.Internal for storage failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Delete removes the save record of a player
	// Returns errors.NotFound if the player has no save
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns every player with a save, sorted
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// GetInput defines the request for retrieving a save
type GetInput struct {
	PlayerID string
}

// GetOutput defines the response for retrieving a save
type GetOutput struct {
	Record *savegame.Record
}

// SaveInput defines the request for writing a save
type SaveInput struct {
	PlayerID string
	Record   *savegame.Record
}

// SaveOutput defines the response for writing a save
type SaveOutput struct {
	// Record is what was stored, SavedAt included
	Record *savegame.Record
}

// DeleteInput defines the request for deleting a save
type DeleteInput struct {
	PlayerID string
}

// DeleteOutput defines the response for deleting a save
type DeleteOutput struct{}

// ListInput defines the request for listing saves
type ListInput struct{}

// ListOutput defines the response for listing saves
type ListOutput struct {
	PlayerIDs []string
}

const (
	errPlayerIDEmpty = "player ID cannot be empty"
	errRecordNil     = "record cannot be nil"
)

// prepare validates a save and returns the record to store
func prepare(input SaveInput, savedAt int64) (*savegame.Record, error) {
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}
	if input.Record == nil {
		return nil, errors.InvalidArgument(errRecordNil)
	}

	rec := input.Record.Clone()
	if rec.UserID == "" {
		rec.UserID = input.PlayerID
	}
	rec.SavedAt = savedAt
	return rec, nil
}
