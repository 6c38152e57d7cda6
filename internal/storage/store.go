package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm DB instance and provides helper methods for the
// persistent records owned by the service. Every mutating helper commits
// exactly the mutation it names.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new store helper from a gorm DB.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

// DB exposes the underlying gorm DB instance.
func (s *Store) DB() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.db
}

// ErrNotFound is returned when a record is not found.
var ErrNotFound = gorm.ErrRecordNotFound

// Instance reads a single instance by primary key.
func (s *Store) Instance(ctx context.Context, id uuid.UUID) (*Instance, error) {
	var inst Instance
	if err := s.db.WithContext(ctx).First(&inst, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

// InstanceByLLSSID reads an instance by the display-service-assigned id.
func (s *Store) InstanceByLLSSID(ctx context.Context, llssID string) (*Instance, error) {
	var inst Instance
	if err := s.db.WithContext(ctx).First(&inst, "llss_instance_id = ?", llssID).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

// SaveInstance persists the full instance row.
func (s *Store) SaveInstance(ctx context.Context, inst *Instance) error {
	return s.db.WithContext(ctx).Save(inst).Error
}

// SetScreen updates the current screen and selected game for an instance.
func (s *Store) SetScreen(ctx context.Context, id uuid.UUID, screen ScreenType, gameID *uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&Instance{}).Where("id = ?", id).
		Updates(map[string]any{"current_screen": screen, "current_game_id": gameID}).Error
}

// SetNewMatchState writes the new-match selection blob for an instance.
func (s *Store) SetNewMatchState(ctx context.Context, id uuid.UUID, blob string) error {
	return s.db.WithContext(ctx).Model(&Instance{}).Where("id = ?", id).
		Update("new_match_state", blob).Error
}

// SetLastFrame records the most recently rendered frame for an instance.
func (s *Store) SetLastFrame(ctx context.Context, id uuid.UUID, frameID uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&Instance{}).Where("id = ?", id).
		Update("last_frame_id", frameID).Error
}

// Account reads a single account by primary key.
func (s *Store) Account(ctx context.Context, id uuid.UUID) (*Account, error) {
	var acct Account
	if err := s.db.WithContext(ctx).First(&acct, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// Accounts lists all linked accounts.
func (s *Store) Accounts(ctx context.Context) ([]Account, error) {
	var accts []Account
	if err := s.db.WithContext(ctx).Order("created_at").Find(&accts).Error; err != nil {
		return nil, err
	}
	return accts, nil
}

// CreateAccount inserts a new account row.
func (s *Store) CreateAccount(ctx context.Context, acct *Account) error {
	return s.db.WithContext(ctx).Create(acct).Error
}

// TouchGamesSync records when the account's game list was last refreshed.
func (s *Store) TouchGamesSync(ctx context.Context, accountID uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).Model(&Account{}).Where("id = ?", accountID).
		Update("last_games_sync_at", at).Error
}

// Adversaries lists the account's adversaries in stable friendly-name order.
func (s *Store) Adversaries(ctx context.Context, accountID uuid.UUID) ([]Adversary, error) {
	var advs []Adversary
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("friendly_name").
		Find(&advs).Error; err != nil {
		return nil, err
	}
	return advs, nil
}

// Adversary reads a single adversary by primary key.
func (s *Store) Adversary(ctx context.Context, id uuid.UUID) (*Adversary, error) {
	var adv Adversary
	if err := s.db.WithContext(ctx).First(&adv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &adv, nil
}

// LatestAdversaryUpdate returns the newest updated_at among the account's
// adversaries, or nil when none exist.
func (s *Store) LatestAdversaryUpdate(ctx context.Context, accountID uuid.UUID) (*time.Time, error) {
	var latest *time.Time
	err := s.db.WithContext(ctx).Model(&Adversary{}).
		Where("account_id = ?", accountID).
		Select("max(updated_at)").
		Scan(&latest).Error
	if err != nil {
		return nil, err
	}
	return latest, nil
}

// UpsertAdversary inserts or refreshes an adversary keyed by account+username.
func (s *Store) UpsertAdversary(ctx context.Context, accountID uuid.UUID, username, friendly string) error {
	adv := Adversary{
		AccountID:       accountID,
		LichessUsername: username,
		FriendlyName:    friendly,
	}
	return s.db.WithContext(ctx).
		Where("account_id = ? AND lichess_username = ?", accountID, username).
		Assign(map[string]any{
			"friendly_name": friendly,
			"updated_at":    time.Now().UTC(),
		}).
		FirstOrCreate(&adv).Error
}

// Game reads a single game by primary key.
func (s *Store) Game(ctx context.Context, id uuid.UUID) (*Game, error) {
	var game Game
	if err := s.db.WithContext(ctx).First(&game, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// GameByLichessID reads a game by its remote id.
func (s *Store) GameByLichessID(ctx context.Context, lichessID string) (*Game, error) {
	var game Game
	if err := s.db.WithContext(ctx).First(&game, "lichess_game_id = ?", lichessID).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

// ActiveGames lists the account's created/started games ordered by creation time.
func (s *Store) ActiveGames(ctx context.Context, accountID uuid.UUID) ([]Game, error) {
	var games []Game
	if err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("status IN ?", []GameStatus{StatusCreated, StatusStarted}).
		Order("created_at").
		Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// CreateGame inserts a new game row, ignoring a concurrent duplicate insert.
func (s *Store) CreateGame(ctx context.Context, game *Game) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(game).Error
}

// SaveGame persists the full game row.
func (s *Store) SaveGame(ctx context.Context, game *Game) error {
	return s.db.WithContext(ctx).Save(game).Error
}

// DeleteGame untracks a game.
func (s *Store) DeleteGame(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&Game{}, "id = ?", id).Error
}

// SetMoveState writes the move-input blob for a game in a single update, so
// concurrent button presses for the same game settle last-committed-wins
// without partial writes.
func (s *Store) SetMoveState(ctx context.Context, gameID uuid.UUID, blob string) error {
	return s.db.WithContext(ctx).Model(&Game{}).Where("id = ?", gameID).
		Update("move_state", blob).Error
}

// ClearMoveState resets the move-input blob for a game.
func (s *Store) ClearMoveState(ctx context.Context, gameID uuid.UUID) error {
	return s.SetMoveState(ctx, gameID, "")
}

// RecordInput inserts an input event row.
func (s *Store) RecordInput(ctx context.Context, ev *InputEvent) error {
	return s.db.WithContext(ctx).Create(ev).Error
}

// MarkInputProcessed flags an input event as handled.
func (s *Store) MarkInputProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).Model(&InputEvent{}).Where("id = ?", id).
		Updates(map[string]any{"processed": true, "processed_at": at}).Error
}

// SaveFrame inserts a rendered frame row.
func (s *Store) SaveFrame(ctx context.Context, frame *Frame) error {
	return s.db.WithContext(ctx).Create(frame).Error
}

// MarkFrameSubmitted records the display-service frame id after submission.
func (s *Store) MarkFrameSubmitted(ctx context.Context, id uuid.UUID, llssFrameID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&Frame{}).Where("id = ?", id).
		Updates(map[string]any{"llss_frame_id": llssFrameID, "submitted_at": at}).Error
}
