package storage

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus is the lifecycle state of a tracked Lichess game.
type GameStatus string

const (
	StatusCreated       GameStatus = "created"
	StatusStarted       GameStatus = "started"
	StatusAborted       GameStatus = "aborted"
	StatusMate          GameStatus = "mate"
	StatusResign        GameStatus = "resign"
	StatusStalemate     GameStatus = "stalemate"
	StatusTimeout       GameStatus = "timeout"
	StatusDraw          GameStatus = "draw"
	StatusOutOfTime     GameStatus = "outoftime"
	StatusCheat         GameStatus = "cheat"
	StatusNoStart       GameStatus = "noStart"
	StatusUnknownFinish GameStatus = "unknownFinish"
	StatusVariantEnd    GameStatus = "variantEnd"
)

// Terminal reports whether the status can never transition back to started.
func (s GameStatus) Terminal() bool {
	switch s {
	case StatusCreated, StatusStarted:
		return false
	}
	return true
}

// ScreenType identifies which logical screen an instance is showing.
type ScreenType string

const (
	ScreenSetup    ScreenType = "setup"
	ScreenNewMatch ScreenType = "new_match"
	ScreenPlay     ScreenType = "play"
)

// StartFEN is the standard initial chess position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Account is a Lichess account linked to this service.
type Account struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username        string    `gorm:"uniqueIndex"`
	APIToken        string
	Enabled         bool `gorm:"default:true"`
	Default         bool
	LastGamesSyncAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Games           []Game `gorm:"foreignKey:AccountID"`
}

// Adversary is a followed player that can be challenged from the new-match screen.
type Adversary struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID       uuid.UUID `gorm:"type:uuid;index"`
	LichessUsername string
	FriendlyName    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Game mirrors a remote Lichess game.
type Game struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	LichessGameID    string    `gorm:"uniqueIndex"`
	AccountID        uuid.UUID `gorm:"type:uuid;index"`
	PlayerColor      string
	OpponentUsername string
	Status           GameStatus `gorm:"default:created;index"`
	IsMyTurn         bool
	FEN              string `gorm:"default:'rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1'"`
	InitialFEN       string
	LastMove         string
	Moves            string // space-separated UCI moves
	MoveState        string // opaque JSON blob owned by the input processor
	RawJSON          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Instance is one physical display device registered with the screen service.
type Instance struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	LLSSInstanceID string    `gorm:"uniqueIndex"`
	Name           string
	InstanceType   string `gorm:"default:chess"`

	CallbackFrames string
	CallbackInputs string
	CallbackNotify string

	DisplayWidth    int `gorm:"default:800"`
	DisplayHeight   int `gorm:"default:480"`
	DisplayBitDepth int `gorm:"default:1"`

	Initialized        bool
	Ready              bool
	NeedsConfiguration bool `gorm:"default:true"`
	ConfigurationURL   string

	CurrentScreen   ScreenType `gorm:"default:setup"`
	CurrentGameID   *uuid.UUID `gorm:"type:uuid"`
	LinkedAccountID *uuid.UUID `gorm:"type:uuid"`

	NewMatchState string // opaque JSON blob owned by the new-match selector
	LastFrameID   *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InputEvent records a button event forwarded by the display service.
type InputEvent struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Button         string
	EventType      string
	EventTimestamp time.Time
	Processed      bool
	ProcessedAt    *time.Time
	CreatedAt      time.Time
}

// Frame is a rendered screen image kept for submission to the display service.
type Frame struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	GameID      *uuid.UUID `gorm:"type:uuid;index"`
	ScreenType  ScreenType
	ImageData   []byte
	ImageHash   string `gorm:"size:64"`
	Width       int
	Height      int
	LLSSFrameID string
	SubmittedAt *time.Time
	CreatedAt   time.Time
}
