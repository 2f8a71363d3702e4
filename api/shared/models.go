/* models.go
 * This file contain the structs and constants that are shared between sub packages: the pairings kept by the league,
 * the game events decoded from the lichess stream and the lichess status codes
 */

package shared

import (
	"strings"
	"time"
)

// GameStatus is the numeric lichess status code of a game
type GameStatus int

// Lichess game status codes
const (
	StatusCreated       GameStatus = 10
	StatusStarted       GameStatus = 20
	StatusAborted       GameStatus = 25
	StatusMate          GameStatus = 30
	StatusResign        GameStatus = 31
	StatusStalemate     GameStatus = 32
	StatusTimeout       GameStatus = 33 // claim victory / claim draw
	StatusDraw          GameStatus = 34
	StatusOutOfTime     GameStatus = 35
	StatusCheat         GameStatus = 36
	StatusNoStart       GameStatus = 37
	StatusUnknownFinish GameStatus = 38
	StatusVariantEnd    GameStatus = 60
)

// IsNormalTermination reports whether the status is one of the terminal states allowed to write a result
func (s GameStatus) IsNormalTermination() bool {
	switch s {
	case StatusMate, StatusResign, StatusOutOfTime, StatusDraw, StatusStalemate:
		return true
	}
	return false
}

func (s GameStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusStarted:
		return "started"
	case StatusAborted:
		return "aborted"
	case StatusMate:
		return "mate"
	case StatusResign:
		return "resign"
	case StatusStalemate:
		return "stalemate"
	case StatusTimeout:
		return "timeout"
	case StatusDraw:
		return "draw"
	case StatusOutOfTime:
		return "outoftime"
	case StatusCheat:
		return "cheat"
	case StatusNoStart:
		return "noStart"
	case StatusUnknownFinish:
		return "unknownFinish"
	case StatusVariantEnd:
		return "variantEnd"
	}
	return "unknown"
}

// Clock is the time control a pairing must be played with. Initial is in minutes, Increment in seconds
type Clock struct {
	Initial   int `bson:"initial" yaml:"initial" json:"initial"`
	Increment int `bson:"increment" yaml:"increment" json:"increment"`
}

// Pairing is one scheduled game of the current round as kept by heltour
type Pairing struct {
	ID       string     `bson:"id"`
	White    string     `bson:"white"`
	Black    string     `bson:"black"`
	Datetime *time.Time `bson:"datetime,omitempty"`
	Clock    Clock      `bson:"clock"`
	Rated    bool       `bson:"rated"`
	Variant  string     `bson:"variant"`
	Result   string     `bson:"result,omitempty"`
	GameLink string     `bson:"game_link,omitempty"`
	GameID   string     `bson:"game_id,omitempty"`
}

// Involves reports whether the pairing is between the two players, in either color order (case insensitive)
func (p Pairing) Involves(a, b string) bool {
	white, black := strings.ToLower(p.White), strings.ToLower(p.Black)
	a, b = strings.ToLower(a), strings.ToLower(b)
	return (white == a && black == b) || (white == b && black == a)
}

// EventClock is the clock of a game from the stream. Both values are in seconds
type EventClock struct {
	Initial   int `json:"initial"`
	Increment int `json:"increment"`
}

// EventPlayer is one side of a streamed game
type EventPlayer struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating,omitempty"`
}

// GameEvent is one record of the games-by-users stream. It is never modified after decoding
type GameEvent struct {
	ID              string      `json:"id"`
	Rated           bool        `json:"rated"`
	Variant         string      `json:"variant"`
	Speed           string      `json:"speed,omitempty"`
	CreatedAtMillis int64       `json:"createdAt"`
	Status          GameStatus  `json:"status"`
	Clock           *EventClock `json:"clock,omitempty"`
	Winner          string      `json:"winner,omitempty"`
	Players         struct {
		White EventPlayer `json:"white"`
		Black EventPlayer `json:"black"`
	} `json:"players"`
}

// CreatedAt returns the UTC creation time of the game
func (g GameEvent) CreatedAt() time.Time {
	return time.UnixMilli(g.CreatedAtMillis).UTC()
}

// White returns the white player's id
func (g GameEvent) White() string {
	return g.Players.White.UserID
}

// Black returns the black player's id
func (g GameEvent) Black() string {
	return g.Players.Black.UserID
}

// Extrema is the time window of the current round
type Extrema struct {
	Start time.Time
	End   time.Time
}

// DispositionRecord is the audit entry written for every event the engine classifies
type DispositionRecord struct {
	League      string    `bson:"league" json:"league"`
	EventID     string    `bson:"event_id" json:"event_id"`
	White       string    `bson:"white" json:"white"`
	Black       string    `bson:"black" json:"black"`
	Status      string    `bson:"status" json:"status"`
	Disposition string    `bson:"disposition" json:"disposition"`
	PairingID   string    `bson:"pairing_id,omitempty" json:"pairing_id,omitempty"`
	Warnings    []string  `bson:"warnings,omitempty" json:"warnings,omitempty"`
	ChunkID     string    `bson:"chunk_id,omitempty" json:"chunk_id,omitempty"`
	At          time.Time `bson:"at" json:"at"`
}

// Message is a chat message for a league channel
type Message struct {
	Text      string
	ChannelID string
}
