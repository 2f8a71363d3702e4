/* test_mocks_test.go
 * Contains the mock collaborators used by the engine tests
 */

package reconcile

import (
	"context"
	"strings"
	"time"

	"league-watcher/api/external"
	"league-watcher/api/shared"
)

type mockPairings struct {
	pairings []shared.Pairing
	updated  []shared.Pairing
}

func (m *mockPairings) FindPairing(white, black string) []shared.Pairing {
	var found []shared.Pairing
	for _, p := range m.pairings {
		if p.Involves(white, black) {
			found = append(found, p)
		}
	}
	return found
}

func (m *mockPairings) PairingByGameID(gameID string) (shared.Pairing, bool) {
	for _, p := range m.pairings {
		if p.GameID == gameID || (p.GameLink != "" && strings.HasSuffix(p.GameLink, "/"+gameID)) {
			return p, true
		}
	}
	return shared.Pairing{}, false
}

func (m *mockPairings) Update(pairing shared.Pairing) {
	m.updated = append(m.updated, pairing)
}

func (m *mockPairings) Mention(player string) string {
	return "<@" + player + ">"
}

type updateCall struct {
	Pairing shared.Pairing
	Update  external.PairingUpdate
}

type warningCall struct {
	White, Black string
	Reasons      []string
}

type mockRepository struct {
	updates  []updateCall
	binds    []string
	warnings []warningCall

	UpdateErr  error
	BindErr    error
	WarningErr error
}

func (m *mockRepository) UpdatePairing(ctx context.Context, pairing shared.Pairing, update external.PairingUpdate) (shared.Pairing, error) {
	m.updates = append(m.updates, updateCall{Pairing: pairing, Update: update})
	if m.UpdateErr != nil {
		return shared.Pairing{}, m.UpdateErr
	}
	return update.Apply(pairing), nil
}

func (m *mockRepository) BindGame(ctx context.Context, pairing shared.Pairing, gameID string) (shared.Pairing, error) {
	m.binds = append(m.binds, gameID)
	if m.BindErr != nil {
		return shared.Pairing{}, m.BindErr
	}
	return external.WithGameLink("https://lichess.org/" + gameID).Apply(pairing), nil
}

func (m *mockRepository) SendGameWarning(ctx context.Context, white, black string, reasons []string) error {
	m.warnings = append(m.warnings, warningCall{White: white, Black: black, Reasons: reasons})
	return m.WarningErr
}

func (m *mockRepository) sideEffects() int {
	return len(m.updates) + len(m.binds) + len(m.warnings)
}

type mockGames struct {
	winner string
	err    error
	calls  []string
}

func (m *mockGames) GetGame(ctx context.Context, gameID string) (external.GameDetail, error) {
	m.calls = append(m.calls, gameID)
	if m.err != nil {
		return external.GameDetail{}, m.err
	}
	return external.GameDetail{ID: gameID, Winner: m.winner}, nil
}

func (m *mockGames) GameIDToLink(gameID string) string {
	return "https://lichess.org/" + gameID
}

type fixedExtrema struct {
	extrema shared.Extrema
}

func (f fixedExtrema) GetRoundExtrema() shared.Extrema {
	return f.extrema
}

type mockNotifier struct {
	messages []shared.Message
}

func (m *mockNotifier) Say(msg shared.Message) {
	m.messages = append(m.messages, msg)
}

type mockLedger struct {
	records []shared.DispositionRecord
	err     error
}

func (m *mockLedger) RecordDisposition(ctx context.Context, record shared.DispositionRecord) error {
	m.records = append(m.records, record)
	return m.err
}

// roundStart is the start of the round every test game is played in
var roundStart = time.Date(2024, time.May, 13, 0, 0, 0, 0, time.UTC)

var scheduled = time.Date(2024, time.May, 15, 18, 0, 0, 0, time.UTC)
