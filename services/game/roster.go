package game

import (
	"fmt"
	"strings"
)

// RosterSlot binds a username to the display-name snapshot taken when the
// session is created. The snapshot is what gets rendered for the rest of the
// match, even if the player renames themselves afterwards.
type RosterSlot struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Roster is the four player slots of a session: team1 A/B, team2 A/B.
type Roster struct {
	Team1Player1 RosterSlot `json:"team1_player1"`
	Team1Player2 RosterSlot `json:"team1_player2"`
	Team2Player1 RosterSlot `json:"team2_player1"`
	Team2Player2 RosterSlot `json:"team2_player2"`
}

// Slots returns the four slots in fixed order.
func (r *Roster) Slots() [4]RosterSlot {
	return [4]RosterSlot{r.Team1Player1, r.Team1Player2, r.Team2Player1, r.Team2Player2}
}

// Usernames returns the four slot usernames in fixed order.
func (r *Roster) Usernames() [4]string {
	slots := r.Slots()
	return [4]string{slots[0].Username, slots[1].Username, slots[2].Username, slots[3].Username}
}

// Validate enforces the roster invariant before a create is attempted:
// four non-empty usernames, all distinct. Duplicate placement across teams
// is rejected here, not left to the UI.
func (r *Roster) Validate() error {
	seen := make(map[string]bool, 4)
	for _, slot := range r.Slots() {
		username := strings.TrimSpace(slot.Username)
		if username == "" {
			return fmt.Errorf("%w: empty roster slot", ErrValidation)
		}
		if seen[username] {
			return fmt.Errorf("%w: player %s occupies more than one slot", ErrValidation, username)
		}
		seen[username] = true
	}
	return nil
}
