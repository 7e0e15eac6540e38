package presence

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"linkpage/internal/models"
)

const (
	StatusOnline  = "online"
	StatusIdle    = "idle"
	StatusDND     = "dnd"
	StatusOffline = "offline"

	ActivityCustomStatus = 4

	SyncingText = "Syncing..."
	OfflineText = "Offline"
)

// Snapshot is the latest presence payload pushed by the relay.
type Snapshot struct {
	DiscordStatus      string       `json:"discord_status"`
	Activities         []Activity   `json:"activities"`
	ListeningToSpotify bool         `json:"listening_to_spotify"`
	DiscordUser        *DiscordUser `json:"discord_user,omitempty"`
}

type Activity struct {
	Type    int    `json:"type"`
	Name    string `json:"name"`
	State   string `json:"state,omitempty"`
	Details string `json:"details,omitempty"`
}

type DiscordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Status is what the public page shows next to the avatar.
type Status struct {
	Text  string             `json:"text"`
	Color models.StatusColor `json:"color"`
}

var colorByStatus = map[string]models.StatusColor{
	StatusOnline:  models.ColorGreen,
	StatusIdle:    models.ColorYellow,
	StatusDND:     models.ColorRed,
	StatusOffline: models.ColorGray,
}

// Aggregate resolves the displayed status. Manual mode always wins over any
// live snapshot.
func Aggregate(mode models.PresenceMode, snapshot *Snapshot, manual models.ManualStatus) Status {
	if mode == models.PresenceManual {
		return manualStatus(manual)
	}

	if snapshot == nil {
		return Status{Text: SyncingText, Color: models.ColorBlue}
	}

	coarse := strings.ToLower(strings.TrimSpace(snapshot.DiscordStatus))
	if coarse == "" || coarse == StatusOffline {
		return Status{Text: OfflineText, Color: models.ColorGray}
	}

	text := capitalize(coarse)
	if custom, ok := customStatus(snapshot.Activities); ok {
		switch {
		case custom.State != "":
			text = custom.State
		case custom.Details != "":
			text = custom.Details
		}
	}

	color, ok := colorByStatus[coarse]
	if !ok {
		color = models.ColorGray
	}

	return Status{Text: text, Color: color}
}

func manualStatus(manual models.ManualStatus) Status {
	status := Status{Text: manual.Text, Color: manual.Color}
	if status.Text == "" {
		status.Text = OfflineText
	}
	if status.Color == "" {
		status.Color = models.ColorGray
	}
	return status
}

func customStatus(activities []Activity) (Activity, bool) {
	for _, activity := range activities {
		if activity.Type == ActivityCustomStatus {
			return activity, true
		}
	}
	return Activity{}, false
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
