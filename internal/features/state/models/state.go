package models

// BotState is the persisted state document. It is read once at startup and
// rewritten wholesale after every mutating operation; there are no partial
// writes and no schema versioning.
type BotState struct {
	Prizes       []string `json:"prizes"`
	AllowedRoles []string `json:"allowedRoles"`
	EmbedColor   string   `json:"embedColor"`
	LogChannelID string   `json:"logChannelId,omitempty"`
}

// DefaultEmbedColor is applied when a loaded document carries no color.
const DefaultEmbedColor = "#FFD700"

// Normalized returns the state with defaults filled in, never nil slices.
func (s BotState) Normalized() BotState {
	if s.Prizes == nil {
		s.Prizes = []string{}
	}
	if s.AllowedRoles == nil {
		s.AllowedRoles = []string{}
	}
	if s.EmbedColor == "" {
		s.EmbedColor = DefaultEmbedColor
	}
	return s
}

// Clone returns a deep copy so mutations never leak into shared snapshots.
func (s BotState) Clone() BotState {
	c := s
	c.Prizes = make([]string, len(s.Prizes))
	copy(c.Prizes, s.Prizes)
	c.AllowedRoles = make([]string, len(s.AllowedRoles))
	copy(c.AllowedRoles, s.AllowedRoles)
	return c
}
