package models

import "strconv"

// Command names as registered with the chat platform.
const (
	CmdHostGiveaway  = "hostgiveaway"
	CmdSetPrize      = "setprize"
	CmdViewPrizes    = "viewprizes"
	CmdRemovePrize   = "removeprize"
	CmdClearPrizes   = "clearprizes"
	CmdAddRole       = "addrole"
	CmdRemoveRole    = "removerole"
	CmdViewRoles     = "viewroles"
	CmdAddLogChannel = "addlogchannel"
	CmdEnd           = "end"
)

// Caller identifies the principal invoking a command, as reported by the
// platform at dispatch time.
type Caller struct {
	ID           string
	Roles        []string
	IsSuperAdmin bool // platform-native administrator flag
}

// Args carries the named options of a command invocation.
type Args map[string]string

func (a Args) String(key string) (string, bool) {
	v, ok := a[key]
	return v, ok && v != ""
}

func (a Args) Int(key string) (int, bool) {
	v, ok := a[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Result is what the presentation layer shows the invoking caller.
// Ephemeral results are transient, self-dismissing messages.
type Result struct {
	Text      string
	Ephemeral bool
}
