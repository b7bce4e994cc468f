package irc

// Command names, these are 1-1 constant to string lookups for ease of use
// when registering handlers.
const (
	PASS    = "PASS"
	NICK    = "NICK"
	USER    = "USER"
	SERVER  = "SERVER"
	CAPAB   = "CAPAB"
	SVINFO  = "SVINFO"
	SID     = "SID"
	UID     = "UID"
	PING    = "PING"
	PONG    = "PONG"
	QUIT    = "QUIT"
	ERROR   = "ERROR"
	JOIN    = "JOIN"
	PART    = "PART"
	SJOIN   = "SJOIN"
	TOPIC   = "TOPIC"
	MODE    = "MODE"
	TMODE   = "TMODE"
	TB      = "TB"
	OPER    = "OPER"
	PRIVMSG = "PRIVMSG"
	NOTICE  = "NOTICE"
	ENCAP   = "ENCAP"
	WHOIS   = "WHOIS"
	VERSION = "VERSION"
	MOTD    = "MOTD"

	// REALHOST and LOGIN are ENCAP subcommands.
	REALHOST = "REALHOST"
	LOGIN    = "LOGIN"
)

// NumericCommand is the single registry key every three digit numeric
// command is folded onto. A line whose command is literally "###" never
// matches anything.
const NumericCommand = "###"

// Capabilities a server must announce in CAPAB before it may register.
var RequiredCapabs = []string{"QS", "EX", "IE", "EUID", "ENCAP"}
