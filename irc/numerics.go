package irc

import (
	"fmt"
	"strconv"
)

// Numeric replies used by the server.
const (
	RPL_WELCOME           = 1
	RPL_YOURHOST          = 2
	RPL_UMODEIS           = 221
	RPL_WHOISUSER         = 311
	RPL_WHOISSERVER       = 312
	RPL_WHOISOPERATOR     = 313
	RPL_ENDOFWHOIS        = 318
	RPL_WHOISCHANNELS     = 319
	RPL_CHANNELMODEIS     = 324
	RPL_WHOISLOGGEDIN     = 330
	RPL_TOPIC             = 332
	RPL_INVITELIST        = 346
	RPL_ENDOFINVITELIST   = 347
	RPL_EXCEPTLIST        = 348
	RPL_ENDOFEXCEPTLIST   = 349
	RPL_VERSION           = 351
	RPL_BANLIST           = 367
	RPL_ENDOFBANLIST      = 368
	RPL_MOTD              = 372
	RPL_MOTDSTART         = 375
	RPL_ENDOFMOTD         = 376
	RPL_YOUREOPER         = 381
	ERR_NOSUCHNICK        = 401
	ERR_NOSUCHSERVER      = 402
	ERR_NOSUCHCHANNEL     = 403
	ERR_CANNOTSENDTOCHAN  = 404
	ERR_UNKNOWNCOMMAND    = 421
	ERR_NOMOTD            = 422
	ERR_NONICKNAMEGIVEN   = 431
	ERR_ERRONEUSNICKNAME  = 432
	ERR_NICKNAMEINUSE     = 433
	ERR_USERNOTINCHANNEL  = 441
	ERR_NOTONCHANNEL      = 442
	ERR_NOTREGISTERED     = 451
	ERR_NEEDMOREPARAMS    = 461
	ERR_ALREADYREGISTERED = 462
	ERR_PASSWDMISMATCH    = 464
	ERR_LINKCHANNEL       = 470
	ERR_CHANNELISFULL     = 471
	ERR_UNKNOWNMODE       = 472
	ERR_INVITEONLYCHAN    = 473
	ERR_BANNEDFROMCHAN    = 474
	ERR_BADCHANNELKEY     = 475
	ERR_BANLISTFULL       = 478
	ERR_NOPRIVILEGES      = 481
	ERR_CHANOPRIVSNEEDED  = 482
	ERR_NOOPERHOST        = 491
	ERR_UMODEUNKNOWNFLAG  = 501
	ERR_USERSDONTMATCH    = 502
	RPL_QUIETLIST         = 728
	RPL_ENDOFQUIETLIST    = 729
)

// numericFormats is the text following the target of each numeric.
var numericFormats = map[int]string{
	RPL_WELCOME:           ":Welcome to the Internet Relay Network %s",
	RPL_YOURHOST:          ":Your host is %s, running version %s",
	RPL_UMODEIS:           "%s",
	RPL_WHOISUSER:         "%s %s %s * :%s",
	RPL_WHOISSERVER:       "%s %s :%s",
	RPL_WHOISOPERATOR:     "%s :is %s",
	RPL_ENDOFWHOIS:        "%s :End of /WHOIS list.",
	RPL_WHOISCHANNELS:     "%s :%s",
	RPL_WHOISLOGGEDIN:     "%s %s :is logged in as",
	RPL_VERSION:           "%s %s :%s",
	RPL_MOTD:              ":- %s",
	RPL_MOTDSTART:         ":- %s Message of the Day -",
	RPL_ENDOFMOTD:         ":End of /MOTD command.",
	ERR_NOMOTD:            ":MOTD File is missing",
	RPL_CHANNELMODEIS:     "%s %s",
	RPL_TOPIC:             "%s :%s",
	RPL_INVITELIST:        "%s %s %s %d",
	RPL_ENDOFINVITELIST:   "%s :End of Channel Invite List",
	RPL_EXCEPTLIST:        "%s %s %s %d",
	RPL_ENDOFEXCEPTLIST:   "%s :End of Channel Exception List",
	RPL_BANLIST:           "%s %s %s %d",
	RPL_ENDOFBANLIST:      "%s :End of Channel Ban List",
	RPL_YOUREOPER:         ":You are now an IRC operator",
	ERR_NOSUCHNICK:        "%s :No such nick/channel",
	ERR_NOSUCHSERVER:      "%s :No such server",
	ERR_NOSUCHCHANNEL:     "%s :No such channel",
	ERR_CANNOTSENDTOCHAN:  "%s :Cannot send to channel",
	ERR_UNKNOWNCOMMAND:    "%s :Unknown command",
	ERR_NONICKNAMEGIVEN:   ":No nickname given",
	ERR_ERRONEUSNICKNAME:  "%s :Erroneous nickname",
	ERR_NICKNAMEINUSE:     "%s :Nickname is already in use",
	ERR_USERNOTINCHANNEL:  "%s %s :They aren't on that channel",
	ERR_NOTONCHANNEL:      "%s :You're not on that channel",
	ERR_NOTREGISTERED:     ":You have not registered",
	ERR_NEEDMOREPARAMS:    "%s :Not enough parameters",
	ERR_ALREADYREGISTERED: ":You may not reregister",
	ERR_PASSWDMISMATCH:    ":Password incorrect",
	ERR_LINKCHANNEL:       "%s %s :Forwarding to another channel",
	ERR_CHANNELISFULL:     "%s :Cannot join channel (+l)",
	ERR_UNKNOWNMODE:       "%c :is unknown mode char to me",
	ERR_INVITEONLYCHAN:    "%s :Cannot join channel (+i)",
	ERR_BANNEDFROMCHAN:    "%s :Cannot join channel (+b)",
	ERR_BADCHANNELKEY:     "%s :Cannot join channel (+k)",
	ERR_BANLISTFULL:       "%s %c :Channel list is full",
	ERR_NOPRIVILEGES:      ":Permission Denied - You're not an IRC operator",
	ERR_CHANOPRIVSNEEDED:  "%s :You're not channel operator",
	ERR_NOOPERHOST:        ":No O-lines for your host",
	ERR_UMODEUNKNOWNFLAG:  ":Unknown MODE flag",
	ERR_USERSDONTMATCH:    ":Can't change mode for other users",
	RPL_QUIETLIST:         "%s q %s %s %d",
	RPL_ENDOFQUIETLIST:    "%s q :End of Channel Quiet List",
}

// Numeric formats a numeric reply sent by server to target. An empty target
// is written as "*", which is what unregistered connections are called.
func Numeric(server, target string, num int, args ...interface{}) string {
	if len(target) == 0 {
		target = "*"
	}

	code := strconv.Itoa(num)
	for len(code) < 3 {
		code = "0" + code
	}

	format, ok := numericFormats[num]
	if !ok {
		return fmt.Sprintf(":%s %s %s", server, code, target)
	}
	return fmt.Sprintf(":%s %s %s %s", server, code, target, fmt.Sprintf(format, args...))
}
