package irc

// irc commands which may be sent or received by a client.
const (
	CmdError   = "ERROR"   // Report a serious or fatal error to a peer.
	CmdInvite  = "INVITE"  // Invite a user to a channel.
	CmdJoin    = "JOIN"    // Join a channel.
	CmdKick    = "KICK"    // Request the forced removal of a user from a channel.
	CmdMode    = "MODE"    // User or channel mode.
	CmdNames   = "NAMES"   // List all visible nicknames.
	CmdNick    = "NICK"    // ":<newnick>" Define a nickname.
	CmdNotice  = "NOTICE"  // Send a notice message to specific users or channels.
	CmdPart    = "PART"    // Leave a channel.
	CmdPass    = "PASS"    // Set a connection password.
	CmdPing    = "PING"    // Test for the presence of an active client or server.
	CmdPong    = "PONG"    // Reply to a PING message.
	CmdPrivmsg = "PRIVMSG" // Send private messages between users, as well as to send messages to channels.
	CmdQuit    = "QUIT"    // Terminate the client session.
	CmdTopic   = "TOPIC"   // Change or view the topic of a channel.
	CmdUser    = "USER"    // Specify the username, hostname and realname of a new user.
	CmdWho     = "WHO"     // List a set of users.
	CmdWhoIs   = "WHOIS"   // Get information about a specific user.
)

// irc connection reply codes.
const (
	RplWelcome  = "001" // "Welcome to the Internet Relay Network <nick>!<user>@<host>"
	RplYourHost = "002" // "Your host is <servername>, running version <ver>"
	RplCreated  = "003" // "This server was created <date>"
	RplMyInfo   = "004" // "<servername> <version> <available user modes> <available channel modes>"
	RplISupport = "005" // http://www.irc.org/tech_docs/005.html
)

// irc command reply codes.
const (
	RplAway       = "301" // "<nick> :<away message>"
	RplTopic      = "332" // "<channel> :<topic>"
	RplNamReply   = "353" // "( "=" / "*" / "@" ) <channel>:[ "@" / "+" ] <nick> *( " " ["@" / "+" ] <nick> )"
	RplEndOfNames = "366" // "<channel> :End of NAMES list"
	RplMOTD       = "372" // ":- <text>"
	RplMOTDStart  = "375" // ":- <server> Message of the day - "
	RplEndOfMOTD  = "376" // ":End of MOTD command"
)

// irc error reply codes.
const (
	RplErrNoSuchNick        = "401" // "<nickname> :No such nick/channel"
	RplErrNoSuchChannel     = "403" // "<channel name> :No such channel"
	RplErrCannotSendToChan  = "404" // "<channel name> :Cannot send to channel"
	RplErrUnknownCommand    = "421" // "<command> :Unknown command"
	RplErrNoNicknameGiven   = "431" // ":No nickname given"
	RplErrErroneousNickname = "432" // "<client> <nick> :Erroneus nickname"
	RplErrNicknameInUse     = "433" // "<client> <nick> :Nickname is already in use"
	RplErrNickCollision     = "436" // "<nick> :Nickname collision KILL from <user>@<host>"
	RplErrNotOnChannel      = "442" // "<channel> :You're not on that channel"
	RplErrNotRegistered     = "451" // ":You have not registered"
	RplErrNeedMoreParams    = "461" // "<command> :Not enough parameters"
	RplErrAlreadyRegistered = "462" // ":Unauthorized command (already registered)"
	RplErrPasswdMismatch    = "464" // ":Password incorrect"
	RplErrYoureBannedCreep  = "465" // ":You are banned from this server"
	RplErrChannelIsFull     = "471" // "<channel> :Cannot join channel (+l)"
	RplErrUnknownMode       = "472" // "<char> :is unknown mode char to me for <channel>"
	RplErrInviteOnlyChan    = "473" // "<channel> :Cannot join channel (+i)"
	RplErrBannedFromChan    = "474" // "<channel> :Cannot join channel (+b)"
	RplErrBadChannelKey     = "475" // "<channel> :Cannot join channel (+k)"
)
