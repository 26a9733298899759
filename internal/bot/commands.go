package bot

// Command constants for Telegram bot commands.
const (
	CommandStart    = "/start"
	CommandTasks    = "/tasks"
	CommandEvents   = "/events"
	CommandHabits   = "/habits"
	CommandStats    = "/stats"
	CommandSettings = "/settings"
	CommandHelp     = "/help"
)
