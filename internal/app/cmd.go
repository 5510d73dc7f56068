package app

// Command はCLIのサブコマンドを表す。
type Command string

const (
	CommandHelp         Command = "help"
	CommandLogin        Command = "login"
	CommandRegister     Command = "register"
	CommandLogout       Command = "logout"
	CommandWhoami       Command = "whoami"
	CommandCart         Command = "cart"
	CommandCartAdd      Command = "cart-add"
	CommandCartRemove   Command = "cart-remove"
	CommandCheckout     Command = "checkout"
	CommandOrders       Command = "orders"
	CommandOrder        Command = "order"
	CommandGames        Command = "games"
	CommandGame         Command = "game"
	CommandSuggest      Command = "suggest"
	CommandLibrary      Command = "library"
	CommandNavigate     Command = "navigate"
	CommandMigrate      Command = "migrate"
	CommandServeMetrics Command = "serve-metrics"
)

var commands = map[string]Command{
	string(CommandHelp):         CommandHelp,
	string(CommandLogin):        CommandLogin,
	string(CommandRegister):     CommandRegister,
	string(CommandLogout):       CommandLogout,
	string(CommandWhoami):       CommandWhoami,
	string(CommandCart):         CommandCart,
	string(CommandCartAdd):      CommandCartAdd,
	string(CommandCartRemove):   CommandCartRemove,
	string(CommandCheckout):     CommandCheckout,
	string(CommandOrders):       CommandOrders,
	string(CommandOrder):        CommandOrder,
	string(CommandGames):        CommandGames,
	string(CommandGame):         CommandGame,
	string(CommandSuggest):      CommandSuggest,
	string(CommandLibrary):      CommandLibrary,
	string(CommandNavigate):     CommandNavigate,
	string(CommandMigrate):      CommandMigrate,
	string(CommandServeMetrics): CommandServeMetrics,
}

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandHelpを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandHelp
	}
	if cmd, ok := commands[args[0]]; ok {
		return cmd
	}
	return CommandHelp
}

// NeedsSession はコマンドがバックエンドとセッションを必要とするかを返す。
func (c Command) NeedsSession() bool {
	switch c {
	case CommandHelp, CommandMigrate:
		return false
	default:
		return true
	}
}

const usage = `usage: storefront <command> [flags] [args]

commands:
  login -username U -password P    log in and persist the token
  register -username U -email E -password P [-first-name F] [-last-name L]
  logout                           clear the session without contacting the backend
  whoami                           show the current user
  cart                             show the cart
  cart-add <game-id>               add a game to the cart
  cart-remove <game-id>            remove a game from the cart
  checkout [form flags]            purchase every game in the cart
  orders                           list past orders
  order <order-id>                 show an order
  games [-platform] [-genre] [-sale true|false] [-sort] [-search] [-page] [-page-size]
  game <game-id>                   show a game
  suggest <query>                  search suggestions
  library                          list owned games
  navigate <path>                  visit a route through the navigation guard
  migrate                          apply token store migrations (TOKEN_STORE=postgres)
  serve-metrics                    serve Prometheus metrics on METRICS_ADDR
`
