package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hitoshi/storefront/internal/model"
	"github.com/hitoshi/storefront/internal/navigation"
	"github.com/hitoshi/storefront/internal/shop"
)

// runCommand はセッションを使うサブコマンドを実行する。
// 各コマンドは対応するルートへ遷移してから操作を行い、ガードに転送された場合は中断する。
func runCommand(ctx context.Context, w io.Writer, actx *Context, cmd Command, args []string) error {
	switch cmd {
	case CommandLogin:
		return runLogin(ctx, w, actx, args)
	case CommandRegister:
		return runRegister(ctx, w, actx, args)
	case CommandLogout:
		actx.Session.Logout(ctx)
		return nil
	case CommandWhoami:
		return runWhoami(w, actx)
	case CommandCart:
		if err := visit(ctx, w, actx, "/cart"); err != nil {
			return err
		}
		cart := actx.Session.Cart()
		if cart == nil {
			cart = &model.Cart{CartItems: []model.CartItem{}}
		}
		return writeJSON(w, cart)
	case CommandCartAdd, CommandCartRemove:
		return runCartEdit(ctx, w, actx, cmd, args)
	case CommandCheckout:
		return runCheckout(ctx, w, actx, args)
	case CommandOrders:
		if err := visit(ctx, w, actx, "/orders"); err != nil {
			return err
		}
		return printResult(w, actx.Shop.FetchUserOrders(ctx))
	case CommandOrder:
		return runOrder(ctx, w, actx, args)
	case CommandGames:
		return runGames(ctx, w, actx, args)
	case CommandGame:
		return runGame(ctx, w, actx, args)
	case CommandSuggest:
		if err := visit(ctx, w, actx, "/games"); err != nil {
			return err
		}
		return printResult(w, actx.Shop.FetchSearchSuggestions(ctx, strings.Join(args, " ")))
	case CommandLibrary:
		if err := visit(ctx, w, actx, "/library"); err != nil {
			return err
		}
		owned := actx.Session.Snapshot().OwnedGames
		if owned == nil {
			owned = []model.OwnedGame{}
		}
		return writeJSON(w, owned)
	case CommandNavigate:
		return runNavigate(ctx, w, actx, args)
	default:
		return fmt.Errorf("unsupported command: %s", cmd)
	}
}

func runLogin(ctx context.Context, w io.Writer, actx *Context, args []string) error {
	fs := newFlagSet(CommandLogin, w)
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" {
		return fmt.Errorf("login requires -username and -password")
	}

	if err := visit(ctx, w, actx, "/login"); err != nil {
		return err
	}
	if !actx.Session.Login(ctx, *username, *password) {
		return fmt.Errorf("%w: %s", ErrCommandFailed, actx.Session.LastError())
	}
	return nil
}

func runRegister(ctx context.Context, w io.Writer, actx *Context, args []string) error {
	fs := newFlagSet(CommandRegister, w)
	var nu model.NewUser
	fs.StringVar(&nu.Username, "username", "", "username")
	fs.StringVar(&nu.Email, "email", "", "email address")
	fs.StringVar(&nu.Password, "password", "", "password")
	fs.StringVar(&nu.FirstName, "first-name", "", "first name")
	fs.StringVar(&nu.LastName, "last-name", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if nu.Username == "" || nu.Email == "" || nu.Password == "" {
		return fmt.Errorf("register requires -username, -email and -password")
	}

	if err := visit(ctx, w, actx, "/register"); err != nil {
		return err
	}
	if !actx.Session.CreateUser(ctx, nu) {
		return fmt.Errorf("%w: %s", ErrCommandFailed, actx.Session.LastError())
	}
	return nil
}

func runWhoami(w io.Writer, actx *Context) error {
	snap := actx.Session.Snapshot()
	if snap.Token == "" {
		fmt.Fprintln(w, "not logged in")
		return nil
	}
	if snap.User == nil {
		fmt.Fprintln(w, "logged in (user profile unavailable)")
		return nil
	}
	return writeJSON(w, snap.User)
}

func runCartEdit(ctx context.Context, w io.Writer, actx *Context, cmd Command, args []string) error {
	gameID, err := intArg(args, "game-id")
	if err != nil {
		return err
	}
	if err := visit(ctx, w, actx, "/cart"); err != nil {
		return err
	}

	if cmd == CommandCartAdd {
		return printResult(w, actx.Shop.AddItemToCart(ctx, gameID))
	}
	return printResult(w, actx.Shop.RemoveItemFromCart(ctx, gameID))
}

func runCheckout(ctx context.Context, w io.Writer, actx *Context, args []string) error {
	fs := newFlagSet(CommandCheckout, w)
	var form model.CheckoutForm
	fs.StringVar(&form.FirstName, "first-name", "", "billing first name")
	fs.StringVar(&form.LastName, "last-name", "", "billing last name")
	fs.StringVar(&form.Email, "email", "", "billing email")
	fs.StringVar(&form.Address, "address", "", "billing address")
	fs.StringVar(&form.City, "city", "", "billing city")
	fs.StringVar(&form.PostalCode, "postal-code", "", "billing postal code")
	fs.StringVar(&form.Country, "country", "", "billing country")
	fs.StringVar(&form.CardHolder, "card-holder", "", "card holder name")
	fs.StringVar(&form.CardNumber, "card-number", "", "card number")
	fs.StringVar(&form.CardExpiry, "card-expiry", "", "card expiry (MM/YY)")
	fs.StringVar(&form.CardCVC, "card-cvc", "", "card security code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := visit(ctx, w, actx, "/checkout"); err != nil {
		return err
	}
	return printResult(w, actx.Shop.CreateOrder(ctx, form))
}

func runOrder(ctx context.Context, w io.Writer, actx *Context, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return fmt.Errorf("order requires <order-id>")
	}
	orderID := args[0]

	path, err := actx.Routes.Path(navigation.RouteOrderDetails, map[string]string{"id": orderID})
	if err != nil {
		return err
	}
	if err := visit(ctx, w, actx, path); err != nil {
		return err
	}
	return printResult(w, actx.Shop.FetchOrderDetails(ctx, orderID))
}

func runGames(ctx context.Context, w io.Writer, actx *Context, args []string) error {
	fs := newFlagSet(CommandGames, w)
	var q shop.GameQuery
	var sale string
	fs.StringVar(&q.Platform, "platform", "", "platform filter")
	fs.StringVar(&q.Genre, "genre", "", "genre filter")
	fs.StringVar(&sale, "sale", "", "sale filter (true|false)")
	fs.StringVar(&q.SortBy, "sort", "", "sort key")
	fs.StringVar(&q.Search, "search", "", "search text")
	fs.IntVar(&q.Page, "page", shop.DefaultPage, "page number")
	fs.IntVar(&q.PageSize, "page-size", shop.DefaultPageSize, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if sale != "" {
		b, err := strconv.ParseBool(sale)
		if err != nil {
			return fmt.Errorf("invalid -sale value %q: %w", sale, err)
		}
		q.IsSale = &b
	}

	if err := visit(ctx, w, actx, "/games"); err != nil {
		return err
	}
	return printResult(w, actx.Shop.FetchAllGames(ctx, q))
}

func runGame(ctx context.Context, w io.Writer, actx *Context, args []string) error {
	gameID, err := intArg(args, "game-id")
	if err != nil {
		return err
	}

	path, err := actx.Routes.Path(navigation.RouteGameDetails, map[string]string{"id": strconv.Itoa(gameID)})
	if err != nil {
		return err
	}
	if err := visit(ctx, w, actx, path); err != nil {
		return err
	}
	return printResult(w, actx.Shop.FetchSpecificGame(ctx, gameID))
}

// runNavigate は任意のパスへ遷移し、ガードの判定を出力する。転送はエラーとしない。
func runNavigate(ctx context.Context, w io.Writer, actx *Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("navigate requires <path>")
	}

	v, err := actx.Router.Visit(ctx, args[0])
	if err != nil {
		var amb *navigation.AmbiguousRedirectError
		if errors.As(err, &amb) {
			for _, c := range amb.Candidates {
				fmt.Fprintf(w, "candidate %s -> %s\n", c.Action, c.Target)
			}
		}
		return err
	}

	for _, d := range v.Decisions {
		fmt.Fprintf(w, "%s -> %s\n", d.Action, d.Target)
	}
	fmt.Fprintf(w, "location: %s\n", v.Final)
	return nil
}

// visit はpathへ遷移し、ガードに転送された場合は転送先を出力してErrRedirectedを返す。
func visit(ctx context.Context, w io.Writer, actx *Context, path string) error {
	v, err := actx.Router.Visit(ctx, path)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", path, err)
	}
	if v.Redirected {
		fmt.Fprintf(w, "redirected to %s\n", v.Final)
		return fmt.Errorf("%w: %s", ErrRedirected, v.Final)
	}
	return nil
}

func newFlagSet(cmd Command, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(string(cmd), flag.ContinueOnError)
	fs.SetOutput(w)
	return fs
}

func intArg(args []string, name string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing <%s>", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid <%s> %q: %w", name, args[0], err)
	}
	return n, nil
}

func printResult[T any](w io.Writer, res model.Result[T]) error {
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrCommandFailed, res.Message)
	}
	return writeJSON(w, res.Data)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
