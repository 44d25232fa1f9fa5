package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/app"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/catalog"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/order"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/review"
)

const usage = `Usage: shop <command> [args]

Session
  login <token>              store a session token
  logout                     clear the session

Cart
  cart                       show the cart with live prices
  add <productId>            add one unit (or bump quantity)
  dec <productId>            drop one unit (removes at quantity 1)
  remove <productId>         remove the line entirely
  clear                      empty the cart

Orders
  checkout                   submit the cart as an order
  orders [page]              list your orders
  order <orderId>            show one order
  cancel <orderId>           cancel a confirmed order
  watch <orderId>            follow live status updates (Ctrl-C to stop)

Admin
  listing [term] [page]      follow the live order listing
  set-status <orderId> <status>

Wishlist & reviews
  wishlist                   list wishlist with live prices
  wish <productId>           toggle wishlist membership
  review <productId> <rating> <comment...>`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	eng, err := app.BuildEngine(app.ConfigFromEnv(), logger)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, eng, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, eng *app.Engine, command string, args []string) error {
	switch command {
	case "login":
		if len(args) != 1 {
			return fmt.Errorf("usage: shop login <token>")
		}
		if err := eng.Session.SetToken(args[0]); err != nil {
			return err
		}
		user, err := eng.User()
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", user.Email)
		return nil

	case "logout":
		return eng.Session.Reset()

	case "cart":
		return showCart(ctx, eng)

	case "add":
		return withProductID(args, eng.Cart.Add)

	case "dec":
		return withProductID(args, eng.Cart.Decrease)

	case "remove":
		return withProductID(args, eng.Cart.Remove)

	case "clear":
		return eng.Cart.Clear()

	case "checkout":
		user, err := eng.User()
		if err != nil {
			return err
		}
		o, err := eng.Orders.Submit(ctx, user)
		if err != nil {
			return err
		}
		fmt.Printf("Order %s confirmed, total $%s\n", o.ID, o.Total.StringFixed(2))
		return nil

	case "orders":
		page := 1
		if len(args) > 0 {
			p, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("page must be a number: %w", err)
			}
			page = p
		}
		res, err := eng.Orders.List(ctx, page)
		if err != nil {
			return err
		}
		for _, o := range res.Orders {
			printOrder(o)
		}
		if res.HasNextPage {
			fmt.Printf("(more: shop orders %d)\n", page+1)
		}
		return nil

	case "order":
		if len(args) != 1 {
			return fmt.Errorf("usage: shop order <orderId>")
		}
		o, err := eng.Orders.Detail(ctx, args[0])
		if err != nil {
			return err
		}
		printOrder(o)
		return nil

	case "cancel":
		if len(args) != 1 {
			return fmt.Errorf("usage: shop cancel <orderId>")
		}
		if err := eng.Orders.Cancel(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Order cancelled")
		return nil

	case "watch":
		if len(args) != 1 {
			return fmt.Errorf("usage: shop watch <orderId>")
		}
		return watchOrder(ctx, eng, args[0])

	case "listing":
		return watchListing(ctx, eng, args)

	case "set-status":
		if len(args) != 2 {
			return fmt.Errorf("usage: shop set-status <orderId> <status>")
		}
		if err := eng.Orders.UpdateStatus(ctx, args[0], order.Status(args[1])); err != nil {
			return err
		}
		fmt.Println("Status updated")
		return nil

	case "wishlist":
		items, err := eng.Wishlist.List(ctx)
		if err != nil {
			return err
		}
		printItems(items)
		return nil

	case "wish":
		if len(args) != 1 {
			return fmt.Errorf("usage: shop wish <productId>")
		}
		user, err := eng.User()
		if err != nil {
			return err
		}
		added, err := eng.Wishlist.Toggle(ctx, user.ID, args[0])
		if err != nil {
			return err
		}
		if added {
			fmt.Println("Added to wishlist")
		} else {
			fmt.Println("Removed from wishlist")
		}
		return nil

	case "review":
		if len(args) < 3 {
			return fmt.Errorf("usage: shop review <productId> <rating> <comment...>")
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be a number: %w", err)
		}
		user, uerr := eng.User()
		if uerr != nil {
			return uerr
		}
		return eng.Reviews.Add(ctx, review.Review{
			ProductID: args[0],
			UserID:    user.ID,
			Name:      user.Email,
			Rating:    rating,
			Comment:   strings.Join(args[2:], " "),
		})

	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func withProductID(args []string, fn func(string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one product id")
	}
	return fn(args[0])
}

func showCart(ctx context.Context, eng *app.Engine) error {
	entries := eng.Cart.Entries()
	if len(entries) == 0 {
		fmt.Println("Cart is empty")
		return nil
	}
	items, err := eng.Catalog.Resolve(ctx, entries)
	if err != nil {
		// Partial failures keep their slot; only a wholesale failure aborts.
		if items == nil {
			return err
		}
		log.Printf("Some items could not be priced: %v", err)
	}
	printItems(items)
	fmt.Printf("Total: $%s\n", catalog.Total(items).StringFixed(2))
	return nil
}

func printItems(items []catalog.ResolvedItem) {
	for _, it := range items {
		if it.Err != nil {
			fmt.Printf("  %-8s (unavailable: %v)\n", it.ID, it.Err)
			continue
		}
		fmt.Printf("  %-8s %-28s x%d  $%s\n",
			it.ID, it.Title, it.Quantity, it.LineTotal().StringFixed(2))
	}
}

func printOrder(o order.Order) {
	fmt.Printf("%s  %-10s  $%s  %s  (%d items)\n",
		o.ID, o.Status, o.Total.StringFixed(2), o.Date.Format("2006-01-02 15:04"), len(o.Items))
}

func watchOrder(ctx context.Context, eng *app.Engine, orderID string) error {
	user, err := eng.User()
	if err != nil {
		return err
	}
	updates, err := eng.Feed.WatchOrder(ctx, user.ID, orderID)
	if err != nil {
		return err
	}
	fmt.Printf("Watching order %s (Ctrl-C to stop)\n", orderID)
	for o := range updates {
		printOrder(o)
	}
	return nil
}

func watchListing(ctx context.Context, eng *app.Engine, args []string) error {
	term := ""
	page := 1
	if len(args) > 0 {
		term = args[0]
	}
	if len(args) > 1 {
		p, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("page must be a number: %w", err)
		}
		page = p
	}

	listing, err := eng.Feed.WatchListing(ctx)
	if err != nil {
		return err
	}
	if err := listing.SetQuery(term, page); err != nil {
		return err
	}

	fmt.Println("Watching order listing (Ctrl-C to stop)")
	for pg := range listing.Updates() {
		fmt.Printf("-- page %d of %d --\n", pg.Query.Page, pg.TotalPages)
		for _, o := range pg.Orders {
			printOrder(o)
		}
	}
	return nil
}
