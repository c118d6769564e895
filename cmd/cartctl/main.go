// cartctl manages a cart kept in a local directory.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go-storefront/cart"
	"go-storefront/storage"
	"go-storefront/utils"
)

const (
	cartKey      = "cart"
	closeTimeout = 10 * time.Second
)

func main() {
	logger, err := utils.NewLogger(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := newApp(logger).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(logger *zap.Logger) *cli.App {
	return &cli.App{
		Name:  "cartctl",
		Usage: "manage a cart stored on disk",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "directory holding the cart record",
				Value:   ".",
				EnvVars: []string{"CART_DIR"},
			},
			&cli.StringFlag{
				Name:  "tax-rate",
				Usage: "tax rate applied to the subtotal",
				Value: cart.DefaultTaxRate.String(),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "add a product, or more of one already in the cart",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "price", Required: true},
					&cli.StringFlag{Name: "image"},
					&cli.StringFlag{Name: "category"},
					&cli.IntFlag{Name: "quantity", Value: 1},
				},
				Action: func(c *cli.Context) error {
					price, err := decimal.NewFromString(c.String("price"))
					if err != nil {
						return errors.Wrap(err, "price")
					}
					if price.IsNegative() {
						return errors.New("price must not be negative")
					}
					product := cart.Product{
						ID:       c.Int64("id"),
						Name:     c.String("name"),
						Price:    price,
						Image:    c.String("image"),
						Category: c.String("category"),
					}
					return withStore(c, logger, func(s *cart.Store) {
						s.AddToCart(product, c.Int("quantity"))
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "remove a line",
				ArgsUsage: "ID",
				Action: func(c *cli.Context) error {
					id, err := intArg(c, 0)
					if err != nil {
						return err
					}
					return withStore(c, logger, func(s *cart.Store) {
						s.RemoveFromCart(id)
					})
				},
			},
			{
				Name:      "update",
				Usage:     "set the quantity of a line; zero or less removes it",
				ArgsUsage: "ID QUANTITY",
				Action: func(c *cli.Context) error {
					id, err := intArg(c, 0)
					if err != nil {
						return err
					}
					quantity, err := intArg(c, 1)
					if err != nil {
						return err
					}
					return withStore(c, logger, func(s *cart.Store) {
						s.UpdateQuantity(id, int(quantity))
					})
				},
			},
			{
				Name:  "clear",
				Usage: "empty the cart",
				Action: func(c *cli.Context) error {
					return withStore(c, logger, func(s *cart.Store) {
						s.ClearCart()
					})
				},
			},
			{
				Name:  "show",
				Usage: "print the cart",
				Action: func(c *cli.Context) error {
					return withStore(c, logger, func(*cart.Store) {})
				},
			},
		},
	}
}

// withStore opens the cart, applies fn, prints the result and flushes the
// record before returning.
func withStore(c *cli.Context, logger *zap.Logger, fn func(*cart.Store)) error {
	rate, err := decimal.NewFromString(c.String("tax-rate"))
	if err != nil {
		return errors.Wrap(err, "tax rate")
	}
	mirror, err := storage.NewFileMirror(c.String("dir"))
	if err != nil {
		return err
	}

	reporter := &exitReporter{LogReporter: cart.NewLogReporter(logger)}
	store := cart.NewStore(mirror, cartKey,
		cart.WithTaxRate(rate),
		cart.WithLogger(logger),
		cart.WithReporter(reporter),
	)
	store.Load(c.Context)
	fn(store)

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		return err
	}
	if reporter.persistErr != nil {
		return errors.Wrap(reporter.persistErr, "save cart")
	}
	return printCart(c, store)
}

// exitReporter remembers the last persist failure so the command can exit
// non-zero.
type exitReporter struct {
	*cart.LogReporter
	persistErr error
}

func (r *exitReporter) PersistFailed(key string, err error) {
	r.LogReporter.PersistFailed(key, err)
	r.persistErr = err
}

func printCart(c *cli.Context, s *cart.Store) error {
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY\tLINE")
	for _, it := range s.Items() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", it.ID, it.Name, it.Price.StringFixed(2), it.Quantity, it.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(w, "\nitems\t%d\n", s.ItemCount())
	fmt.Fprintf(w, "subtotal\t%s\n", s.Subtotal().StringFixed(2))
	fmt.Fprintf(w, "tax\t%s\n", s.Tax().StringFixed(2))
	fmt.Fprintf(w, "total\t%s\n", s.Total().StringFixed(2))
	return w.Flush()
}

func intArg(c *cli.Context, i int) (int64, error) {
	if c.NArg() <= i {
		return 0, errors.Errorf("missing argument %d, usage: %s %s", i+1, c.Command.Name, c.Command.ArgsUsage)
	}
	n, err := strconv.ParseInt(c.Args().Get(i), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "argument %d", i+1)
	}
	return n, nil
}
