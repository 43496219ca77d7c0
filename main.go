package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitcoinvietnam-go/bitcoinvietnam"
	"bitcoinvietnam-go/config"
	"bitcoinvietnam-go/logger"
	"bitcoinvietnam-go/sandbox"
	"bitcoinvietnam-go/trading"
)

const usage = `usage: bitcoinvietnam [-config file] <command> [args]

commands:
  ticker                                   show the market ticker
  order <id>                               show one order
  orders [-open] [-cancelled] [key=value]  list orders with optional filters
  patch <id> [status=..] [price=..] [amount=..]
  sandbox                                  serve a local in-memory exchange
`

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logger())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.WithError(err).Error("command failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger, command string, args []string) error {
	if command == "sandbox" {
		return serveSandbox(ctx, cfg, log)
	}

	clientConfig := cfg.Client()
	clientConfig.Logger = log
	client, err := bitcoinvietnam.NewClient(clientConfig)
	if err != nil {
		return err
	}

	switch command {
	case "ticker":
		ticker, err := client.GetTicker(ctx)
		if err != nil {
			return err
		}
		return printJSON(ticker)

	case "order":
		if len(args) != 1 {
			return errors.New("order takes exactly one id")
		}
		order, err := client.GetOrder(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(order)

	case "orders":
		fs := flag.NewFlagSet("orders", flag.ContinueOnError)
		open := fs.Bool("open", true, "include open orders")
		cancelled := fs.Bool("cancelled", false, "include cancelled orders")
		if err := fs.Parse(args); err != nil {
			return err
		}
		filters, err := keyValues(fs.Args())
		if err != nil {
			return err
		}
		orders, err := client.GetOrders(ctx, *open, *cancelled, filters)
		if err != nil {
			return err
		}
		return printJSON(orders)

	case "patch":
		if len(args) < 1 {
			return errors.New("patch needs an order id")
		}
		patch, err := parsePatch(args[1:])
		if err != nil {
			return err
		}
		order, err := client.PatchOrder(ctx, args[0], patch)
		if err != nil {
			return err
		}
		return printJSON(order)
	}

	return errors.Errorf("unknown command %q", command)
}

func serveSandbox(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	if cfg.APIKey == "" {
		return bitcoinvietnam.ErrMissingAPIKey
	}

	listener, err := net.Listen("tcp", cfg.SandboxAddr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.SandboxAddr)
	}

	server := sandbox.NewSandbox(listener, cfg.APIKey, log)
	server.Book().Add(trading.Order{
		Type:     trading.OrderTypeBuy,
		Currency: "BTC",
		Price:    decimal.RequireFromString("1510000000"),
		Amount:   decimal.RequireFromString("0.05"),
	})
	server.Book().Add(trading.Order{
		Type:     trading.OrderTypeSell,
		Currency: "BTC",
		Price:    decimal.RequireFromString("1530000000"),
		Amount:   decimal.RequireFromString("0.12"),
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("sandbox shutdown")
		}
	}()

	return server.Serve(ctx)
}

func keyValues(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("expected key=value, got %q", arg)
		}
		out[key] = value
	}
	return out, nil
}

func parsePatch(args []string) (trading.OrderPatch, error) {
	var patch trading.OrderPatch

	fields, err := keyValues(args)
	if err != nil {
		return patch, err
	}

	for key, raw := range fields {
		value := raw.(string)
		switch key {
		case "status":
			patch = patch.WithStatus(trading.OrderStatus(value))
		case "price":
			price, err := decimal.NewFromString(value)
			if err != nil {
				return patch, errors.Wrapf(err, "price %q", value)
			}
			patch = patch.WithPrice(price)
		case "amount":
			amount, err := decimal.NewFromString(value)
			if err != nil {
				return patch, errors.Wrapf(err, "amount %q", value)
			}
			patch = patch.WithAmount(amount)
		default:
			return patch, errors.Errorf("unknown patch field %q", key)
		}
	}

	return patch, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
