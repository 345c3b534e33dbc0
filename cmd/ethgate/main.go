/*
HTTP gateway that turns REST requests into unsigned Ethereum transactions for
ERC-20 tokens and the DisperseCollect helper contract.

Settings come from flags or the environment; a ".env" file in the working
directory is loaded first. See "ethgate --help".
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/api"
	"github.com/purelabio/ethgate/config"
	"github.com/purelabio/ethgate/eth"
	"github.com/purelabio/ethgate/gateway"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Optional; flags and the real environment work without it.
	_ = godotenv.Load()

	app := &cli.App{
		Name:   "ethgate",
		Usage:  "REST gateway building Ethereum token and wallet transactions",
		Flags:  config.Flags(),
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(cliCtx *cli.Context) error {
	conf, err := config.FromCli(cliCtx)
	if err != nil {
		return err
	}
	loggers := conf.Loggers(os.Stdout)
	log := loggers.Root

	ctx, stop := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	trans, err := eth.Dial(conf.RpcUrl, loggers.Rpc)
	if err != nil {
		return errors.Wrap(err, "failed to connect to the RPC node")
	}
	ledger := gateway.RpcLedger{Trans: eth.WithTimeout(trans, conf.RpcTimeout)}

	chainId := conf.ChainID
	if chainId == 0 {
		chainId, err = ledger.ChainID(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to query the chain id")
		}
	}

	decimals := gateway.NewDecimalsCache(ledger, conf.DecimalsCacheTTL)
	service := gateway.NewService(ledger, conf.DisperseCollectAddress, chainId, decimals)
	metrics := api.NewMetrics(decimals)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", conf.Port),
		Handler:           api.NewHandler(service, metrics, loggers.Api),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().
			Str("addr", server.Addr).
			Uint64("chain_id", chainId).
			Str("disperse_collect", conf.DisperseCollectAddress.String()).
			Msg("listening")

		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.WithStack(err)
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.WithStack(server.Shutdown(shutdownCtx))
	})

	return group.Wait()
}
