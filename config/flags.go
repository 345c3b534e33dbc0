package config

import (
	"time"

	"github.com/urfave/cli/v2"
)

var (
	RpcUrlFlag = cli.StringFlag{
		Name:     "rpc-url",
		Usage:    "JSON-RPC endpoint of the Ethereum node (http, https, ws or wss)",
		EnvVars:  []string{"RPC_PROVIDER_URL"},
		Required: true,
	}

	DisperseCollectAddressFlag = cli.StringFlag{
		Name:     "disperse-collect-address",
		Usage:    "Address of the deployed DisperseCollect helper contract",
		EnvVars:  []string{"DISPERSE_COLLECT_CONTRACT_ADDRESS"},
		Required: true,
	}

	PortFlag = cli.UintFlag{
		Name:    "port",
		Usage:   "HTTP port to listen on",
		EnvVars: []string{"PORT"},
		Value:   8000,
	}

	ChainIdFlag = cli.Uint64Flag{
		Name:    "chain-id",
		Usage:   "Chain id used for signing; 0 asks the node on startup",
		EnvVars: []string{"CHAIN_ID"},
	}

	RpcTimeoutFlag = cli.DurationFlag{
		Name:    "rpc-timeout",
		Usage:   "Timeout of a single JSON-RPC request over HTTP",
		EnvVars: []string{"RPC_TIMEOUT"},
		Value:   30 * time.Second,
	}

	DecimalsCacheTtlFlag = cli.DurationFlag{
		Name:    "decimals-cache-ttl",
		Usage:   "How long token decimals are cached; 0 disables the cache",
		EnvVars: []string{"DECIMALS_CACHE_TTL"},
		Value:   time.Hour,
	}

	LogLevelFlag = cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level [trace|debug|info|warn|error]",
		EnvVars: []string{"LOG_LEVEL"},
		Value:   "info",
	}

	LogFormatFlag = cli.StringFlag{
		Name:    "log-format",
		Usage:   "Log format [console|json]",
		EnvVars: []string{"LOG_FORMAT"},
		Value:   "console",
	}
)

/*
All flags read by "FromCli". Returns fresh copies on every call: flags record
whether they were set, so an app must not share them with another.
*/
func Flags() []cli.Flag {
	return []cli.Flag{
		ref(RpcUrlFlag),
		ref(DisperseCollectAddressFlag),
		ref(PortFlag),
		ref(ChainIdFlag),
		ref(RpcTimeoutFlag),
		ref(DecimalsCacheTtlFlag),
		ref(LogLevelFlag),
		ref(LogFormatFlag),
	}
}

func ref[T any](val T) *T { return &val }
