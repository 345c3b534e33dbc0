package config

import (
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/purelabio/ethgate/eth"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

type LogFormat string

const (
	LogFormatConsole LogFormat = "console"
	LogFormatJson    LogFormat = "json"
)

/*
Settings of the gateway process. Built once on startup by "FromCli" and never
modified afterwards.
*/
type Config struct {
	RpcUrl                 string
	DisperseCollectAddress eth.Address
	Port                   uint
	ChainID                uint64
	RpcTimeout             time.Duration
	DecimalsCacheTTL       time.Duration
	LogLevel               zerolog.Level
	LogFormat              LogFormat
}

// Reads and validates the flags listed in "Flags".
func FromCli(ctx *cli.Context) (Config, error) {
	var out Config
	var err error

	out.RpcUrl = ctx.String(RpcUrlFlag.Name)
	err = validateRpcUrl(out.RpcUrl)
	if err != nil {
		return Config{}, err
	}

	out.DisperseCollectAddress, err = eth.ParseAddress(ctx.String(DisperseCollectAddressFlag.Name))
	if err != nil {
		return Config{}, errors.Wrapf(err, "invalid --%v", DisperseCollectAddressFlag.Name)
	}
	if out.DisperseCollectAddress == eth.ZeroAddress {
		return Config{}, errors.Errorf("--%v must not be the zero address", DisperseCollectAddressFlag.Name)
	}

	out.Port = ctx.Uint(PortFlag.Name)
	if out.Port == 0 || out.Port > 65535 {
		return Config{}, errors.Errorf("invalid --%v %d", PortFlag.Name, out.Port)
	}

	out.ChainID = ctx.Uint64(ChainIdFlag.Name)

	out.RpcTimeout = ctx.Duration(RpcTimeoutFlag.Name)
	if out.RpcTimeout <= 0 {
		return Config{}, errors.Errorf("--%v must be positive", RpcTimeoutFlag.Name)
	}

	out.DecimalsCacheTTL = ctx.Duration(DecimalsCacheTtlFlag.Name)
	if out.DecimalsCacheTTL < 0 {
		return Config{}, errors.Errorf("--%v must not be negative", DecimalsCacheTtlFlag.Name)
	}

	out.LogLevel, err = ParseLogLevel(ctx.String(LogLevelFlag.Name))
	if err != nil {
		return Config{}, err
	}

	out.LogFormat, err = ParseLogFormat(ctx.String(LogFormatFlag.Name))
	if err != nil {
		return Config{}, err
	}
	return out, nil
}

func validateRpcUrl(input string) error {
	if input == "" {
		return errors.Errorf("--%v is required", RpcUrlFlag.Name)
	}
	rpcUrl, err := url.Parse(input)
	if err != nil {
		return errors.Wrapf(err, "invalid --%v", RpcUrlFlag.Name)
	}
	switch rpcUrl.Scheme {
	case "http", "https", "ws", "wss":
		return nil
	default:
		return errors.Errorf("unsupported scheme %q in --%v", rpcUrl.Scheme, RpcUrlFlag.Name)
	}
}

func ParseLogLevel(input string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(input)
	if err != nil {
		return level, errors.Wrapf(err, "invalid --%v", LogLevelFlag.Name)
	}
	return level, nil
}

func ParseLogFormat(input string) (LogFormat, error) {
	switch LogFormat(input) {
	case LogFormatConsole, LogFormatJson:
		return LogFormat(input), nil
	default:
		return "", errors.Errorf("invalid --%v %q, expected console or json", LogFormatFlag.Name, input)
	}
}
