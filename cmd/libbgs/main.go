// Command libbgs sweeps a range of prime moduli, measuring for each one how
// much of the Markoff-type surface is covered by short rotation orbits. One
// report line per modulus goes to stdout; logs go to stderr.
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	zaplogfmt "github.com/sykesm/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/colbyaustinbrown/libbgs/internal/search"
)

func main() {
	if newRootCmd().Execute() != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:          "libbgs",
		Short:        "search Markoff-type conic orbits over prime fields",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v)
		},
	}
	flags := cmd.Flags()
	flags.Uint64("start", 0, "first candidate modulus of the range")
	flags.Uint64("end", 0, "end of the range, exclusive")
	flags.Uint64("prime", 0, "search a single modulus instead of a range")
	flags.Uint64("hyper-limit", 0, "override the hyperbolic order threshold")
	flags.Uint64("ellip-limit", 0, "override the elliptic order threshold")
	flags.Int("workers", 0, "goroutines per character sweep, 0 for sequential")
	flags.Int("probe", 0, "orbit points checked per coset representative")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("config", "", "optional config file")
	bindFlags(v, flags)
	return cmd
}

// bindFlags makes every flag overridable through LIBBGS_* environment
// variables, with dashes mapped to underscores.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	v.SetEnvPrefix("libbgs")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.BindPFlags(flags)
}

func run(v *viper.Viper) error {
	if cf := v.GetString("config"); cf != "" {
		v.SetConfigFile(cf)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config %s", cf)
		}
	}
	logger, err := newLogger(v.GetString("log-level"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	start, end, err := resolveRange(v.GetUint64("start"), v.GetUint64("end"), v.GetUint64("prime"))
	if err != nil {
		return err
	}
	cfg := search.Config{
		Workers:    v.GetInt("workers"),
		HyperLimit: v.GetUint64("hyper-limit"),
		EllipLimit: v.GetUint64("ellip-limit"),
		ProbeLen:   v.GetInt("probe"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for p := start; p < end; p++ {
		if !isPrime(p) {
			continue
		}
		rep, err := search.Process(ctx, p, cfg, logger)
		if err != nil {
			if ctx.Err() != nil {
				logger.Infow("interrupted", "p", p)
				return nil
			}
			return err
		}
		fmt.Println(rep)
	}
	return nil
}

// resolveRange turns the flag combination into a half-open interval of
// candidate moduli. Even numbers and 2 itself are excluded later by the
// primality filter together with the lower bound here.
func resolveRange(start, end, prime uint64) (uint64, uint64, error) {
	if prime != 0 {
		if start != 0 || end != 0 {
			return 0, 0, errors.New("--prime excludes --start and --end")
		}
		return prime, prime + 1, nil
	}
	if start >= end {
		return 0, 0, errors.Errorf("empty range [%d, %d)", start, end)
	}
	return start, end, nil
}

// isPrime reports whether p is an odd prime. ProbablyPrime is exact for
// arguments below 2^64.
func isPrime(p uint64) bool {
	if p < 3 || p%2 == 0 {
		return false
	}
	return new(big.Int).SetUint64(p).ProbablyPrime(0)
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, errors.Wrapf(err, "parsing log level %q", level)
	}
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zaplogfmt.NewEncoder(cfg), zapcore.Lock(os.Stderr), lvl)
	return zap.New(core).Sugar(), nil
}
