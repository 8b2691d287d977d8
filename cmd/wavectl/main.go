package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	wave "github.com/noah-isme/wave-go"
	"github.com/noah-isme/wave-go/apierror"
	"github.com/noah-isme/wave-go/internal/config"
	"github.com/noah-isme/wave-go/internal/obs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	a := &app{out: os.Stdout, in: os.Stdin, newClient: clientFromEnv}
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	out       io.Writer
	in        io.Reader
	newClient func(opts ...wave.Option) (*wave.Client, error)

	// registry collects client metrics when --metrics is set.
	registry *prometheus.Registry
}

func clientFromEnv(opts ...wave.Option) (*wave.Client, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	logger := obs.NewLoggerTo(os.Stderr, "console", cfg.Obs.LogLevel)
	opts = append([]wave.Option{wave.WithLogger(logger), wave.WithUserAgent("wavectl/" + wave.Version)}, opts...)
	return wave.New(cfg.ClientConfig(), opts...)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "wavectl",
		Short:         "Command line access to the Wave payment API",
		Version:       wave.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetIn(a.in)

	var showMetrics bool
	root.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print client metrics to stderr after the call")
	root.PersistentPreRun = func(*cobra.Command, []string) {
		if showMetrics {
			a.registry = prometheus.NewRegistry()
		}
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		return a.dumpMetrics(cmd.ErrOrStderr())
	}

	root.AddCommand(balanceCmd(a))
	root.AddCommand(transactionsCmd(a))
	root.AddCommand(checkoutCmd(a))
	root.AddCommand(payoutCmd(a))
	root.AddCommand(merchantsCmd(a))
	root.AddCommand(webhooksCmd(a))
	root.AddCommand(verifyCmd(a))
	return root
}

// withClient adapts a handler needing a client to cobra's RunE.
func (a *app) withClient(run func(cmd *cobra.Command, args []string, c *wave.Client) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var opts []wave.Option
		if a.registry != nil {
			opts = append(opts, wave.WithMetrics(wave.NewMetrics("wavectl", a.registry)))
		}
		c, err := a.newClient(opts...)
		if err != nil {
			return err
		}
		return run(cmd, args, c)
	}
}

// dumpMetrics writes the collected series in the Prometheus text format.
func (a *app) dumpMetrics(w io.Writer) error {
	if a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) done() error {
	_, err := fmt.Fprintln(a.out, "ok")
	return err
}

func reportError(w io.Writer, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		fmt.Fprintln(w, "error:", err)
		return
	}
	fmt.Fprintln(w, "error:", apiErr.Error())
	for _, d := range apiErr.Details {
		fmt.Fprintln(w, "  -", d.String())
	}
}
