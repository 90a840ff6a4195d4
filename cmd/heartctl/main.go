package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skufu/heartform/internal/config"
	"github.com/Skufu/heartform/internal/form"
	"github.com/Skufu/heartform/internal/predict"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	apiURL         string
	predictTimeout time.Duration
	wakeTimeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "heartctl",
		Short:         "Heart disease risk form from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.apiURL != "" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.apiURL = cfg.APIURL
			if !cmd.Flags().Changed("timeout") {
				opts.predictTimeout = cfg.PredictTimeout
			}
			if !cmd.Flags().Changed("wake-timeout") {
				opts.wakeTimeout = cfg.WakeTimeout
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Inference service base URL (default from PREDICT_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&opts.predictTimeout, "timeout", 30*time.Second, "Prediction request timeout")
	rootCmd.PersistentFlags().DurationVar(&opts.wakeTimeout, "wake-timeout", 10*time.Second, "Wake probe timeout")

	rootCmd.AddCommand(
		newFieldsCmd(),
		newWakeCmd(opts),
		newPredictCmd(opts),
	)
	return rootCmd
}

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the form fields and their accepted values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFields(cmd.OutOrStdout())
		},
	}
}

func runFields(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLABEL\tDEFAULT\tVALUES")
	for _, f := range form.Fields() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Label, f.Default, f.Describe())
	}
	return tw.Flush()
}

func newWakeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "wake",
		Short: "Send one wake probe to the inference service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			waker := opts.waker(cmd.ErrOrStderr())
			if !waker.Probe(cmd.Context()) {
				return fmt.Errorf("inference service at %s is not answering yet", opts.apiURL)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inference service at %s is awake\n", opts.apiURL)
			return nil
		},
	}
}

func (o *options) waker(logOut io.Writer) *predict.Waker {
	logger := log.New(logOut, "heartctl: ", 0)
	return predict.NewWaker(predict.NewClient(o.apiURL, o.predictTimeout), o.wakeTimeout, logger)
}

type predictFlags struct {
	values   map[string]*string
	attempts int
	wait     time.Duration
	asJSON   bool
}

func newPredictCmd(opts *options) *cobra.Command {
	pf := &predictFlags{values: make(map[string]*string)}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Submit one form and print the prediction",
		Long: `Submit one risk form to the inference service.

Every field has a flag of the same name; enumerated fields take the option
code and default to the form's initial choice. A cold service is probed up to
--attempts times before giving up.

Example: heartctl predict --Age 57 --Sex 1 --BP 140 --Cholesterol 241 --MaxHR 123 --STDepression 0.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string, len(pf.values))
			for name, v := range pf.values {
				values[name] = *v
			}
			return runPredict(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, values, pf)
		},
	}

	for _, f := range form.Fields() {
		pf.values[f.Name] = cmd.Flags().String(f.Name, f.Default, fmt.Sprintf("%s (%s)", f.Label, f.Describe()))
	}
	cmd.Flags().IntVar(&pf.attempts, "attempts", 5, "Wake probes to try before giving up")
	cmd.Flags().DurationVar(&pf.wait, "wait", 5*time.Second, "Pause between wake probes")
	cmd.Flags().BoolVar(&pf.asJSON, "json", false, "Print the raw response body")
	return cmd
}

func runPredict(ctx context.Context, out, errOut io.Writer, opts *options, values map[string]string, pf *predictFlags) error {
	waker := opts.waker(errOut)
	controller := predict.NewController(waker, opts.predictTimeout, log.New(errOut, "heartctl: ", 0))
	defer controller.Close()

	for _, f := range form.Fields() {
		raw, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := controller.UpdateField(f.Name, raw); err != nil {
			return fmt.Errorf("--%s: %w (want %s)", f.Name, err, f.Describe())
		}
		if f.IsSelect() || strings.TrimSpace(raw) == "" {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !f.InRange(v) {
			fmt.Fprintf(errOut, "warning: %s=%s is outside %s\n", f.Name, raw, f.Describe())
		}
	}

	for i := 0; !waker.Probe(ctx); i++ {
		if i+1 >= pf.attempts {
			return fmt.Errorf("inference service at %s is not answering yet", opts.apiURL)
		}
		fmt.Fprintf(errOut, "%s\n", predict.StartupMessage)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pf.wait):
		}
	}

	st := controller.Submit(ctx)
	if st.Status != predict.StatusSucceeded {
		return errors.New(st.Err)
	}

	if pf.asJSON {
		_, err := fmt.Fprintln(out, string(st.Result))
		return err
	}
	printView(out, predict.NewView(st.Result))
	return nil
}

func printView(out io.Writer, v predict.View) {
	fmt.Fprintln(out, v.Headline())
	fmt.Fprintf(out, "  Heart Disease:    %s\n", v.HeartDisease)
	fmt.Fprintf(out, "  No Heart Disease: %s\n", v.NoHeartDisease)
	if len(v.Insights) == 0 {
		return
	}
	fmt.Fprintln(out, "Clinical Insights")
	for _, insight := range v.Insights {
		fmt.Fprintf(out, "  - %s\n", insight)
	}
}
