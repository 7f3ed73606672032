package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"revenueqa/internal/amqp"
	"revenueqa/internal/backend"
	"revenueqa/internal/cli"
	"revenueqa/internal/nlq"
)

var (
	askViaQueue bool
	askExplain  bool
	askTimeout  time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question against the configured table",
	Long: `Answer a question. By default the table is loaded locally from the
configured backend; with --queue the question is sent to a running worker
over AMQP.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askViaQueue, "queue", false, "send the question to a worker over AMQP")
	askCmd.Flags().BoolVar(&askExplain, "explain", false, "print how each clause was resolved")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 30*time.Second, "overall timeout")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	question := strings.Join(args, " ")
	out := cmd.OutOrStdout()

	if askViaQueue {
		return askQueue(ctx, out, question)
	}
	return askLocal(ctx, out, question)
}

func askLocal(ctx context.Context, out io.Writer, question string) error {
	if err := appCfg.Validate(); err != nil {
		return err
	}
	backendCfg, err := backend.FromAppConfig(appCfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}

	stack := cli.NewQueryStack(logger, appCfg, res.Reader)
	defer stack.Stop()
	if _, err := stack.Service.Reload(ctx); err != nil {
		return err
	}

	answer, err := stack.Service.Ask(ctx, question)
	if err != nil {
		return err
	}
	return printAnswer(out, answer.Text, answer.Clauses)
}

func askQueue(ctx context.Context, out io.Writer, question string) error {
	if appCfg.AMQPURL == "" {
		return errors.New("AMQP_URL is not set")
	}
	client, err := amqp.NewClient(appCfg.AMQPURL, appCfg.AMQPExchange, appCfg.AMQPQueue, logger)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}
	defer client.Close()

	reply, err := client.Ask(ctx, question)
	if err != nil {
		return err
	}
	if reply.Error != "" {
		return fmt.Errorf("worker: %s", reply.Error)
	}
	return printAnswer(out, reply.Answer, reply.Clauses)
}

func printAnswer(out io.Writer, text string, clauses []nlq.ClauseResult) error {
	if _, err := fmt.Fprintln(out, text); err != nil {
		return err
	}
	if !askExplain {
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(clauses)
}
