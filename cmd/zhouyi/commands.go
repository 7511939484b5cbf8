package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pbaille/zhouyi/internal/api"
	"github.com/pbaille/zhouyi/internal/config"
	"github.com/pbaille/zhouyi/internal/domain"
	"github.com/pbaille/zhouyi/internal/oracle"
	"github.com/pbaille/zhouyi/internal/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func castCmd(cfg config.Config, opts *options) *cobra.Command {
	var co castOptions

	cmd := &cobra.Command{
		Use:   "cast [question]",
		Short: "Ask a question and cast a hexagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(co.totals) != 0 && len(co.totals) != oracle.LinesPerHexagram {
				return fmt.Errorf("--lines needs %d totals, got %d", oracle.LinesPerHexagram, len(co.totals))
			}
			co.question = strings.Join(args, " ")
			co.lang = opts.language()

			a, err := newApp(cfg, opts, opts.logger(), sessions.NewMemoryStore(), prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			return runCast(cmd.Context(), a, co, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&co.auto, "auto", false, "cast all six lines without waiting")
	cmd.Flags().BoolVar(&co.noInterpret, "no-interpret", false, "skip the interpretation")
	cmd.Flags().IntSliceVar(&co.totals, "lines", nil, "record six totals (6-9, bottom line first) cast with physical coins")
	return cmd
}

type castOptions struct {
	question    string
	lang        oracle.Language
	auto        bool
	noInterpret bool
	totals      []int
}

func runCast(ctx context.Context, a *app, co castOptions, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	lang := co.lang

	question := strings.TrimSpace(co.question)
	for question == "" {
		fmt.Fprint(out, msg(lang, "question"))
		line, err := reader.ReadString('\n')
		question = strings.TrimSpace(line)
		if err != nil {
			if question == "" {
				return fmt.Errorf("read question: %w", oracle.ErrEmptyQuestion)
			}
			break
		}
	}

	rec, err := a.sessions.Create(ctx, lang)
	if err != nil {
		return err
	}
	id := rec.ID()
	defer a.sessions.Delete(context.WithoutCancel(ctx), id)

	if _, err := a.sessions.ConfirmQuestion(ctx, id, question); err != nil {
		return err
	}

	auto := co.auto
	for i := 0; i < oracle.LinesPerHexagram; i++ {
		var l oracle.Line
		if len(co.totals) > 0 {
			rec, l, err = a.sessions.RecordTotal(ctx, id, co.totals[i])
		} else {
			if !auto {
				fmt.Fprintf(out, msg(lang, "press"), i+1)
				// Without more input, cast the rest straight away.
				if _, err := reader.ReadString('\n'); err != nil {
					fmt.Fprintln(out)
					auto = true
				}
			}
			rec, l, err = a.sessions.Cast(ctx, id)
		}
		if err != nil {
			return err
		}
		printLine(out, i+1, l, lang)
	}

	_, result, err := a.sessions.Result(ctx, id)
	if err != nil {
		return err
	}
	printResult(out, result, lang)

	if !co.noInterpret {
		fmt.Fprintf(out, "\n"+msg(lang, "consulting")+"\n", a.provider)
		interpreted, err := a.sessions.Interpret(ctx, id)
		if err != nil {
			fmt.Fprintf(out, msg(lang, "interpFailed")+"\n", err)
		} else {
			rec = interpreted
			printInterpretation(out, *rec.Interpretation, lang)
		}
	}

	fmt.Fprintf(out, "\n"+msg(lang, "saved")+"\n", shortID(rec.ReadingID))
	return nil
}

func hexagramCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hexagram <number|key>",
		Short: "Show a hexagram by number (1-64) or binary key (bottom line first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := api.LookupRef(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printKeyFigure(out, h.Binary)
			fmt.Fprintln(out)
			printHexagram(out, h, opts.language())
			return nil
		},
	}
}

func trigramsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "trigrams",
		Short: "List the eight trigrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, t := range oracle.Trigrams() {
				fmt.Fprintf(out, "%s  %s\n", t.Binary, t.Title(opts.language()))
			}
			return nil
		},
	}
}

func historyCmd(opts *options) *cobra.Command {
	var (
		limit int
		query string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent readings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore(opts.dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			var readings []domain.Reading
			if query != "" {
				readings, err = s.SearchReadings(query, limit)
			} else {
				readings, err = s.ListReadings(limit, 0)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(readings) == 0 {
				fmt.Fprintln(out, "No readings yet. Use 'zhouyi cast' to make one.")
				return nil
			}

			for _, r := range readings {
				title := fmt.Sprintf("#%d", r.Hexagram)
				if h, ok := oracle.HexagramByNumber(r.Hexagram); ok {
					title += " " + h.Title(r.Language)
				}
				fmt.Fprintf(out, "%s  %s  %s  %s\n",
					shortID(r.ID), r.CreatedAt.Local().Format("2006-01-02"), title, truncate(r.Question, 50))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of readings to show")
	cmd.Flags().StringVarP(&query, "query", "q", "", "only readings whose question or interpretation contains this text")
	return cmd
}

func showCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id-prefix>",
		Short: "Show a reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore(opts.dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			reading, err := s.FindReading(args[0])
			if err != nil {
				return fmt.Errorf("show %s: %w", args[0], err)
			}

			printReading(cmd.OutOrStdout(), reading)
			return nil
		},
	}
}

func serveCmd(cfg config.Config, opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			sessionStore := newSessionStore(cfg, logger)
			if c, ok := sessionStore.(io.Closer); ok {
				defer c.Close()
			}

			a, err := newApp(cfg, opts, logger, sessionStore, reg)
			if err != nil {
				return err
			}
			defer a.Close()

			server := api.New(a.sessions, addr,
				api.WithHistory(a.history),
				api.WithGatherer(reg),
				api.WithLanguage(opts.language()),
				api.WithLogger(logger),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := server.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", cfg.Addr, "server address")
	return cmd
}
