// claimcalc - property claim financial calculation engine
//
// Usage:
//   claimcalc serve
//   claimcalc coinsurance validate --building-limit 600000 --percent 80 --replacement-cost 1000000
//   claimcalc rom --category fire --severity severe --square-feet 2000
//   claimcalc interruption --start 2024-01-01 --end 2024-01-31 --revenues 30000,28000
//   claimcalc gap --offer 80000 --valuation 100000
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"claimcalc/api"
	"claimcalc/db/clickhouse"
	"claimcalc/internal/audit"
	"claimcalc/internal/engine"
	apipkg "claimcalc/pkg/api"
	"claimcalc/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "claimcalc",
		Usage:   "Deterministic claim valuation calculators for property insurance claims",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"CLAIMCALC_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Usage:   "ClickHouse host for the calculation audit store (empty disables auditing)",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "claimcalc",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			serveCommand(),
			coinsuranceCommand(),
			romCommand(),
			interruptionCommand(),
			gapCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) zerolog.Logger {
	return platform.NewLogger(c.String("log-level"), platform.GetEnvBool("CLAIMCALC_DEV", false))
}

// newRecorder opens the ClickHouse audit store when a host is configured,
// otherwise falls back to the noop recorder.
func newRecorder(c *cli.Context, log zerolog.Logger) (audit.Recorder, error) {
	host := c.String("clickhouse-host")
	if host == "" {
		return audit.Noop{}, nil
	}

	store, err := clickhouse.NewStore(&clickhouse.Config{
		Host:     host,
		Port:     c.Int("clickhouse-port"),
		Database: c.String("clickhouse-database"),
		Username: c.String("clickhouse-user"),
		Password: c.String("clickhouse-password"),
	})
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(context.Background()); err != nil {
		store.Close()
		return nil, err
	}
	log.Info().Str("host", host).Msg("calculation audit store enabled")
	return store, nil
}

// =============================================================================
// SERVE
// =============================================================================

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the calculation HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP listen port",
				EnvVars: []string{"PORT"},
			},
		},
		Action: func(c *cli.Context) error {
			log := newLogger(c)

			recorder, err := newRecorder(c, log)
			if err != nil {
				return fmt.Errorf("audit store: %w", err)
			}
			defer recorder.Close()

			eng := engine.New(
				engine.WithRecorder(recorder),
				engine.WithLogger(log),
			)

			cfg := api.DefaultConfig()
			cfg.Port = c.Int("port")
			return api.NewServer(eng, recorder, cfg, log).Start()
		},
	}
}

// =============================================================================
// CALCULATOR COMMANDS
// =============================================================================

func coinsuranceCommand() *cli.Command {
	return &cli.Command{
		Name:  "coinsurance",
		Usage: "Coinsurance compliance checks and penalized payments",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Check whether the insured limit meets the coinsurance requirement",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "building-limit", Required: true, Usage: "Insured building limit"},
					&cli.Float64Flag{Name: "percent", Required: true, Usage: "Coinsurance percentage"},
					&cli.Float64Flag{Name: "replacement-cost", Required: true, Usage: "Full replacement cost"},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					return runOperation(c, apipkg.OpCoinsuranceValidate, apipkg.CoinsuranceValidateInput{
						BuildingLimit:      c.Float64("building-limit"),
						CoinsurancePercent: c.Float64("percent"),
						ReplacementCost:    c.Float64("replacement-cost"),
					})
				},
			},
			{
				Name:  "payment",
				Usage: "Compute the claim payment under coinsurance terms",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "loss", Required: true, Usage: "Loss amount"},
					&cli.Float64Flag{Name: "building-limit", Required: true, Usage: "Insured building limit"},
					&cli.Float64Flag{Name: "percent", Required: true, Usage: "Coinsurance percentage"},
					&cli.Float64Flag{Name: "replacement-cost", Required: true, Usage: "Full replacement cost"},
					&cli.Float64Flag{Name: "deductible", Usage: "Policy deductible"},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					return runOperation(c, apipkg.OpCoinsurancePayment, apipkg.CoinsurancePaymentInput{
						LossAmount:         c.Float64("loss"),
						BuildingLimit:      c.Float64("building-limit"),
						CoinsurancePercent: c.Float64("percent"),
						ReplacementCost:    c.Float64("replacement-cost"),
						Deductible:         c.Float64("deductible"),
					})
				},
			},
			{
				Name:  "waiver",
				Usage: "Check whether the coinsurance clause is waived",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "agreed-value", Usage: "Policy has an agreed value provision"},
					&cli.BoolFlag{Name: "clause-present", Usage: "Policy carries a coinsurance clause"},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					return runOperation(c, apipkg.OpCoinsuranceWaiver, apipkg.CoinsuranceWaiverInput{
						AgreedValue:              c.Bool("agreed-value"),
						CoinsuranceClausePresent: c.Bool("clause-present"),
					})
				},
			},
			{
				Name:  "blanket",
				Usage: "Check blanket coverage across multiple locations",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "blanket-limit", Required: true, Usage: "Blanket policy limit"},
					&cli.Float64Flag{Name: "percent", Required: true, Usage: "Coinsurance percentage"},
					&cli.Float64SliceFlag{Name: "location", Required: true, Usage: "Replacement cost per location (repeatable)"},
					formatFlag(),
				},
				Action: func(c *cli.Context) error {
					var locations []apipkg.BlanketLocation
					for _, rc := range c.Float64Slice("location") {
						locations = append(locations, apipkg.BlanketLocation{ReplacementCost: rc})
					}
					return runOperation(c, apipkg.OpCoinsuranceBlanket, apipkg.CoinsuranceBlanketInput{
						BlanketLimit:       c.Float64("blanket-limit"),
						CoinsurancePercent: c.Float64("percent"),
						Locations:          locations,
					})
				},
			},
		},
	}
}

func romCommand() *cli.Command {
	return &cli.Command{
		Name:  "rom",
		Usage: "Rough-order-of-magnitude repair/replacement cost estimate",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Required: true, Usage: "Damage category (fire, water, roof, contents, structural)"},
			&cli.StringFlag{Name: "severity", Required: true, Usage: "Severity (minor, moderate, severe, total_loss)"},
			&cli.Float64Flag{Name: "square-feet", Required: true, Usage: "Affected area in square feet"},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			return runOperation(c, apipkg.OpRomEstimate, apipkg.RomEstimateInput{
				Category:   c.String("category"),
				Severity:   c.String("severity"),
				SquareFeet: c.Float64("square-feet"),
			})
		},
	}
}

func interruptionCommand() *cli.Command {
	return &cli.Command{
		Name:  "interruption",
		Usage: "Business-interruption loss over an outage period",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "start", Required: true, Usage: "Interruption start date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "end", Required: true, Usage: "Interruption end date (YYYY-MM-DD)"},
			&cli.StringFlag{Name: "revenues", Required: true, Usage: "Comma-separated monthly revenues"},
			&cli.Float64Flag{Name: "cogs", Usage: "Cost of goods sold percent"},
			&cli.Float64Flag{Name: "fixed", Usage: "Fixed costs percent"},
			&cli.Float64Flag{Name: "variable", Usage: "Variable costs percent"},
			&cli.Float64Flag{Name: "extra", Usage: "Extra expenses incurred"},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			var revenues []json.RawMessage
			for _, r := range strings.Split(c.String("revenues"), ",") {
				quoted, err := json.Marshal(strings.TrimSpace(r))
				if err != nil {
					return err
				}
				revenues = append(revenues, quoted)
			}
			return runOperation(c, apipkg.OpInterruptionLoss, map[string]any{
				"start_date":             c.String("start"),
				"end_date":               c.String("end"),
				"monthly_revenues":       revenues,
				"cogs_percent":           c.Float64("cogs"),
				"fixed_costs_percent":    c.Float64("fixed"),
				"variable_costs_percent": c.Float64("variable"),
				"extra_expenses":         c.Float64("extra"),
			})
		},
	}
}

func gapCommand() *cli.Command {
	return &cli.Command{
		Name:  "gap",
		Usage: "Settlement gap and recommended counter-offer",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "offer", Required: true, Usage: "Insurer offer amount"},
			&cli.Float64Flag{Name: "valuation", Required: true, Usage: "Claimed valuation"},
			&cli.Float64Flag{Name: "margin", Usage: "Negotiation margin override (0-1, default 0.95)"},
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			return runOperation(c, apipkg.OpSettlementGap, apipkg.SettlementGapInput{
				OfferAmount: c.Float64("offer"),
				Valuation:   c.Float64("valuation"),
				Margin:      c.Float64("margin"),
			})
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format (text, json)",
	}
}

// runOperation dispatches one calculation through the façade and prints the
// envelope. A failed calculation exits non-zero.
func runOperation(c *cli.Context, op apipkg.Operation, input any) error {
	log := newLogger(c)

	recorder, err := newRecorder(c, log)
	if err != nil {
		return fmt.Errorf("audit store: %w", err)
	}
	defer recorder.Close()

	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}

	eng := engine.New(engine.WithRecorder(recorder), engine.WithLogger(log))
	env := eng.Calculate(c.Context, op, payload)

	switch c.String("format") {
	case "json":
		out, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		printText(env)
	}

	if !env.Success {
		return cli.Exit(fmt.Sprintf("%s: %s", env.Error.Code, env.Error.Message), 1)
	}
	return nil
}

func printText(env *apipkg.Envelope) {
	if !env.Success {
		fmt.Printf("FAILED  %s\n", env.Metadata.Operation)
		return
	}
	fmt.Printf("%s  (calculation %s, %dms)\n",
		env.Metadata.Operation, env.Metadata.CalculationID, env.Metadata.DurationMs)

	out, err := json.MarshalIndent(env.Data, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(out))
}
