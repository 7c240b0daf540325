package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/Dosada05/swiss-tournament/config"
	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/metrics"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/urfave/cli/v2"
)

// app bundles the services the commands run against.
type app struct {
	conn        *sql.DB
	players     services.PlayerService
	tournaments services.TournamentService
	standings   services.StandingService
	matches     services.MatchService
	pairing     services.PairingService
	out         io.Writer
}

func main() {
	a := &app{out: os.Stdout}

	cliApp := &cli.App{
		Name:  "swissctl",
		Usage: "manage Swiss tournaments from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "warn",
			},
		},
		Before: a.open,
		After:  a.close,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply the database schema",
				Action: func(c *cli.Context) error {
					if err := db.Migrate(c.Context, a.conn); err != nil {
						return err
					}
					fmt.Fprintln(a.out, "schema applied")
					return nil
				},
			},
			{
				Name:   "reset",
				Usage:  "delete all matches, registrations, tournaments and players",
				Action: a.reset,
			},
			{
				Name:  "player",
				Usage: "player commands",
				Subcommands: []*cli.Command{
					{
						Name:      "register",
						Usage:     "register a new player",
						ArgsUsage: "<name>",
						Action: func(c *cli.Context) error {
							p, err := a.players.RegisterPlayer(c.Context, c.Args().First())
							if err != nil {
								return err
							}
							return a.print(p)
						},
					},
					{
						Name:  "list",
						Usage: "list all players",
						Action: func(c *cli.Context) error {
							ps, err := a.players.ListPlayers(c.Context)
							if err != nil {
								return err
							}
							return a.print(ps)
						},
					},
					{
						Name:  "count",
						Usage: "print the number of players",
						Action: func(c *cli.Context) error {
							n, err := a.players.CountPlayers(c.Context)
							if err != nil {
								return err
							}
							fmt.Fprintln(a.out, n)
							return nil
						},
					},
				},
			},
			{
				Name:  "tournament",
				Usage: "tournament commands",
				Subcommands: []*cli.Command{
					{
						Name:      "create",
						Usage:     "create a tournament",
						ArgsUsage: "<name>",
						Action: func(c *cli.Context) error {
							t, err := a.tournaments.CreateTournament(c.Context, c.Args().First())
							if err != nil {
								return err
							}
							return a.print(t)
						},
					},
					{
						Name:  "enter",
						Usage: "register a player for a tournament",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "tournament", Aliases: []string{"t"}, Required: true},
							&cli.IntFlag{Name: "player", Aliases: []string{"p"}, Required: true},
						},
						Action: func(c *cli.Context) error {
							reg, err := a.tournaments.EnterTournament(c.Context, c.Int("tournament"), c.Int("player"))
							if err != nil {
								return err
							}
							return a.print(reg)
						},
					},
					{
						Name:  "show",
						Usage: "show a tournament with its standings and matches",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "tournament", Aliases: []string{"t"}, Required: true},
						},
						Action: func(c *cli.Context) error {
							t, err := a.tournaments.GetOverview(c.Context, c.Int("tournament"))
							if err != nil {
								return err
							}
							return a.print(t)
						},
					},
				},
			},
			{
				Name:  "standings",
				Usage: "print standings, or whether a player already had a bye",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "tournament", Aliases: []string{"t"}, Usage: "omit for the global pool"},
					&cli.IntFlag{Name: "player", Aliases: []string{"p"}, Usage: "only report the bye flag of this player"},
				},
				Action: func(c *cli.Context) error {
					scope := scopeFlag(c)
					if c.IsSet("player") {
						had, err := a.standings.HasBye(c.Context, scope, c.Int("player"))
						if err != nil {
							return err
						}
						fmt.Fprintln(a.out, had)
						return nil
					}
					st, err := a.standings.GetStandings(c.Context, scope)
					if err != nil {
						return err
					}
					return a.print(st)
				},
			},
			{
				Name:  "report",
				Usage: "record a match result; without --loser it is a bye",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "tournament", Aliases: []string{"t"}, Usage: "omit for the global pool"},
					&cli.IntFlag{Name: "winner", Aliases: []string{"w"}, Required: true},
					&cli.IntFlag{Name: "loser", Aliases: []string{"l"}},
					&cli.BoolFlag{Name: "draw"},
				},
				Action: func(c *cli.Context) error {
					input := reportInput(c)
					m, err := a.matches.ReportMatch(c.Context, input)
					if err != nil {
						return err
					}
					return a.print(m)
				},
			},
			{
				Name:  "matches",
				Usage: "print the match log",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "tournament", Aliases: []string{"t"}, Usage: "omit for every match"},
				},
				Action: func(c *cli.Context) error {
					ms, err := a.matches.ListMatches(c.Context, scopeFlag(c))
					if err != nil {
						return err
					}
					return a.print(ms)
				},
			},
			{
				Name:  "pair",
				Usage: "generate the next round",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "tournament", Aliases: []string{"t"}, Usage: "omit for the global pool"},
					&cli.BoolFlag{Name: "avoid-rematches", EnvVars: []string{"AVOID_REMATCHES"}},
				},
				Action: func(c *cli.Context) error {
					var opts services.GenerateRoundOptions
					if c.IsSet("avoid-rematches") {
						v := c.Bool("avoid-rematches")
						opts.AvoidRematches = &v
					}
					round, err := a.pairing.GenerateNextRound(c.Context, scopeFlag(c), opts)
					if err != nil {
						return err
					}
					return a.print(round)
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func (a *app) open(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	conn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout)
	if err != nil {
		return err
	}
	a.conn = conn

	playerRepo := repositories.NewPostgresPlayerRepository(conn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(conn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(conn)
	matchRepo := repositories.NewPostgresMatchRepository(conn)
	standingRepo := repositories.NewPostgresStandingRepository(conn)

	a.players = services.NewPlayerService(playerRepo, logger)
	a.tournaments = services.NewTournamentService(tournamentRepo, registrationRepo, standingRepo, matchRepo, logger)
	a.standings = services.NewStandingService(standingRepo, tournamentRepo, logger)
	a.matches = services.NewMatchService(matchRepo, tournamentRepo, nil, metrics.Noop(), logger)
	a.pairing = services.NewPairingService(services.PairingServiceDeps{
		Tx:               services.NewTxRunner(conn),
		PlayerRepo:       playerRepo,
		TournamentRepo:   tournamentRepo,
		RegistrationRepo: registrationRepo,
		MatchRepo:        matchRepo,
		StandingRepo:     standingRepo,
		Metrics:          metrics.Noop(),
		Logger:           logger,
		AvoidRematches:   cfg.AvoidRematches,
	})
	return nil
}

func (a *app) close(*cli.Context) error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

func (a *app) reset(c *cli.Context) error {
	steps := []struct {
		name string
		run  func(ctx context.Context) (int64, error)
	}{
		{"matches", a.matches.DeleteMatches},
		{"registrations", a.tournaments.DeleteRegistrations},
		{"tournaments", a.tournaments.DeleteTournaments},
		{"players", a.players.DeletePlayers},
	}
	for _, step := range steps {
		n, err := step.run(c.Context)
		if err != nil {
			return fmt.Errorf("reset %s: %w", step.name, err)
		}
		fmt.Fprintf(a.out, "deleted %d %s\n", n, step.name)
	}
	return nil
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// scopeFlag returns the --tournament value, or nil for the global pool.
func scopeFlag(c *cli.Context) *int {
	if !c.IsSet("tournament") {
		return nil
	}
	id := c.Int("tournament")
	return &id
}

func reportInput(c *cli.Context) services.ReportMatchInput {
	input := services.ReportMatchInput{
		TournamentID: scopeFlag(c),
		WinnerID:     c.Int("winner"),
		Draw:         c.Bool("draw"),
	}
	if c.IsSet("loser") {
		loser := c.Int("loser")
		input.LoserID = &loser
	} else {
		input.Bye = true
	}
	return input
}
