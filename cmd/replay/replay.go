package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Amund211/milestones/internal/adapters/achievementrepository"
	"github.com/Amund211/milestones/internal/adapters/cache"
	"github.com/Amund211/milestones/internal/adapters/eventlog"
	"github.com/Amund211/milestones/internal/adapters/savefile"
	"github.com/Amund211/milestones/internal/adapters/worldstate"
	"github.com/Amund211/milestones/internal/app"
	"github.com/Amund211/milestones/internal/catalog"
	"github.com/Amund211/milestones/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type replayOptions struct {
	definitionsPath string
	worldPath       string
	savePath        string
	eventsPath      string
	write           bool
	verbose         bool
}

func newRootCmd() *cobra.Command {
	opts := replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay an event log against a save file and print the resulting achievements",
		Long: `Replay reads gameplay events, one JSON object per line, and registers each of
them in order. The starting state is read from the save file when one exists.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.definitionsPath, "definitions", "", "achievement definitions file (built-in catalog when empty)")
	cmd.Flags().StringVar(&opts.worldPath, "world", "", "world description file (built-in world when empty)")
	cmd.Flags().StringVar(&opts.savePath, "save", "", "save file to start from")
	cmd.Flags().StringVar(&opts.eventsPath, "events", "-", "event log to replay, - for stdin")
	cmd.Flags().BoolVar(&opts.write, "write", false, "write the resulting achievements back to the save file")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every registration")

	return cmd
}

func runReplay(ctx context.Context, opts replayOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	if opts.write && opts.savePath == "" {
		return errors.New("--write requires --save")
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	definitions, err := catalog.Load(opts.definitionsPath, logger.With("component", "catalog"))
	if err != nil {
		return err
	}
	world, err := worldstate.Load(opts.worldPath)
	if err != nil {
		return err
	}

	repo := achievementrepository.NewMemory()
	if opts.savePath != "" {
		loader := savefile.NewLoader(definitions, world.HomeBody(), logger.With("component", "savefile"))
		instances, err := loader.Load(opts.savePath)
		if err != nil {
			return err
		}
		if err := repo.Restore(ctx, instances); err != nil {
			return fmt.Errorf("failed to restore save: %w", err)
		}
	}

	events := stdin
	if opts.eventsPath != "-" {
		file, err := os.Open(opts.eventsPath)
		if err != nil {
			return fmt.Errorf("failed to open event log: %w", err)
		}
		defer file.Close()
		events = file
	}

	scoreCache := cache.NewBasicCache[float64]()
	recordEvent := app.BuildRecordEvent(definitions, world, repo, scoreCache)

	replayed, recorded := 0, 0
	err = eventlog.Read(events, func(lineNumber int, event eventlog.Event) error {
		decision, err := recordEvent(ctx, event.ToDomain())
		if err != nil {
			return err
		}
		replayed++
		if decision.Outcome == domain.OutcomeReplace {
			recorded++
		}
		logger.DebugContext(ctx, "Replayed event", "line", lineNumber, "definition", event.Definition, "outcome", decision.Outcome.String())
		return nil
	})
	if err != nil {
		return err
	}

	achievements, err := app.BuildListAchievements(repo, world)(ctx)
	if err != nil {
		return err
	}
	total, err := app.BuildGetTotalScoreWithCache(scoreCache, repo, world)(ctx)
	if err != nil {
		return err
	}

	printAchievements(stdout, achievements)
	fmt.Fprintf(stdout, "\nReplayed %s events, %s recorded\n", humanize.Comma(int64(replayed)), humanize.Comma(int64(recorded)))
	fmt.Fprintf(stdout, "Total score: %s\n", humanize.CommafWithDigits(total, 2))

	if opts.write {
		instances, err := repo.List(ctx)
		if err != nil {
			return err
		}
		if err := savefile.Save(opts.savePath, instances); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %s achievements to %s\n", humanize.Comma(int64(len(instances))), opts.savePath)
	}

	return nil
}

func printAchievements(w io.Writer, achievements []app.ScoredAchievement) {
	for _, achievement := range achievements {
		instance := achievement.Instance

		detail := instance.FormattedValue()
		if formattedTime := instance.FormattedTime(); formattedTime != "" {
			if detail != "" {
				detail += " "
			}
			detail += "at " + formattedTime
		}
		if contributor := instance.Contributor(); contributor != "" {
			detail += " by " + contributor
		}

		fmt.Fprintf(w, "%-40s %-40s %10s\n", instance.Title(), detail, humanize.CommafWithDigits(achievement.Score, 2))
	}
}
