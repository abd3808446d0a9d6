package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/m-mizutani/veracity/pkg/repository"
	"github.com/urfave/cli/v3"
)

func statsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "stats",
		Usage: "Show aggregate statistics of the persisted store",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			persister := cfg.newPersister(ctx, repo)
			stats, err := persister.Stats(ctx)
			if err != nil {
				if errors.Is(err, repository.ErrStatsNotFound) {
					fmt.Fprintf(c.Root().Writer, "No persisted records yet\n")
					return nil
				}
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Total records: %d\n", stats.TotalRecords)
			fmt.Fprintf(c.Root().Writer, "Last updated:  %s\n", stats.UpdatedAt.Format("2006-01-02 15:04:05"))

			names := make([]string, 0, len(stats.PerCollection))
			for name := range stats.PerCollection {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(c.Root().Writer, "  %-24s %d\n", name, stats.PerCollection[name])
			}
			return nil
		},
	}
}
