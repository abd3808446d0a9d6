package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/usecase/pipeline"
	"github.com/m-mizutani/veracity/pkg/vector"
	"github.com/urfave/cli/v3"
)

func checkCommand() *cli.Command {
	var (
		cfg      config
		response string
		input    string
		history  []string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "response",
			Aliases:     []string{"r"},
			Usage:       "Candidate response text to verify",
			Destination: &response,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "User input the response answers",
			Destination: &input,
			Required:    true,
		},
		&cli.StringSliceFlag{
			Name:        "history",
			Usage:       "Prior conversation utterances, oldest first (repeatable)",
			Destination: &history,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, pipelineFlags(&cfg)...)

	return &cli.Command{
		Name:  "check",
		Usage: "Verify a single response and print the result as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			store := vector.NewStore()
			p := pipeline.New(store, cfg.newEmbedder(ctx),
				pipeline.WithConfig(cfg.pipelineConfig()),
				pipeline.WithPersister(cfg.newPersister(ctx, repo)))
			p.Init(ctx)

			result := p.Process(ctx, response, input, history)

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to encode result")
			}
			fmt.Fprintf(c.Root().Writer, "%s\n", encoded)
			return nil
		},
	}
}
