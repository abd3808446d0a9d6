package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/usecase/knowledge"
	"github.com/m-mizutani/veracity/pkg/vector"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func loadCommand() *cli.Command {
	var (
		cfg        config
		inputPath  string
		collection string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to a YAML or JSON file of knowledge entries",
			Destination: &inputPath,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "collection",
			Aliases:     []string{"c"},
			Usage:       "Target collection name",
			Value:       "knowledge_base",
			Sources:     cli.EnvVars("VERACITY_COLLECTION"),
			Destination: &collection,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "load",
		Usage: "Bulk-load knowledge entries into the vector store",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			entries, err := readEntries(inputPath)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			store := vector.NewStore()
			loader := knowledge.New(store, cfg.newEmbedder(ctx),
				knowledge.WithPersister(cfg.newPersister(ctx, repo)))

			loaded := loader.Load(ctx, entries, collection)
			fmt.Fprintf(c.Root().Writer, "Loaded %d of %d entries into %s\n", loaded, len(entries), collection)
			return nil
		},
	}
}

// readEntries parses the entries file by extension
func readEntries(path string) ([]*model.KnowledgeEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read entries file", goerr.V("path", path))
	}

	var entries []*model.KnowledgeEntry
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, goerr.Wrap(err, "failed to parse JSON entries", goerr.V("path", path))
		}
	} else {
		if err := yaml.Unmarshal(raw, &entries); err != nil {
			return nil, goerr.Wrap(err, "failed to parse YAML entries", goerr.V("path", path))
		}
	}

	if len(entries) == 0 {
		return nil, goerr.New("entries file is empty", goerr.V("path", path))
	}
	return entries, nil
}
