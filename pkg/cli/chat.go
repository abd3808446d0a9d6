package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/adapter"
	"github.com/m-mizutani/veracity/pkg/usecase/pipeline"
	"github.com/m-mizutani/veracity/pkg/vector"
	"github.com/urfave/cli/v3"
	"google.golang.org/genai"
)

const chatSystemPrompt = `You are a supportive, attentive listener.
Respond briefly and warmly to what the person just said.
Never invent details about earlier conversations.`

func chatCommand() *cli.Command {
	var (
		cfg     config
		verbose bool
	)

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "Show confidence and stage details after each reply",
			Destination: &verbose,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, pipelineFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation with verified responses",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupLogger(ctx)

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			store := vector.NewStore()
			embedder := cfg.newEmbedder(ctx)
			persister := cfg.newPersister(ctx, repo)

			p := pipeline.New(store, embedder,
				pipeline.WithConfig(cfg.pipelineConfig()),
				pipeline.WithPersister(persister))

			warmed := p.Init(ctx)
			fmt.Fprintf(c.Root().Writer, "Session started (%d records restored). Type 'exit' to quit.\n", warmed)

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			for {
				line, err := rl.Readline()
				if err != nil {
					if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
						break
					}
					return goerr.Wrap(err, "failed to read input")
				}

				input := strings.TrimSpace(line)
				if input == "exit" {
					break
				}
				if input == "" {
					continue
				}

				sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				sp.Start()

				history := historyContents(p)
				candidate, err := generate(ctx, gemini, input, history)
				if err != nil {
					sp.Stop()
					fmt.Fprintf(c.Root().Writer, "(generation failed: %v)\n", err)
					continue
				}

				result := p.Process(ctx, candidate, input, history)
				sp.Stop()

				fmt.Fprintf(c.Root().Writer, "%s\n", result.ProcessedResponse)
				if verbose {
					fmt.Fprintf(c.Root().Writer, "  confidence=%.2f revised=%v rag=%v reasoning=%v detection=%v (%s)\n",
						result.Confidence,
						result.WasRevised,
						result.Stages.RAG,
						result.Stages.Reasoning,
						result.Stages.Detection,
						result.ProcessingTime.Round(time.Millisecond))
					for _, issue := range result.IssueDetails {
						fmt.Fprintf(c.Root().Writer, "  issue: %s\n", issue)
					}
				}
			}

			p.Shutdown(ctx)
			fmt.Fprintf(c.Root().Writer, "\nSession saved\n")
			return nil
		},
	}
}

// historyContents renders the rolling memory as plain utterances
func historyContents(p *pipeline.Pipeline) []string {
	turns := p.Memory().Turns()
	history := make([]string, 0, len(turns))
	for _, turn := range turns {
		history = append(history, turn.Content)
	}
	return history
}

// generate asks Gemini for a candidate reply grounded in the rolling history
func generate(ctx context.Context, gemini adapter.Gemini, input string, history []string) (string, error) {
	var contents []*genai.Content
	for i, utterance := range history {
		var role genai.Role = genai.RoleUser
		if i%2 == 1 {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(utterance, role))
	}
	contents = append(contents, genai.NewContentFromText(input, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(chatSystemPrompt, ""),
	}

	resp, err := gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content")
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", goerr.New("empty generation response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", goerr.New("generation returned no text")
	}
	return text, nil
}
