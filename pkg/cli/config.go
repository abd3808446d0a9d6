package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/veracity/pkg/adapter"
	"github.com/m-mizutani/veracity/pkg/cache"
	"github.com/m-mizutani/veracity/pkg/model"
	"github.com/m-mizutani/veracity/pkg/repository"
	"github.com/m-mizutani/veracity/pkg/usecase/pipeline"
	"github.com/m-mizutani/veracity/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	logLevel string

	// Repository
	backend    string
	badgerPath string
	project    string
	database   string
	bucket     string
	policyDir  string

	// Adapters
	geminiProject  string
	geminiLocation string
	simulated      bool

	// Pipeline
	noRAG         bool
	noReasoning   bool
	noDetection   bool
	noRerank      bool
	tokenRiskBar  float64
	reasoningBar  float64
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("VERACITY_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "backend",
			Aliases:     []string{"b"},
			Usage:       "Durable store backend (badger, firestore, gcs, none)",
			Value:       "badger",
			Sources:     cli.EnvVars("VERACITY_BACKEND"),
			Destination: &cfg.backend,
		},
		&cli.StringFlag{
			Name:        "badger-path",
			Usage:       "Path to the local badger database",
			Value:       ".veracity",
			Sources:     cli.EnvVars("VERACITY_BADGER_PATH"),
			Destination: &cfg.badgerPath,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for persisted snapshots",
			Sources:     cli.EnvVars("VERACITY_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego policies gating persistence",
			Sources:     cli.EnvVars("VERACITY_POLICY_DIR"),
			Destination: &cfg.policyDir,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.BoolFlag{
			Name:        "simulated-embedding",
			Usage:       "Use deterministic local embeddings instead of Gemini",
			Sources:     cli.EnvVars("VERACITY_SIMULATED_EMBEDDING"),
			Destination: &cfg.simulated,
		},
	}
}

// pipelineFlags returns flags toggling verification stages
func pipelineFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-rag",
			Usage:       "Disable retrieval augmentation",
			Destination: &cfg.noRAG,
		},
		&cli.BoolFlag{
			Name:        "no-reasoning",
			Usage:       "Disable the claim verification stage",
			Destination: &cfg.noReasoning,
		},
		&cli.BoolFlag{
			Name:        "no-detection",
			Usage:       "Disable hallucination detection",
			Destination: &cfg.noDetection,
		},
		&cli.BoolFlag{
			Name:        "no-rerank",
			Usage:       "Disable the retrieval reranking pass",
			Destination: &cfg.noRerank,
		},
		&cli.FloatFlag{
			Name:        "token-threshold",
			Usage:       "Token-level risk threshold for the detector",
			Value:       0.75,
			Destination: &cfg.tokenRiskBar,
		},
		&cli.FloatFlag{
			Name:        "reasoning-threshold",
			Usage:       "Minimum support score before a claim is reported",
			Value:       0.5,
			Destination: &cfg.reasoningBar,
		},
	}
}

// setupLogger installs the configured log level as the context logger
func (cfg *config) setupLogger(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, nil)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newRepository creates the durable store selected by --backend
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	switch cfg.backend {
	case "badger":
		repo, err := repository.NewBadger(cfg.badgerPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open badger store")
		}
		return repo, nil

	case "firestore":
		if cfg.project == "" {
			return nil, goerr.New("project is required for the firestore backend")
		}
		repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create firestore repository")
		}
		return repo, nil

	case "gcs":
		if cfg.bucket == "" {
			return nil, goerr.New("bucket is required for the gcs backend")
		}
		repo, err := repository.NewStorage(ctx, cfg.bucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage repository")
		}
		return repo, nil

	case "none", "":
		return repository.NewNull(), nil

	default:
		return nil, goerr.New("unknown backend", goerr.V("backend", cfg.backend))
	}
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, goerr.New("gemini-project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}
	return adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)
}

// newEmbedder builds the embedding chain: Gemini wrapped by the fallback,
// or the simulated embedder when no Gemini project is configured.
func (cfg *config) newEmbedder(ctx context.Context) adapter.Embedder {
	if cfg.simulated || cfg.geminiProject == "" {
		return adapter.NewSimulatedEmbedder(model.EmbeddingDimension)
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		logging.From(ctx).Warn("gemini unavailable, using simulated embeddings", "error", err)
		return adapter.NewSimulatedEmbedder(model.EmbeddingDimension)
	}

	return adapter.NewFallbackEmbedder(adapter.NewGeminiEmbedder(gemini))
}

// newPersister wires the eviction policy over a repository
func (cfg *config) newPersister(ctx context.Context, repo repository.Repository) *cache.Persister {
	var opts []cache.Option
	if cfg.policyDir != "" {
		opts = append(opts, cache.WithPolicyDir(ctx, cfg.policyDir))
	}
	return cache.New(repo, cache.DefaultPolicy(), opts...)
}

// pipelineConfig maps the CLI toggles onto the stage configuration
func (cfg *config) pipelineConfig() pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.EnableRAG = !cfg.noRAG
	pc.EnableReasoning = !cfg.noReasoning
	pc.EnableDetection = !cfg.noDetection
	pc.EnableReranking = !cfg.noRerank
	pc.TokenThreshold = cfg.tokenRiskBar
	pc.ReasoningThreshold = cfg.reasoningBar
	return pc
}
