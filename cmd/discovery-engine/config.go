// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/discovery-engine/internal/corpus"
	"github.com/pdiddy/discovery-engine/internal/expand"
	"github.com/pdiddy/discovery-engine/internal/explain"
	"github.com/pdiddy/discovery-engine/internal/llm"
	"github.com/pdiddy/discovery-engine/internal/pipeline"
	"github.com/pdiddy/discovery-engine/internal/rerank"
	"github.com/pdiddy/discovery-engine/internal/retrieve"
	"github.com/pdiddy/discovery-engine/internal/secrets"
	"github.com/pdiddy/discovery-engine/pkg/types"
)

// pipelineConfig assembles the full configuration from the config file,
// DISCOVERY_ENGINE_* environment variables, and loaded secrets. Values
// set in the config file win over secrets.
func pipelineConfig() types.PipelineConfig {
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("rerank.model", "rerank-v3.5")
	viper.SetDefault("corpus.mode", string(types.CorpusRemote))
	viper.SetDefault("corpus.corpus_dir", "corpus")
	viper.SetDefault("server.addr", ":8080")

	cfg := types.PipelineConfig{
		LLM: types.LLMConfig{
			HTTPConfig: httpConfig("llm"),
			BaseURL:    viper.GetString("llm.base_url"),
			Model:      viper.GetString("llm.model"),
			APIKey:     viper.GetString("llm.api_key"),
		},
		Rerank: types.RerankConfig{
			HTTPConfig:         httpConfig("rerank"),
			BaseURL:            viper.GetString("rerank.base_url"),
			Model:              viper.GetString("rerank.model"),
			APIKey:             viper.GetString("rerank.api_key"),
			DocumentCharBudget: viper.GetInt("rerank.document_char_budget"),
		},
		Corpus: types.CorpusConfig{
			HTTPConfig:     httpConfig("corpus"),
			Mode:           types.CorpusMode(viper.GetString("corpus.mode")),
			ArxivAPIURL:    viper.GetString("corpus.arxiv_api_url"),
			MaxPerPhrase:   viper.GetInt("corpus.max_per_phrase"),
			MaxCandidates:  viper.GetInt("corpus.max_candidates"),
			CorpusDir:      viper.GetString("corpus.corpus_dir"),
			PhraseInterval: viper.GetDuration("corpus.phrase_interval"),
		},
		Discovery: types.DiscoveryConfig{
			DefaultTopK: viper.GetInt("discovery.default_top_k"),
			MaxTopK:     viper.GetInt("discovery.max_top_k"),
		},
		Server: types.ServerConfig{
			Addr:              viper.GetString("server.addr"),
			RequestsPerMinute: viper.GetInt("server.requests_per_minute"),
		},
	}

	secrets.Apply(&cfg, loadedSecrets)
	return cfg
}

func httpConfig(section string) types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:   viper.GetDuration(section + ".timeout"),
		UserAgent: viper.GetString(section + ".user_agent"),
	}
}

// buildPipeline wires the configured stages together. In local mode the
// corpus snapshot is loaded into memory once, here; the store is not
// touched again.
func buildPipeline(ctx context.Context, cfg types.PipelineConfig) (*pipeline.Pipeline, error) {
	llmClient, err := llm.NewOpenAIClient(cfg.LLM)
	if err != nil {
		return nil, err
	}
	reranker, err := rerank.NewClient(cfg.Rerank)
	if err != nil {
		return nil, err
	}

	var retriever pipeline.Retriever
	switch cfg.Corpus.Mode {
	case types.CorpusRemote, "":
		retriever = retrieve.NewRemoteRetriever(corpus.NewArxivSource(cfg.Corpus), cfg.Corpus)
	case types.CorpusLocal:
		store, err := corpus.NewStore(cfg.Corpus)
		if err != nil {
			return nil, err
		}
		docs, err := store.LoadAll(ctx)
		store.Close()
		if err != nil {
			return nil, err
		}
		retriever = retrieve.NewLexicalRetriever(docs, cfg.Corpus.MaxCandidates)
	default:
		return nil, fmt.Errorf("unknown corpus mode %q: use remote or local", cfg.Corpus.Mode)
	}

	return pipeline.New(
		&expand.Expander{Client: llmClient},
		retriever,
		reranker,
		&explain.Explainer{Client: llmClient},
		cfg.Discovery,
	), nil
}
