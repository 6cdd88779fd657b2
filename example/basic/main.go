package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/etfrag"
	"github.com/siherrmann/etfrag/core/answer"
	"github.com/siherrmann/etfrag/helper"
	"github.com/siherrmann/etfrag/sources"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	agent, err := etfrag.NewAgent(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create agent: %v", err)
	}
	defer agent.Close()

	// Set up the default local embedding pipeline
	if err := agent.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	// Register a static domestic source. Swap this for a real market feed
	// client in production.
	domesticClient := &sources.StaticDomesticClient{Items: []sources.DomesticListing{
		{
			Code:        "069500",
			Name:        "KODEX 200",
			Price:       "35,120",
			NAV:         "35,118.42",
			Description: "KOSPI 200 지수를 추종하는 국내 대표 ETF",
			Details:     map[string]string{"운용사": "삼성자산운용", "분류": "국내주식형"},
		},
		{
			Code:        "102110",
			Name:        "TIGER 200",
			Price:       "34,980",
			NAV:         "34,975.10",
			Description: "KOSPI 200 지수를 추종하는 ETF",
			Details:     map[string]string{"운용사": "미래에셋자산운용", "분류": "국내주식형"},
		},
	}}
	collector, err := sources.NewDomesticCollector(domesticClient)
	if err != nil {
		log.Fatalf("Failed to create collector: %v", err)
	}
	if err := agent.RegisterCollector(collector); err != nil {
		log.Fatalf("Failed to register collector: %v", err)
	}

	// Register an answer backend. The mock backend answers without an API
	// key, use answer.New("openai", ...) for real generation.
	backend := &answer.MockBackend{Response: "KODEX 200 은 KOSPI 200 지수를 추종하는 ETF 입니다 [Document 1]."}
	if err := agent.RegisterBackend(backend); err != nil {
		log.Fatalf("Failed to register backend: %v", err)
	}

	// Collect documents
	fmt.Println("Collecting documents...")
	run, err := agent.CollectAll(context.Background())
	if err != nil {
		log.Fatalf("Failed to collect: %v", err)
	}
	totals := run.Totals()
	fmt.Printf("Collected %d documents (%d attempted, %d skipped, %d failed)\n",
		run.TotalWritten, totals.Attempted, totals.Skipped, totals.Failed)

	// Ask a question
	question := "KODEX 200 은 어떤 지수를 추종하나요?"
	fmt.Printf("\nQuerying: %s\n", question)

	result, err := agent.QueryDomestic(context.Background(), question)
	if err != nil {
		log.Fatalf("Failed to query: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", result.Answer)
	fmt.Printf("\nBased on %d of %d retrieved documents:\n", result.NumSources, len(result.Sources))
	for i, source := range result.Sources {
		fmt.Printf("\n--- Source %d ---\n", i+1)
		fmt.Printf("Document: %s (v%d)\n", source.Document.IdentityKey, source.Document.Version)
		fmt.Printf("Similarity: %.4f\n", source.Similarity)
	}

	fmt.Println("\nBasic example completed successfully!")
}
