package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"contract-analyzer-backend/embeddings"
	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/models"
	"contract-analyzer-backend/service"

	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// One-shot analysis over a contract file, no server or database involved.
// The index is built in memory and discarded when the run completes.
func main() {
	contractPath := flag.String("contract", "", "path to a plain-text contract file (required)")
	query := flag.String("query", "", "question or request to run against the contract")
	mode := flag.String("mode", "", "explicit analysis mode, bypasses the planner")
	k := flag.Int("k", 0, "retrieval depth override")
	asJSON := flag.Bool("json", false, "print raw JSON instead of formatted text")
	flag.Parse()

	if *contractPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *query == "" && *mode == "" {
		log.Fatal("Either -query or -mode is required")
	}

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	data, err := os.ReadFile(*contractPath)
	if err != nil {
		log.Fatalf("Failed to read contract: %v", err)
	}

	ctx := context.Background()

	apiKey := os.Getenv("GEMINI_API_KEY")
	geminiClient, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		log.Fatalf("Failed to initialize Gemini: %v", err)
	}
	defer geminiClient.Close()

	embedClient, err := embeddings.NewClient(apiKey)
	if err != nil {
		log.Fatalf("Failed to initialize embedding client: %v", err)
	}

	log.Printf("Indexing %s...", *contractPath)
	corpus, index, err := service.BuildContractIndex(ctx, string(data), embedClient)
	if err != nil {
		log.Fatalf("Failed to index contract: %v", err)
	}
	log.Printf("Indexed %d clauses", len(corpus.Clauses))

	analyzer := service.NewAnalyzer(
		service.AnalyzerWithCorpus(corpus),
		service.AnalyzerWithIndex(index),
		service.AnalyzerWithGenerator(llm.NewClient(geminiClient)),
		service.AnalyzerWithEmbedder(embedClient),
	)

	var plan *models.Plan
	if *mode != "" {
		plan, err = service.PlanForMode(*mode, *k)
	} else {
		plan, err = analyzer.Plan(ctx, *query)
		if err == nil && *k > 0 {
			plan.K = *k
		}
	}
	if err != nil {
		log.Fatalf("Planning failed: %v", err)
	}

	result, err := analyzer.Execute(ctx, plan, *query)
	if err != nil {
		log.Fatalf("Execution failed: %v", err)
	}

	if *asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		fmt.Println(string(out))
		return
	}

	printResult(result)
}

func printResult(result any) {
	switch v := result.(type) {
	case *models.AnswerResult:
		fmt.Println(service.FormatQA(v))
	case *models.ContractSummary:
		fmt.Println(service.FormatSummary(v))
	case map[string][]models.KeyClause:
		fmt.Println(service.FormatKeyClauses(v))
	case *models.StructuredAnalysis:
		fmt.Println(service.FormatStructuredAnalysis(v))
	case []models.ClauseIssue:
		fmt.Println(service.FormatUnclear(v))
	case []models.LegalQuestion:
		fmt.Println(service.FormatLawyerQuestions(v))
	case *models.RiskReport:
		fmt.Println(service.FormatRiskReport(v))
	case *models.FullReport:
		fmt.Println(service.FormatFullReport(v))
	case map[string]any:
		for key, section := range v {
			fmt.Printf("=== %s ===\n", key)
			printResult(section)
			fmt.Println()
		}
	default:
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			fmt.Printf("%v\n", v)
			return
		}
		fmt.Println(string(out))
	}
}
