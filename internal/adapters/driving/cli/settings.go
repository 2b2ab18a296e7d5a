package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/quizbolt/quizbolt/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the default user, AI providers, chunking and retrieval.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the user and both providers step by step.`,
	RunE:  runSettingsWizard,
}

var settingsUserCmd = &cobra.Command{
	Use:   "user [id]",
	Short: "Set the default user",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUser,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used for ingestion and retrieval.

Prompts interactively unless --provider is given. Changing the model does not
re-embed existing documents; chunks from another model are not retrieved.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long: `Configure the LLM provider for answers, quizzes, flashcards and notes.

Prompts interactively unless --provider is given.`,
	RunE: runSettingsLLM,
}

var settingsRAGCmd = &cobra.Command{
	Use:   "rag",
	Short: "Configure chunking, retrieval and context size",
	Long: `Update chunking and retrieval settings. Only the flags given are changed.

Chunk settings apply to documents ingested afterwards.`,
	RunE: runSettingsRAG,
}

var (
	providerFlag string
	modelFlag    string
	apiKeyFlag   string

	ragChunkSize      int
	ragChunkOverlap   int
	ragRetrievalLimit int
	ragContextChars   int
	ragEmbedBatchSize int
)

func init() {
	for _, c := range []*cobra.Command{settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().StringVar(&providerFlag, "provider", "", "provider name (skips the prompts)")
		c.Flags().StringVar(&modelFlag, "model", "", "model name (default for the provider)")
		c.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key for cloud providers")
	}
	settingsRAGCmd.Flags().IntVar(&ragChunkSize, "chunk-size", domain.DefaultChunkSize, "characters per chunk")
	settingsRAGCmd.Flags().IntVar(&ragChunkOverlap, "chunk-overlap", domain.DefaultChunkOverlap, "characters shared by neighbouring chunks")
	settingsRAGCmd.Flags().IntVar(&ragRetrievalLimit, "retrieval-limit", domain.DefaultRetrievalLimit, "chunks retrieved per question")
	settingsRAGCmd.Flags().IntVar(&ragContextChars, "context-chars", domain.DefaultContextChars, "maximum context characters sent to the LLM")
	settingsRAGCmd.Flags().IntVar(&ragEmbedBatchSize, "embed-batch-size", domain.DefaultEmbedBatchSize, "texts per embedding request")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsUserCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsRAGCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[User]")
	cmd.Printf("  ID: %s\n", settings.User)
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	printAPIKey(cmd, settings.Embedding.Provider, settings.Embedding.APIKey)
	if settings.Embedding.CacheURL != "" {
		cmd.Printf("  Cache: %s\n", settings.Embedding.CacheURL)
	}
	printStatus(cmd, settings.Embedding.IsConfigured())

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Chat model: %s\n", settings.LLM.Model)
	cmd.Printf("  Generation model: %s\n", settings.LLM.EffectiveGenerationModel())
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	printAPIKey(cmd, settings.LLM.Provider, settings.LLM.APIKey)
	printStatus(cmd, settings.LLM.IsConfigured())

	cmd.Println("[RAG]")
	cmd.Printf("  Chunk size: %d\n", settings.RAG.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", settings.RAG.ChunkOverlap)
	cmd.Printf("  Retrieval limit: %d\n", settings.RAG.RetrievalLimit)
	cmd.Printf("  Context chars: %d\n", settings.RAG.ContextChars)
	cmd.Printf("  Embed batch size: %d\n", settings.RAG.EmbedBatchSize)
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	if settings.Store.Backend == domain.StoreBackendPostgres && settings.Store.DSN != "" {
		cmd.Printf("  DSN: (set)\n")
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'quizbolt settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printAPIKey(cmd *cobra.Command, provider domain.AIProvider, key string) {
	if !provider.RequiresAPIKey() {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("QuizBolt Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Default user
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cmd.Println("Step 1: Default User")
	cmd.Println("--------------------")
	cmd.Printf("Enter user ID [%s]: ", settings.User)
	if user := readLine(reader); user != "" {
		if err := settingsService.SetUser(domain.OwnerID(user)); err != nil {
			return fmt.Errorf("failed to set user: %w", err)
		}
	}
	cmd.Println()

	cmd.Println("Step 2: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure LLM Provider")
	cmd.Println("------------------------------")
	if err := configureLLMProvider(cmd, reader); err != nil {
		return err
	}

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsUser(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	if err := settingsService.SetUser(domain.OwnerID(args[0])); err != nil {
		return fmt.Errorf("failed to set user: %w", err)
	}
	cmd.Printf("Default user set to: %s\n", args[0])
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if providerFlag != "" {
		return applyProvider(cmd, "embedding", domain.AIProvider(providerFlag),
			settingsService.SetEmbeddingProvider, settingsService.ValidateEmbeddingConfig,
			domain.DefaultEmbeddingModels())
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if providerFlag != "" {
		return applyProvider(cmd, "LLM", domain.AIProvider(providerFlag),
			settingsService.SetLLMProvider, settingsService.ValidateLLMConfig,
			domain.DefaultLLMModels())
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

// applyProvider configures a provider from flags and pings it.
func applyProvider(cmd *cobra.Command, kind string, provider domain.AIProvider,
	set func(domain.AIProvider, string, string) error, validate func() error,
	defaults map[domain.AIProvider]string) error {
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q", provider)
	}
	model := modelFlag
	if model == "" {
		model = defaults[provider]
	}
	if provider.RequiresAPIKey() && apiKeyFlag == "" {
		return errors.New("API key is required for this provider")
	}

	if err := set(provider, model, apiKeyFlag); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", kind, err)
	}
	if err := validate(); err != nil {
		return fmt.Errorf("%s configuration validation failed: %w", kind, err)
	}
	cmd.Printf("%s provider configured: %s (%s)\n", kind, provider.Description(), model)
	return nil
}

func runSettingsRAG(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	rag := settings.RAG
	flags := cmd.Flags()
	if flags.Changed("chunk-size") {
		rag.ChunkSize = ragChunkSize
	}
	if flags.Changed("chunk-overlap") {
		rag.ChunkOverlap = ragChunkOverlap
	}
	if flags.Changed("retrieval-limit") {
		rag.RetrievalLimit = ragRetrievalLimit
	}
	if flags.Changed("context-chars") {
		rag.ContextChars = ragContextChars
	}
	if flags.Changed("embed-batch-size") {
		rag.EmbedBatchSize = ragEmbedBatchSize
	}

	if err := settingsService.SetRAG(rag); err != nil {
		return fmt.Errorf("failed to update RAG settings: %w", err)
	}
	cmd.Printf("RAG settings saved: chunk %d/%d, retrieve %d, context %d, batch %d\n",
		rag.ChunkSize, rag.ChunkOverlap, rag.RetrievalLimit, rag.ContextChars, rag.EmbedBatchSize)
	return nil
}

//nolint:dupl // Similar to configureLLMProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for LLM - intentional for CLI flow clarity
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func readPassword(reader *bufio.Reader) string {
	if stdinIsTerminal() {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
