package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ragchat/internal/chat"
	"ragchat/internal/chunker"
	"ragchat/internal/config"
	"ragchat/internal/corpus"
	"ragchat/internal/domain"
	"ragchat/internal/logger"
	"ragchat/internal/simulator"
	"ragchat/internal/store"
	"ragchat/internal/summarizer"
	"ragchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, question string
	flag.StringVar(&cfgPath, "config", os.Getenv("RAGCHAT_CONFIG"), "Path to YAML config file (optional; uses ~/.config/ragchat/config.yaml if not provided)")
	flag.StringVar(&question, "ask", "", "Ask a single question, print the answer and exit")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	// Positional arguments override the configured corpus with text files.
	if inputs := flag.Args(); len(inputs) > 0 {
		cfg.Corpus.Type = "text"
		cfg.Corpus.Paths = inputs
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logCfg := logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}
	if question != "" {
		logCfg.Console = os.Stderr
	}
	lg, err := logger.New(logCfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	docs, err := loadCorpus(cfg.Corpus)
	if err != nil {
		lg.Fatal("load corpus", zap.String("type", cfg.Corpus.Type), zap.Error(err))
	}
	overview := summarizer.NewFrequencySummarizer(cfg.Corpus.OverviewSentences).Summarize(corpus.Texts(docs))
	lg.Info("corpus loaded", zap.String("type", cfg.Corpus.Type), zap.Int("documents", len(docs.Documents())))

	sim := simulator.New(docs, cfg.RetrievalConfig(), simulator.WithLogger(lg))
	ctrl := chat.New(store.New(), sim, chat.WithLogger(lg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if question != "" {
		code := ask(ctx, ctrl, question)
		stop()
		_ = lg.Sync()
		os.Exit(code)
	}

	if _, err := tea.NewProgram(tui.New(ctx, ctrl, docs, overview), tea.WithAltScreen()).Run(); err != nil {
		lg.Error("tui exited", zap.Error(err))
		log.Fatal(err)
	}
}

func loadCorpus(cfg config.CorpusConfig) (domain.Corpus, error) {
	switch cfg.Type {
	case "builtin", "":
		return corpus.Default(), nil
	case "yaml":
		return corpus.LoadYAML(cfg.Path)
	case "text":
		return corpus.LoadText(cfg.Paths, chunker.NewSentenceChunker(cfg.SentencesPerPage, cfg.OverlapSentences))
	default:
		return nil, fmt.Errorf("unknown corpus type: %s", cfg.Type)
	}
}

// ask runs one exchange and prints the assistant's reply with its sources.
func ask(ctx context.Context, ctrl *chat.Controller, question string) int {
	if !ctrl.SendMessage(ctx, question, true) {
		fmt.Fprintln(os.Stderr, "question is empty")
		return 2
	}
	st := ctrl.Store().Snapshot()
	conv, ok := st.ActiveConversation()
	if !ok || len(conv.Messages) == 0 {
		return 1
	}
	reply := conv.Messages[len(conv.Messages)-1]
	if reply.Status == domain.StatusError {
		color.Red("%s", reply.Content)
		fmt.Fprintln(os.Stderr, st.Error)
		return 1
	}
	fmt.Println(reply.Content)
	for i, c := range reply.Citations {
		color.Cyan("[%d] %s, p. %s", i+1, c.Title, c.Page)
		fmt.Printf("    %s\n", c.Snippet)
	}
	return 0
}
