package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/qnkhuat/garrison/pkg"
	"github.com/qnkhuat/garrison/pkg/evaluator"
	"github.com/qnkhuat/garrison/pkg/journal"
	"github.com/qnkhuat/garrison/pkg/reinforce"
)

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	logPath := flag.String("log", getEnv("GARRISON_LOG", "-"), "path to log file, - for stderr")
	tcpAddr := flag.String("tcp", getEnv("GARRISON_TCP", pkg.ServerPort), "JSON-lines address, empty to disable")
	sshAddr := flag.String("ssh", getEnv("GARRISON_SSH", pkg.SshPort), "ssh address, empty to disable")
	httpAddr := flag.String("http", getEnv("GARRISON_HTTP", pkg.HttpPort), "http address, empty to disable")
	hostKey := flag.String("hostkey", getEnv("GARRISON_HOSTKEY", ""), "ssh host key file, ephemeral when empty")
	enginePath := flag.String("engine", getEnv("GARRISON_ENGINE", ""), "path to a UCI engine binary")
	engineKind := flag.String("engine-kind", getEnv("GARRISON_ENGINE_KIND", evaluator.KindStream), "engine backend: stream or uci")
	threads := flag.Int("engine-threads", getEnvInt("GARRISON_ENGINE_THREADS", 0), "engine search threads, 0 keeps the default")
	hashMB := flag.Int("engine-hash", getEnvInt("GARRISON_ENGINE_HASH", 0), "engine hash table size in MB, 0 keeps the default")
	depth := flag.Int("depth", getEnvInt("GARRISON_DEPTH", reinforce.DefaultConfig().EvalDepth), "engine search depth")
	journalPath := flag.String("journal", getEnv("GARRISON_JOURNAL", ""), "sqlite file for the decision journal")
	flag.Parse()

	log, logCloser, err := pkg.InitLog(*logPath, "SERVER")
	if err != nil {
		panic(err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := reinforce.DefaultConfig()
	cfg.Logger = log
	cfg.EvalDepth = *depth
	var engine *reinforce.Engine
	if *enginePath != "" {
		ev, err := evaluator.Open(ctx, *engineKind, *enginePath, evaluator.UCIOptions{Threads: *threads, HashMB: *hashMB}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start engine")
		}
		defer ev.Close()
		engine = reinforce.NewEngine(cfg, ev)
	} else {
		log.Info().Msg("no engine configured, deciding on heuristics alone")
		engine = reinforce.NewEngine(cfg, nil)
	}

	var j *journal.Journal
	if *journalPath != "" {
		j, err = journal.Open(*journalPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open journal")
		}
		defer j.Close()
	}

	s := pkg.NewServer(pkg.ServerConfig{
		TCPAddr:     *tcpAddr,
		SSHAddr:     *sshAddr,
		HTTPAddr:    *httpAddr,
		HostKeyFile: *hostKey,
	}, engine, j, log)
	log.Info().Msg("server started")
	if err := s.ListenAndServe(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return
	}
	log.Info().Msg("server stopped")
}
