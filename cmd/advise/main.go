package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/qnkhuat/garrison/pkg"
	"github.com/qnkhuat/garrison/pkg/evaluator"
	"github.com/qnkhuat/garrison/pkg/reinforce"
)

func main() {
	fen := flag.String("fen", "", "position to judge, initial position when empty")
	side := flag.String("side", "", "grant this side a piece instead of deriving it from material")
	piece := flag.String("piece", "", "kind of the granted piece, used with -side")
	place := flag.Bool("place", false, "place the piece when the advice is to use it")
	enginePath := flag.String("engine", "", "path to a UCI engine binary")
	engineKind := flag.String("engine-kind", evaluator.KindStream, "engine backend: stream or uci")
	threads := flag.Int("engine-threads", 0, "engine search threads, 0 keeps the default")
	hashMB := flag.Int("engine-hash", 0, "engine hash table size in MB, 0 keeps the default")
	depth := flag.Int("depth", reinforce.DefaultConfig().EvalDepth, "engine search depth")
	server := flag.String("server", "", "ask a running server at this address instead of deciding locally")
	timeout := flag.Duration("timeout", 10*time.Second, "give up after this long")
	logPath := flag.String("log", "-", "path to log file, - for stderr")
	verbose := flag.Bool("v", false, "log decisions")
	flag.Parse()

	log, logCloser, err := pkg.InitLog(*logPath, "ADVISE")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logCloser.Close()
	if !*verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	sh := &pkg.Shell{Out: color.Output, Color: !color.NoColor}
	if (*side == "") != (*piece == "") {
		sh.PrintError(fmt.Errorf("-side and -piece go together"))
		os.Exit(2)
	}

	if *server != "" {
		if err := remote(ctx, sh, *server, *fen, *side, *piece, *place); err != nil {
			sh.PrintError(err)
			os.Exit(1)
		}
		return
	}

	cfg := reinforce.DefaultConfig()
	cfg.Logger = log
	cfg.EvalDepth = *depth
	engine := reinforce.NewEngine(cfg, nil)
	if *enginePath != "" {
		ev, err := evaluator.Open(ctx, *engineKind, *enginePath, evaluator.UCIOptions{Threads: *threads, HashMB: *hashMB}, log)
		if err != nil {
			sh.PrintError(err)
			os.Exit(1)
		}
		defer ev.Close()
		engine = reinforce.NewEngine(cfg, ev)
	}

	sh.Session = pkg.NewSession(engine, nil, log)
	state, err := sh.Session.Load(*fen)
	if err == nil && *side != "" {
		state, err = sh.Session.Grant(*side, *piece)
	}
	sh.PrintState(state, err)
	if err != nil {
		os.Exit(1)
	}
	if *place {
		sh.PrintAdvice(sh.Session.AutoPlace(ctx))
	} else {
		sh.PrintAdvice(sh.Session.Advise(ctx))
	}
}

func remote(ctx context.Context, sh *pkg.Shell, addr, fen, side, piece string, place bool) error {
	cl, err := pkg.Dial(ctx, addr)
	if err != nil {
		return err
	}
	defer cl.Close()

	state, err := cl.Load(ctx, fen)
	if err != nil {
		return err
	}
	if side != "" {
		if state, err = cl.Grant(ctx, side, piece); err != nil {
			return err
		}
	}
	sh.PrintState(state, nil)

	var advice pkg.MessageAdvice
	if place {
		advice, err = cl.AutoPlace(ctx)
	} else {
		advice, err = cl.Advise(ctx)
	}
	sh.PrintAdvice(advice, err)
	return nil
}
