package pkg

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gliderlabs/ssh"
	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/qnkhuat/garrison/pkg/reinforce"
)

const shellHelp = `commands:
  new [seed]     start from a random Garrison setup
  load [fen]     load a position (initial position when fen is omitted)
  move <uci>     play a move, e.g. e2e4
  grant <side> <piece>
                 owe side a piece regardless of material
  advise         should the pending reinforcement be used now?
  place <square> drop the pending reinforcement
  auto           advise and place when the answer is yes
  engine         let the engine play the side to move
  show           print the board and pending reinforcement
  help           this text
  quit           leave
`

func (s *Server) serveSSH(ctx context.Context) error {
	srv := &ssh.Server{
		Addr:        s.cfg.SSHAddr,
		IdleTimeout: s.cfg.IdleTimeout,
		Handler:     s.sshHandle,
	}
	if s.cfg.HostKeyFile != "" {
		if err := srv.SetOption(ssh.HostKeyFile(s.cfg.HostKeyFile)); err != nil {
			return fmt.Errorf("ssh host key: %w", err)
		}
	} else {
		signer, err := ephemeralHostKey()
		if err != nil {
			return err
		}
		srv.AddHostKey(signer)
		s.log.Warn().Msg("no ssh host key configured, using an ephemeral one")
	}
	if !s.register(ctx, func() { s.ssh = srv }) {
		return nil
	}
	s.log.Info().Str("addr", s.cfg.SSHAddr).Msg("listening for ssh sessions")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

func ephemeralHostKey() (gossh.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	return gossh.NewSignerFromKey(priv)
}

type lineReader interface {
	ReadLine() (string, error)
}

type scanReader struct{ *bufio.Scanner }

func (r scanReader) ReadLine() (string, error) {
	if r.Scan() {
		return r.Text(), nil
	}
	if err := r.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *Server) sshHandle(sess ssh.Session) {
	session := s.NewSession()
	log := session.log.With().Str("user", sess.User()).Logger()
	log.Info().Str("remote", sess.RemoteAddr().String()).Msg("ssh session opened")
	defer log.Info().Msg("ssh session closed")

	var (
		in  lineReader
		out io.Writer
	)
	_, _, isPty := sess.Pty()
	if isPty {
		t := term.NewTerminal(sess, "garrison> ")
		in, out = t, t
	} else {
		in, out = scanReader{bufio.NewScanner(sess)}, sess
	}

	sh := &Shell{Session: session, Out: out, Color: isPty}
	fmt.Fprintf(out, "session %s, type help for commands\n", session.Name)
	for {
		line, err := in.ReadLine()
		if err != nil {
			return
		}
		if !sh.Run(sess.Context(), line) {
			return
		}
	}
}

// Shell runs text commands against a session.
type Shell struct {
	Session *Session
	Out     io.Writer
	Color   bool
}

func (sh *Shell) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if sh.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Run executes one command line and reports whether the shell should keep
// reading.
func (sh *Shell) Run(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	arg := strings.Join(fields[1:], " ")
	switch strings.ToLower(fields[0]) {
	case "new":
		var seed int64
		if arg != "" {
			n, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				sh.PrintError(fmt.Errorf("bad seed %q", arg))
				break
			}
			seed = n
		}
		sh.PrintState(sh.Session.New(seed))
	case "load":
		sh.PrintState(sh.Session.Load(arg))
	case "move":
		sh.PrintState(sh.Session.Move(arg))
	case "grant":
		if len(fields) != 3 {
			sh.PrintError(errors.New("usage: grant <side> <piece>"))
			break
		}
		sh.PrintState(sh.Session.Grant(fields[1], fields[2]))
	case "advise":
		sh.PrintAdvice(sh.Session.Advise(ctx))
	case "place":
		sh.PrintState(sh.Session.Place(arg))
	case "auto":
		sh.PrintAdvice(sh.Session.AutoPlace(ctx))
	case "engine":
		sh.PrintAdvice(sh.Session.EngineTurn(ctx))
	case "show":
		fmt.Fprint(sh.Out, sh.Session.Board())
		sh.PrintState(sh.Session.State(), nil)
	case "help":
		fmt.Fprint(sh.Out, shellHelp)
	case "quit", "exit":
		return false
	default:
		sh.PrintError(fmt.Errorf("unknown command %q", fields[0]))
	}
	return true
}

func (sh *Shell) PrintError(err error) {
	sh.paint(color.FgRed).Fprintf(sh.Out, "error: %v\n", err)
}

func (sh *Shell) PrintState(st MessageState, err error) {
	if err != nil {
		sh.PrintError(err)
		return
	}
	fmt.Fprintf(sh.Out, "%s to move  %s\n", st.Turn, st.Fen)
	if st.Over {
		sh.paint(color.FgYellow, color.Bold).Fprintf(sh.Out, "game over: %s\n", st.Result)
	}
	if st.Pending != nil {
		sh.paint(color.FgCyan).Fprintf(sh.Out, "%s may drop a %s on %s\n",
			st.Pending.Side, st.Pending.Piece, strings.Join(st.Pending.Squares, " "))
	} else if st.Applied {
		fmt.Fprintln(sh.Out, "reinforcement already used")
	}
}

func (sh *Shell) PrintAdvice(a MessageAdvice, err error) {
	if err != nil && !errors.Is(err, ErrNoPending) {
		sh.PrintError(err)
		return
	}
	if errors.Is(err, ErrNoPending) || a.Verdict == reinforce.NotApplicable.String() {
		if a.Move == "" {
			fmt.Fprintln(sh.Out, "no pending reinforcement")
			return
		}
	} else {
		sh.printDecision(a)
	}
	if a.Placed {
		sh.paint(color.FgGreen).Fprintf(sh.Out, "placed on %s\n", a.Square)
	}
	if a.Move != "" {
		sh.paint(color.FgMagenta).Fprintf(sh.Out, "engine played %s\n", a.Move)
	}
	if a.Placed || a.Move != "" {
		sh.PrintState(a.State, nil)
	}
}

func (sh *Shell) printDecision(a MessageAdvice) {
	verdict := sh.paint(color.FgYellow, color.Bold)
	if a.Use {
		verdict = sh.paint(color.FgGreen, color.Bold)
	}
	verdict.Fprintf(sh.Out, "%s", strings.ToUpper(a.Verdict))
	fmt.Fprintf(sh.Out, " (%s) score %.3f threshold %.2f", a.Reason, a.Score, a.Threshold)
	if a.Evaluation != nil {
		fmt.Fprintf(sh.Out, " eval %+.2f", *a.Evaluation)
	}
	fmt.Fprintln(sh.Out)
	f := a.Factors
	fmt.Fprintf(sh.Out, "  king %.2f  deficit %.2f  phase %.2f  activity %.2f  timing %.2f\n",
		f.KingDanger, f.MaterialDeficit, f.GamePhase, f.PieceActivity, f.Timing)
	if a.Square != "" {
		fmt.Fprintf(sh.Out, "  best square %s\n", a.Square)
	}
}
