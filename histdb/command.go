package histdb

import (
	"strconv"
	"strings"

	"github.com/ashlog/ash/internal/osinfo"
)

// createCommandsTable is the authoritative DDL for the commands table. The
// UNIQUE(session_id, command_no) constraint is what makes duplicate inserts
// from re-fired shell hooks a harmless no-op.
const createCommandsTable = `
CREATE TABLE commands (
  id integer primary key autoincrement,
  session_id integer not null,
  shell_level integer not null,
  command_no integer,
  tty varchar(20) not null,
  euid int(16) not null,
  cwd varchar(256) not null,
  rval int(5) not null,
  start_time integer not null,
  end_time integer not null,
  duration integer not null,
  pipe_cnt int(3),
  pipe_vals varchar(80),
  command varchar(1000) not null,
UNIQUE(session_id, command_no)
)`

// Command is one row of the commands table.
type Command struct {
	SessionID  int64
	ShellLevel int
	Number     int // the shell's builtin history number; <= 0 means unknown
	TTY        string
	EUID       int
	CWD        string
	ExitCode   int
	StartTime  int64
	EndTime    int64
	PipeVals   string
	Text       string
}

// NewCommand builds a Command row for the given command text and timing.
// When the command was a successful cd, the recorded working directory is
// taken from $OLDPWD: by the time the logger runs, the shell has already
// changed directories.
func NewCommand(info *osinfo.Info, getenv func(string) string,
	sessionID int64, text string, exitCode int, start, finish int64,
	number int, pipes string) *Command {

	cwd := info.CWD
	if exitCode == 0 && (text == "cd" || strings.HasPrefix(text, "cd ")) {
		cwd = getenv("OLDPWD")
	}
	return &Command{
		SessionID:  sessionID,
		ShellLevel: envInt(getenv, "SHLVL"),
		Number:     number,
		TTY:        info.TTY,
		EUID:       info.EUID,
		CWD:        cwd,
		ExitCode:   exitCode,
		StartTime:  start,
		EndTime:    finish,
		PipeVals:   pipes,
		Text:       text,
	}
}

func (c *Command) Table() string          { return "commands" }
func (c *Command) CreateTableSQL() string { return createCommandsTable }

func (c *Command) Columns() []string {
	return []string{
		"session_id", "shell_level", "command_no", "tty", "euid", "cwd",
		"rval", "start_time", "end_time", "duration",
		"pipe_cnt", "pipe_vals", "command",
	}
}

func (c *Command) Values() []any {
	var number any
	if c.Number > 0 {
		number = c.Number
	}
	return []any{
		c.SessionID, c.ShellLevel, number, c.TTY, c.EUID, c.CWD,
		c.ExitCode, c.StartTime, c.EndTime, c.EndTime - c.StartTime,
		len(strings.Split(c.PipeVals, "_")), nullable(c.PipeVals), c.Text,
	}
}

func envInt(getenv func(string) string, key string) int {
	n, err := strconv.Atoi(getenv(key))
	if err != nil {
		return 0
	}
	return n
}
