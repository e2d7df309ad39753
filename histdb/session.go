package histdb

import (
	"github.com/ashlog/ash/internal/osinfo"
)

// createSessionsTable is the authoritative DDL for the sessions table. The
// text is compared verbatim (trim-only) against sqlite_master by
// [Store.EnsureTable], so it must not be reformatted casually.
const createSessionsTable = `
CREATE TABLE sessions (
  id integer primary key autoincrement,
  hostname varchar(128),
  host_ip varchar(40),
  ppid int(5) not null,
  pid int(5) not null,
  time_zone str(3) not null,
  start_time integer not null,
  end_time integer,
  duration integer,
  tty varchar(20) not null,
  uid int(16) not null,
  euid int(16) not null,
  logname varchar(48),
  shell varchar(50) not null,
  sudo_user varchar(48),
  sudo_uid int(16),
  ssh_client varchar(60),
  ssh_connection varchar(100)
)`

// Session is one row of the sessions table, capturing the identity of a
// shell session at the moment it starts.
type Session struct {
	TimeZone      string
	StartTime     int64
	PPID          int
	PID           int
	TTY           string
	UID           int
	EUID          int
	LoginName     string
	Hostname      string
	HostIP        string
	Shell         string
	SudoUser      string
	SudoUID       string
	SSHClient     string
	SSHConnection string
}

// NewSession builds a Session row from a host metadata snapshot and the
// process environment.
func NewSession(info *osinfo.Info, getenv func(string) string) *Session {
	return &Session{
		TimeZone:      info.TimeZone,
		StartTime:     info.Time,
		PPID:          info.PPID,
		PID:           info.PID,
		TTY:           info.TTY,
		UID:           info.UID,
		EUID:          info.EUID,
		LoginName:     info.LoginName,
		Hostname:      info.Hostname,
		HostIP:        info.HostIP,
		Shell:         info.Shell,
		SudoUser:      getenv("SUDO_USER"),
		SudoUID:       getenv("SUDO_UID"),
		SSHClient:     getenv("SSH_CLIENT"),
		SSHConnection: getenv("SSH_CONNECTION"),
	}
}

func (s *Session) Table() string          { return "sessions" }
func (s *Session) CreateTableSQL() string { return createSessionsTable }

func (s *Session) Columns() []string {
	return []string{
		"time_zone", "start_time", "ppid", "pid", "tty", "uid", "euid",
		"logname", "hostname", "host_ip", "shell",
		"sudo_user", "sudo_uid", "ssh_client", "ssh_connection",
	}
}

func (s *Session) Values() []any {
	return []any{
		s.TimeZone, s.StartTime, s.PPID, s.PID, s.TTY, s.UID, s.EUID,
		nullable(s.LoginName), nullable(s.Hostname), nullable(s.HostIP), s.Shell,
		nullable(s.SudoUser), nullable(s.SudoUID), nullable(s.SSHClient),
		nullable(s.SSHConnection),
	}
}

// nullable converts an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
