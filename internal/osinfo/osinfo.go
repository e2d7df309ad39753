// Package osinfo collects the host and session metadata recorded with each
// shell session: tty, shell name, process ids, user ids, host addresses.
package osinfo

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"
)

// Info is a snapshot of the environment a session or command row is
// recorded from.
type Info struct {
	CWD       string
	Hostname  string
	HostIP    string
	LoginName string
	Shell     string
	TTY       string
	TimeZone  string
	PID       int // pid of the invoking shell
	PPID      int // parent pid of the invoking shell
	UID       int
	EUID      int
	Time      int64
}

// Snapshot gathers host and session metadata. Individual probes that fail
// leave their field empty rather than failing the snapshot: a command with
// a missing tty is still worth logging.
func Snapshot() *Info {
	// The logger runs as a child of the shell being recorded, so the shell
	// is our parent process.
	shellPID := os.Getppid()
	now := time.Now()

	info := &Info{
		Hostname:  hostname(),
		HostIP:    hostIPs(),
		LoginName: loginName(),
		Shell:     shellName(shellPID),
		TTY:       ttyName(),
		TimeZone:  now.Format("MST"),
		PID:       shellPID,
		PPID:      parentPID(shellPID),
		UID:       os.Getuid(),
		EUID:      os.Geteuid(),
		Time:      now.Unix(),
	}
	if cwd, err := os.Getwd(); err == nil {
		info.CWD = cwd
	}
	return info
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}

// hostIPs returns the non-loopback unicast addresses of this host joined
// with spaces, matching the width of the host_ip column consumers.
func hostIPs() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	var ips []string
	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		ips = append(ips, ipnet.IP.String())
	}
	return strings.Join(ips, " ")
}

func loginName() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.Username
}

// shellName returns the command name of the given shell process, read from
// /proc. Falls back to $SHELL when /proc is unavailable.
func shellName(pid int) string {
	if comm := procComm(pid); comm != "" {
		return comm
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh[strings.LastIndexByte(sh, '/')+1:]
	}
	return ""
}

// procComm returns the comm field (field 1) of /proc/<pid>/stat, without
// the surrounding parentheses.
func procComm(pid int) string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return ""
	}
	s := string(data)
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return ""
	}
	return s[open+1 : end]
}

// parentPID returns the ppid (field 3) of /proc/<pid>/stat, or 0.
func parentPID(pid int) int {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return 0
	}
	// Fields after the parenthesized comm, which may itself contain spaces.
	s := string(data)
	end := strings.LastIndexByte(s, ')')
	if end < 0 {
		return 0
	}
	fields := strings.Fields(s[end+1:])
	if len(fields) < 2 {
		return 0
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return ppid
}

// ttyName returns the controlling terminal of stdin with the /dev/ prefix
// stripped, or "" when stdin is not a terminal.
func ttyName() string {
	tty, err := os.Readlink("/proc/self/fd/0")
	if err != nil {
		return ""
	}
	if !strings.HasPrefix(tty, "/dev/") {
		return ""
	}
	return strings.TrimPrefix(tty, "/dev/")
}
