package adapter

import (
	"bufio"
	"strconv"
	"strings"

	"netograph/internal/domain"
)

// ParseConnections parses captured socket listings from "ss -tunp" or
// "netstat -an". Listening sockets and rows without a concrete remote
// endpoint are skipped; only established flows describe topology.
func ParseConnections(data []byte) []domain.ParsedConnection {
	var conns []domain.ParsedConnection

	sc := bufio.NewScanner(strings.NewReader(string(data)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || isConnHeader(line) {
			continue
		}
		if conn, ok := parseConnLine(line); ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

func isConnHeader(line string) bool {
	return strings.HasPrefix(line, "Netid") ||
		strings.HasPrefix(line, "Proto") ||
		strings.HasPrefix(line, "Active ")
}

func parseConnLine(line string) (domain.ParsedConnection, bool) {
	var conn domain.ParsedConnection

	fields := strings.Fields(line)
	if len(fields) < 5 {
		return conn, false
	}

	proto := strings.ToLower(fields[0])
	switch {
	case strings.HasPrefix(proto, "tcp"):
		conn.Protocol = "tcp"
	case strings.HasPrefix(proto, "udp"):
		conn.Protocol = "udp"
	default:
		return conn, false
	}

	// ss:      Netid State Recv-Q Send-Q Local:Port Peer:Port [process]
	// netstat: Proto Recv-Q Send-Q Local:Port Foreign:Port State
	var local, remote, state string
	if _, err := strconv.Atoi(fields[1]); err == nil {
		local, remote = fields[3], fields[4]
		if len(fields) > 5 {
			state = fields[5]
		}
	} else {
		state = fields[1]
		local, remote = fields[4], fields[5]
		for _, f := range fields[6:] {
			if strings.Contains(f, "pid=") || strings.Contains(f, "users:") {
				conn.PID, conn.ProcessName = parseProcess(f)
			}
		}
	}

	var ok bool
	if conn.LocalIP, conn.LocalPort, ok = splitHostPort(local); !ok {
		return conn, false
	}
	if conn.RemoteIP, conn.RemotePort, ok = splitHostPort(remote); !ok {
		return conn, false
	}
	if conn.RemoteIP == "0.0.0.0" || conn.RemoteIP == "*" || conn.RemoteIP == "::" {
		return conn, false
	}

	conn.State = normalizeConnState(state)
	if conn.State == "listen" {
		return conn, false
	}
	return conn, true
}

// splitHostPort splits "ip:port", tolerating bracketed IPv6 literals
// and the wildcard forms ss prints
func splitHostPort(s string) (string, int, bool) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return "", 0, false
	}
	host := strings.Trim(s[:idx], "[]")
	port, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return "", 0, false
	}
	if host == "" {
		host = "*"
	}
	return host, port, true
}

// parseProcess extracts pid and name from ss process annotations like
// users:(("nginx",pid=1234,fd=6))
func parseProcess(s string) (int, string) {
	name := ""
	if start := strings.Index(s, `(("`); start >= 0 {
		rest := s[start+3:]
		if end := strings.Index(rest, `"`); end >= 0 {
			name = rest[:end]
		}
	}
	pid := 0
	if start := strings.Index(s, "pid="); start >= 0 {
		rest := s[start+4:]
		end := strings.IndexAny(rest, ",)")
		if end < 0 {
			end = len(rest)
		}
		pid, _ = strconv.Atoi(rest[:end])
	}
	return pid, name
}

func normalizeConnState(state string) string {
	switch strings.ToUpper(state) {
	case "ESTAB", "ESTABLISHED":
		return "established"
	case "LISTEN", "UNCONN":
		return "listen"
	case "TIME-WAIT", "TIME_WAIT":
		return "time_wait"
	case "CLOSE-WAIT", "CLOSE_WAIT":
		return "close_wait"
	case "":
		return "established"
	default:
		return strings.ToLower(state)
	}
}
