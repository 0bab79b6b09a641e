package shared

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	SchemeMongoDB    = "mongodb"
	SchemeMongoDBSRV = "mongodb+srv"
)

// URIParts is the editable view of a connection descriptor.
type URIParts struct {
	Scheme   string
	Host     string
	Port     int // 0 when absent
	Username string
	Password string
	SSL      bool
	Query    url.Values
}

// SRV reports whether the descriptor uses DNS seedlist discovery.
func (p URIParts) SRV() bool { return p.Scheme == SchemeMongoDBSRV }

// ParseURI validates a descriptor of the form scheme://[user[:pass]@]host[:port][/][?opt=value&...].
//
// A +srv scheme implies no explicit port. Multi-host seed lists are accepted and reported verbatim in Host.
func ParseURI(raw string) (*URIParts, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	if u.Scheme != SchemeMongoDB && u.Scheme != SchemeMongoDBSRV {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURI, u.Scheme)
	}

	parts := &URIParts{Scheme: u.Scheme, Query: u.Query()}

	if strings.Contains(u.Host, ",") {
		parts.Host = u.Host
	} else {
		parts.Host = u.Hostname()
		if p := u.Port(); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil || port <= 0 || port > 65535 {
				return nil, fmt.Errorf("%w: invalid port %q", ErrInvalidURI, p)
			}
			parts.Port = port
		}
	}

	if parts.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURI)
	}
	if parts.SRV() && (parts.Port != 0 || strings.Contains(parts.Host, ",")) {
		return nil, fmt.Errorf("%w: %s descriptors take a single host and no port", ErrInvalidURI, SchemeMongoDBSRV)
	}

	if u.User != nil {
		parts.Username = u.User.Username()
		parts.Password, _ = u.User.Password()
	}

	if v := parts.Query.Get("ssl"); v != "" {
		parts.SSL, _ = strconv.ParseBool(v)
	} else if v := parts.Query.Get("tls"); v != "" {
		parts.SSL, _ = strconv.ParseBool(v)
	}

	return parts, nil
}

// RedactURI returns raw with any password replaced, for logs and UI labels.
func RedactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid uri>"
	}
	return u.Redacted()
}

// WithSSL returns raw with its ssl option set to on.
//
// Any existing ssl option is removed and the new one is appended after the remaining options, which keep their order.
func WithSSL(raw string, on bool) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	var kept []string
	if u.RawQuery != "" {
		for _, pair := range strings.Split(u.RawQuery, "&") {
			key, _, _ := strings.Cut(pair, "=")
			if key == "ssl" || pair == "" {
				continue
			}
			kept = append(kept, pair)
		}
	}
	kept = append(kept, "ssl="+strconv.FormatBool(on))

	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = strings.Join(kept, "&")
	return u.String(), nil
}
