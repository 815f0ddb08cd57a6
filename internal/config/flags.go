package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// NetAddress is the -a flag value of the status server.
type NetAddress struct {
	Host string
	Port int
}

// Flags holds the values bound by [RegisterFlags]. They are read after the
// owning FlagSet has been parsed.
type Flags struct {
	statusAddress  NetAddress
	agentURL       string
	configPath     string
	requestTimeout time.Duration
	retryWindow    time.Duration
	pollInterval   time.Duration
	ackTimeout     time.Duration
	service        string
	env            string
	version        string
	products       []string
	jsonConfigPath string
}

// RegisterFlags binds all configuration flags to fs.
//
// Flags:
//
//	-a status server address in format [host]:[port]
//	--agent-url control plane agent base URL
//	--config-path config endpoint path
//	--request-timeout poll request timeout (e.g., "5s")
//	--retry-window poll retry window (e.g., "2s")
//	--poll-interval delay between polls (e.g., "5s")
//	--ack-timeout limit for unacknowledged configs (e.g., "1m")
//	--service / --env / --app-version service metadata
//	--products products subscribed at startup
//	-c/--config json file path with configs
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}

	fs.VarP(&f.statusAddress, "address", "a", "Status server net address host:port")
	fs.StringVar(&f.agentURL, "agent-url", "", "Control plane agent base URL")
	fs.StringVar(&f.configPath, "config-path", "", "Config endpoint path")
	fs.DurationVar(&f.requestTimeout, "request-timeout", 0, "Poll request timeout (e.g., 5s)")
	fs.DurationVar(&f.retryWindow, "retry-window", 0, "Poll retry window (e.g., 2s)")
	fs.DurationVar(&f.pollInterval, "poll-interval", 0, "Delay between polls (e.g., 5s)")
	fs.DurationVar(&f.ackTimeout, "ack-timeout", 0, "Limit for unacknowledged configs (e.g., 1m)")
	fs.StringVar(&f.service, "service", "", "Service name")
	fs.StringVar(&f.env, "env", "", "Deployment environment")
	fs.StringVar(&f.version, "app-version", "", "Service version")
	fs.StringSliceVar(&f.products, "products", nil, "Products subscribed at startup")
	fs.StringVarP(&f.jsonConfigPath, "config", "c", "", "JSON config file path")

	return f
}

func (f *Flags) config() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			Service: f.service,
			Env:     f.env,
			Version: f.version,
		},
		Adapter: Adapter{
			HTTPAddress:    f.agentURL,
			Path:           f.configPath,
			RequestTimeout: f.requestTimeout,
			RetryWindow:    f.retryWindow,
		},
		Workers: Workers{
			PollInterval: f.pollInterval,
			AckTimeout:   f.ackTimeout,
		},
		Server: Server{
			HTTPAddress: f.statusAddress.String(),
		},
		RemoteConfig: RemoteConfig{
			Products: f.products,
		},
		JSONFilePath: f.jsonConfigPath,
	}
}

// String renders the address for net.Listen. The zero value renders empty,
// which disables the status server.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set parses "host:port". The host may be empty (all interfaces),
// "localhost" or an IP literal; IPv6 hosts need brackets.
func (a *NetAddress) Set(s string) error {
	host, rawPort, err := net.SplitHostPort(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	port, err := strconv.Atoi(rawPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: port %q is not in 1..65535", ErrInvalidAddress, rawPort)
	}

	if host != "" && host != "localhost" && net.ParseIP(host) == nil {
		return fmt.Errorf("%w: host %q is neither localhost nor an IP", ErrInvalidAddress, host)
	}

	a.Host, a.Port = host, port
	return nil
}

// Type implements pflag.Value.
func (a *NetAddress) Type() string {
	return "address"
}
