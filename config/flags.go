package config

import (
	"time"

	"github.com/spf13/pflag"
)

const (
	FLAG_API_KEY         = "api-key"
	FLAG_API_BASE        = "api-base"
	FLAG_ORGANIZATION    = "organization"
	FLAG_REQUEST_TIMEOUT = "request-timeout"

	FLAG_VERBOSE  = "verbose"
	FLAG_LOG_FILE = "log-file"
	FLAG_FORMAT   = "format"
	FLAG_TRACE    = "trace"

	FLAG_TRACE_EXPORTER = "trace-exporter"

	FLAG_CONFIG_FILE = "config"
)

var flagToConfigKeyMap = map[string]string{
	FLAG_API_KEY:         "api.key",
	FLAG_API_BASE:        "api.base",
	FLAG_ORGANIZATION:    "api.organization",
	FLAG_REQUEST_TIMEOUT: "api.timeout",

	FLAG_VERBOSE:  "log.verbose",
	FLAG_LOG_FILE: "log.file",
	FLAG_FORMAT:   "output.format",
	FLAG_TRACE:    "trace.enable",

	FLAG_TRACE_EXPORTER: "trace.exporter",
}

// DefineFlags registers the global flags on fs, usually a root command's
// persistent flag set.
func DefineFlags(fs *pflag.FlagSet) {
	// api
	fs.StringP(FLAG_API_KEY, "k", "", "API key, defaults to $OPENAI_API_KEY")
	fs.String(FLAG_API_BASE, "", "API base url, defaults to $OPENAI_API_BASE or https://api.openai.com")
	fs.StringP(FLAG_ORGANIZATION, "o", "", "organization to bill, defaults to $OPENAI_ORGANIZATION")
	fs.Duration(FLAG_REQUEST_TIMEOUT, 600*time.Second, "timeout for a whole request, streaming included")

	// logging & output
	fs.BoolP(FLAG_VERBOSE, "v", false, "debug log")
	fs.String(FLAG_LOG_FILE, "", "write logs to a rotated file instead of stderr")
	fs.String(FLAG_FORMAT, "", "object output format: json or yaml")
	fs.Bool(FLAG_TRACE, false, "record a trace span and request metrics per API call")
	fs.String(FLAG_TRACE_EXPORTER, "", "telemetry exporter: stdout (stderr) or http (otlp)")

	fs.String(FLAG_CONFIG_FILE, "", "path to config file")
}
