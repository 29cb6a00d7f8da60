package transport

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
)

// queryPattern matches a query string inside a logged URL or error message,
// up to the next whitespace or quote.
var queryPattern = regexp.MustCompile(`\?[^\s"]*`)

// redactingLogger adapts *slog.Logger to retryablehttp.LeveledLogger and
// strips query strings from every logged value. WeChat carries the app secret
// and access token in the query.
type redactingLogger struct {
	logger *slog.Logger
}

func newRedactingLogger(logger *slog.Logger) *redactingLogger {
	return &redactingLogger{logger: logger.With(slog.String("component", "http_client"))}
}

func (l *redactingLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, redactArgs(keysAndValues)...)
}

func (l *redactingLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, redactArgs(keysAndValues)...)
}

func (l *redactingLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, redactArgs(keysAndValues)...)
}

func (l *redactingLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, redactArgs(keysAndValues)...)
}

func redactArgs(keysAndValues []interface{}) []any {
	args := make([]any, len(keysAndValues))
	for i, v := range keysAndValues {
		args[i] = redactValue(v)
	}
	return args
}

// redactValue returns v with any query string removed. Errors and URLs are
// flattened to strings.
func redactValue(v interface{}) any {
	switch val := v.(type) {
	case string:
		return redactQuery(val)
	case *url.URL:
		u := *val
		u.RawQuery = ""
		u.ForceQuery = false
		return u.Redacted()
	case error:
		return redactQuery(val.Error())
	case fmt.Stringer:
		return redactQuery(val.String())
	default:
		return v
	}
}

// redactQuery removes query strings from s.
func redactQuery(s string) string {
	return queryPattern.ReplaceAllString(s, "")
}
