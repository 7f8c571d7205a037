package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

var levelTags = map[string]struct{ tag, color string }{
	"trace": {"[TRC]", "36"},
	"debug": {"[DBG]", "36"},
	"info":  {"[INF]", "32"},
	"warn":  {"[WRN]", "33"},
	"error": {"[ERR]", "31"},
	"fatal": {"[FTL]", "35"},
}

func paint(s, color string, noColor bool) string {
	if noColor || color == "" {
		return s
	}
	return "\033[" + color + "m" + s + "\033[0m"
}

// consoleWriter renders lines as "15:04:05 [HER][INF] message key:value".
// The bracketed prefix is the first three letters of the service name.
func consoleWriter(w io.Writer, service string, noColor bool) zerolog.ConsoleWriter {
	prefix := ""
	if len(service) >= 3 && service != "default" {
		prefix = paint("["+strings.ToUpper(service[:3])+"]", "34", noColor)
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
		FormatLevel: func(i interface{}) string {
			name := strings.ToLower(fmt.Sprint(i))
			lt, ok := levelTags[name]
			if !ok {
				lt.tag = "[" + strings.ToUpper(name) + "]"
			}
			return prefix + paint(lt.tag, lt.color, noColor)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
	}
}
