package logging

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/a-le/microdbal/src/config"
	"github.com/a-le/microdbal/src/oops"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
	log.Logger = log.Output(NewPrettyZerologWriter())
	zerolog.SetGlobalLevel(config.Config.LogLevel)
}

func GlobalLogger() *zerolog.Logger {
	return &log.Logger
}

func Trace() *zerolog.Event {
	return log.Trace().Timestamp().Stack()
}

func Debug() *zerolog.Event {
	return log.Debug().Timestamp().Stack()
}

func Info() *zerolog.Event {
	return log.Info().Timestamp().Stack()
}

func Warn() *zerolog.Event {
	return log.Warn().Timestamp().Stack()
}

func Error() *zerolog.Event {
	return log.Error().Timestamp().Stack()
}

func Panic() *zerolog.Event {
	return log.Panic().Timestamp().Stack()
}

func Fatal() *zerolog.Event {
	return log.Fatal().Timestamp().Stack()
}

func With() zerolog.Context {
	return log.With().Stack()
}

const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"

	colorRed  = "\033[31m"
	colorBlue = "\033[34m"
	colorGray = "\033[37m"

	colorBgRed    = "\033[41m"
	colorBgYellow = "\033[43m"
	colorBgBlue   = "\033[44m"
)

var colorFromLevel = map[string]string{
	"trace": colorGray,
	"debug": colorGray,
	"info":  colorBgBlue,
	"warn":  colorBgYellow,
	"error": colorBgRed,
	"fatal": colorBgRed,
	"panic": colorBgRed,
}

type PrettyZerologWriter struct {
	wd                  string
	wasLastLogMultiline bool
}

type prettyField struct {
	Name  string
	Value interface{}
}

func NewPrettyZerologWriter() *PrettyZerologWriter {
	wd, _ := os.Getwd()
	return &PrettyZerologWriter{wd: wd}
}

func (w *PrettyZerologWriter) Write(p []byte) (int, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(p, &fields); err != nil {
		return os.Stderr.Write(p)
	}

	var timestamp, level, message, errmsg string
	var stackTrace []interface{}
	var other []prettyField
	for name, val := range fields {
		switch name {
		case zerolog.TimestampFieldName:
			timestamp, _ = val.(string)
		case zerolog.LevelFieldName:
			level, _ = val.(string)
		case zerolog.MessageFieldName:
			message, _ = val.(string)
		case zerolog.ErrorFieldName:
			errmsg, _ = val.(string)
		case zerolog.ErrorStackFieldName:
			stackTrace, _ = val.([]interface{})
		default:
			other = append(other, prettyField{Name: name, Value: val})
		}
	}

	sort.Slice(other, func(i, j int) bool {
		return other[i].Name < other[j].Name
	})

	isMultiline := errmsg != "" || stackTrace != nil || other != nil

	var b strings.Builder
	if isMultiline || w.wasLastLogMultiline {
		b.WriteString("---------------------------------------\n")
	}
	b.WriteString(timestamp)
	b.WriteString(" ")
	if level != "" {
		b.WriteString(colorFromLevel[level])
		b.WriteString(colorBold)
		b.WriteString(strings.ToUpper(level))
		b.WriteString(colorReset)
		b.WriteString(": ")
	}
	b.WriteString(message)
	b.WriteString("\n")
	if errmsg != "" {
		b.WriteString("  " + colorBold + colorRed + "ERROR:" + colorReset + " ")
		b.WriteString(errmsg)
		b.WriteString("\n")
	}
	if len(other) > 0 {
		b.WriteString("  " + colorBold + colorBlue + "Fields:" + colorReset + "\n")
		for _, field := range other {
			valuePretty, _ := json.MarshalIndent(field.Value, "    ", "  ")
			b.WriteString("    ")
			b.WriteString(field.Name)
			b.WriteString(": ")
			b.Write(valuePretty)
			b.WriteString("\n")
		}
	}
	if stackTrace != nil {
		b.WriteString("  " + colorBold + colorBlue + "Stack trace:" + colorReset + "\n")
		for _, frame := range stackTrace {
			frameMap, ok := frame.(map[string]interface{})
			if !ok {
				continue
			}
			file, _ := frameMap["file"].(string)
			file = strings.Replace(file, w.wd, ".", 1)
			function, _ := frameMap["function"].(string)
			line, _ := frameMap["line"].(float64)

			b.WriteString("    ")
			b.WriteString(function)
			b.WriteString(" (")
			b.WriteString(file)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(int(line)))
			b.WriteString(")\n")
		}
	}

	w.wasLastLogMultiline = isMultiline

	return os.Stderr.Write([]byte(b.String()))
}

func LogPanics(logger *zerolog.Logger) {
	if r := recover(); r != nil {
		LogPanicValue(logger, r, "recovered from panic")
	}
}

func LogPanicValue(logger *zerolog.Logger, val interface{}, msg string) {
	if logger == nil {
		logger = GlobalLogger()
	}

	if err, ok := val.(error); ok {
		l := logger.Error().Err(err)
		if _, ok := err.(*oops.Error); !ok {
			l = l.Interface(zerolog.ErrorStackFieldName, oops.Trace())
		}
		l.Msg(msg)
	} else {
		logger.Error().
			Interface("recovered", val).
			Interface(zerolog.ErrorStackFieldName, oops.Trace()).
			Msg(msg)
	}
}
