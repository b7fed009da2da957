package logs

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/spark-root/coffea-slurm/internal/errors"
)

// ConfigLogLevelToLevel maps the numeric level of the yaml config file
// to a logrus level
func ConfigLogLevelToLevel(level int) log.Level {
	switch level {
	case 1:
		return log.InfoLevel
	case 2:
		return log.ErrorLevel
	case 3:
		return log.WarnLevel
	case 4:
		return log.DebugLevel
	default:
		return log.ErrorLevel
	}
}

// EngineLevelToLevel maps an engine log level name (as accepted by
// setLogLevel: ALL, DEBUG, ERROR, FATAL, INFO, OFF, TRACE, WARN) to a logrus level.
// OFF maps to panic, the quietest level logrus has.
func EngineLevelToLevel(name string) (log.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ALL", "TRACE":
		return log.TraceLevel, nil
	case "DEBUG":
		return log.DebugLevel, nil
	case "INFO":
		return log.InfoLevel, nil
	case "WARN":
		return log.WarnLevel, nil
	case "ERROR":
		return log.ErrorLevel, nil
	case "FATAL":
		return log.FatalLevel, nil
	case "OFF":
		return log.PanicLevel, nil
	default:
		return log.InfoLevel, errors.New(
			errors.InvalidLogLevel,
			fmt.Sprintf("unknown log level %q, expected one of ALL, DEBUG, ERROR, FATAL, INFO, OFF, TRACE, WARN", name),
		)
	}
}
