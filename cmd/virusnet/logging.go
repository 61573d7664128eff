package main

import (
	logger "github.com/sirupsen/logrus"
)

type UTCFormatter struct {
	logger.Formatter
}

func (u UTCFormatter) Format(e *logger.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

// newLogger builds the process logger at the named level, with full UTC
// timestamps
func newLogger(level, timeFormat string) (*logger.Logger, error) {
	l := logger.New()
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l.SetLevel(lvl)

	if timeFormat == "" {
		timeFormat = "2006-01-02 15:04:05.000"
	}
	customFormatter := new(logger.TextFormatter)
	customFormatter.TimestampFormat = timeFormat
	customFormatter.FullTimestamp = true
	l.SetFormatter(UTCFormatter{customFormatter})
	return l, nil
}
