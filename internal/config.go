package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host            string        `env:"HOST,default=127.0.0.1"`
	Port            int           `env:"PORT,default=8000"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,required=true"`
	ReplayLimit     int           `env:"REPLAY_LIMIT,default=20"`
	TakeoverPolicy  string        `env:"SESSION_TAKEOVER_POLICY,default=takeover"`
	CensoredWords   []string      `env:"CENSORED_WORDS"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=30s"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
