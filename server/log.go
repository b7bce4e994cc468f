package server

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/inconshreveable/log15.v2"

	"github.com/aarondl/uqircd/config"
)

// NewLogger creates the root logger: logfmt lines to out, and to the
// configured file as well, filtered by the configured level.
func NewLogger(cfg config.Log, out io.Writer) (log15.Logger, error) {
	lvl, err := log15.LvlFromString(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "server: log level %q", cfg.Level)
	}

	handler := log15.StreamHandler(out, log15.LogfmtFormat())
	if len(cfg.File) > 0 {
		file, err := log15.FileHandler(cfg.File, log15.LogfmtFormat())
		if err != nil {
			return nil, errors.Wrap(err, "server: opening log file")
		}
		handler = log15.MultiHandler(handler, file)
	}

	logger := log15.New()
	logger.SetHandler(log15.LvlFilterHandler(lvl, handler))
	return logger, nil
}
