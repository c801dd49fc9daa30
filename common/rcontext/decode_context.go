package rcontext

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/t2bot/colorimage/common"
)

// New builds a context for one decode. A nil log uses the standard logger.
func New(log *logrus.Entry) DecodeContext {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return DecodeContext{
		Context: context.Background(),
		Log:     log,
	}.populate()
}

type DecodeContext struct {
	context.Context

	// Also stored on the context object itself
	Log *logrus.Entry // ci.logger
}

func (c DecodeContext) populate() DecodeContext {
	c.Context = context.WithValue(c.Context, common.ContextLogger, c.Log)
	return c
}

func (c DecodeContext) ReplaceLogger(log *logrus.Entry) DecodeContext {
	ctx := context.WithValue(c.Context, common.ContextLogger, log)
	return DecodeContext{
		Context: ctx,
		Log:     log,
	}
}

func (c DecodeContext) LogWithFields(fields logrus.Fields) DecodeContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}
