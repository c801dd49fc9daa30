package common

type DecodeContextKey string

const (
	ContextLogger DecodeContextKey = "ci.logger"
)
