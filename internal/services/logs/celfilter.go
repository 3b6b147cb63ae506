package logssvc

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/engels74/soyuznikrr/internal/logbuf"
)

// celFilter wraps a compiled CEL program evaluated per entry, shared by
// the streaming and snapshot paths. When disabled, Eval always returns
// true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

func newCELFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("seq", cel.IntType),
		cel.Variable("timestamp", cel.StringType),
		cel.Variable("level", cel.StringType),
		cel.Variable("level_rank", cel.IntType),
		cel.Variable("logger", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("fields", cel.MapType(cel.StringType, cel.StringType)),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against an entry. Evaluation
// errors reject the entry rather than failing the session.
func (f celFilter) Eval(e logbuf.Entry) bool {
	if !f.enabled {
		return true
	}
	fields := e.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	out, _, err := f.prog.Eval(map[string]any{
		"seq":        int64(e.Seq),
		"timestamp":  e.Timestamp,
		"level":      e.Level,
		"level_rank": int64(logbuf.LevelRank(e.Level)),
		"logger":     e.LoggerName,
		"message":    e.Message,
		"fields":     fields,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
