package cascade

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/casualjim/murmur/pkg/slogx"
	"github.com/fogfish/opts"
	json "github.com/goccy/go-json"
	"github.com/google/cel-go/cel"
)

// PushExpr appends a link whose predicate is a compiled CEL expression.
// The event is exposed to the program as `event` (structured through a JSON
// round-trip, so field names follow the event type's JSON tags), and the
// current wall clock is exposed as `now_ms`. The expression must evaluate
// to a boolean.
//
//	cascade.PushExpr(c, large, `event.amount > 100.0`)
//
// A compile error surfaces here, at registration. An evaluation error at
// drain time drops the event and logs at warn.
func PushExpr[E any](c *Cascade[E], sink Sink[E], expr string, options ...opts.Option[LinkOptions]) error {
	pred, err := compilePredicate[E](expr)
	if err != nil {
		return fmt.Errorf("cascade: compile filter %q: %w", expr, err)
	}
	Push(c, sink, pred, options...)
	return nil
}

func compilePredicate[E any](expr string) (func(E) bool, error) {
	env, err := cel.NewEnv(
		cel.Variable("event", cel.DynType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return nil, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	checked, iss := env.Check(ast)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	log := slog.With(slogx.LoggerName("cascade.expr"), slog.String("expr", expr))
	return func(ev E) bool {
		payload, err := structure(ev)
		if err != nil {
			log.Warn("event not representable as JSON, dropping", slogx.Error(err))
			return false
		}
		out, _, err := prog.Eval(map[string]any{
			"event":  payload,
			"now_ms": time.Now().UnixMilli(),
		})
		if err != nil {
			log.Warn("filter evaluation failed, dropping event", slogx.Error(err))
			return false
		}
		b, ok := out.Value().(bool)
		return ok && b
	}, nil
}

// structure round-trips ev through JSON so CEL sees maps, lists, and
// scalars instead of an opaque Go value.
func structure(ev any) (any, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
