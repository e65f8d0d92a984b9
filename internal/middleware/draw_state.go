package middleware

import (
	"context"
	"log/slog"
	"net/http"
)

type drawStateKey struct{}

// State is the per-request view of the giveaway phase.
type State struct {
	Drawn bool
	Err   error // set when the store could not be asked
}

// DrawChecker answers whether a winner is recorded.
type DrawChecker interface {
	DrawDone(ctx context.Context) (bool, error)
}

// DrawState asks the store once per request whether the draw happened and
// exposes the answer through DrawStateFrom. It only drives presentation;
// the workflows re-check the store before mutating anything.
func DrawState(checker DrawChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			drawn, err := checker.DrawDone(r.Context())
			if err != nil {
				slog.Error("draw state check failed", "error", err, "path", r.URL.Path)
			}
			ctx := context.WithValue(r.Context(), drawStateKey{}, State{Drawn: drawn, Err: err})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DrawStateFrom returns the State stored by DrawState. Without the middleware
// it reports an undrawn giveaway.
func DrawStateFrom(ctx context.Context) State {
	s, _ := ctx.Value(drawStateKey{}).(State)
	return s
}
