package repokit

import (
	"context"
	"regexp"

	perr "gaexport/internal/platform/errors"
)

// BeginHook runs at the start of a transaction with the tx bound Queryer
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks wraps a TxRunner and runs hooks before fn inside the same tx
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	if len(hooks) == 0 {
		return inner
	}
	return hookedTx{TxRunner: inner, hooks: hooks}
}

// hookedTx delegates plain statements to the embedded runner
type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

// Tx starts a tx on inner then runs all hooks before fn
func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hk := range h.hooks {
			if err := hk(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

var settingName = regexp.MustCompile(`^[a-z_][a-z0-9_.]*$`)

// SetLocal returns a hook that applies a transaction-scoped setting
func SetLocal(name, value string) BeginHook {
	return func(ctx context.Context, q Queryer) error {
		if !settingName.MatchString(name) {
			return perr.InvalidArgf("repokit: bad setting name %q", name)
		}
		_, err := q.Exec(ctx, "SELECT set_config($1, $2, true)", name, value)
		return err
	}
}
