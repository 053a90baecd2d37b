package player

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RewardEnv is the environment visible to the experience formula.
type RewardEnv struct {
	EnemyLevel     int
	PlayerLevel    int
	BaseExperience int
	GoldReward     int
}

// Formula is a compiled experience reward expression.
type Formula struct {
	src     string
	program *vm.Program
}

// CompileFormula compiles src against RewardEnv. The expression must
// evaluate to an int.
func CompileFormula(src string) (*Formula, error) {
	program, err := expr.Compile(src,
		expr.Env(RewardEnv{}),
		expr.AsInt(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile experience formula %q: %w", src, err)
	}
	return &Formula{src: src, program: program}, nil
}

// Eval runs the formula.
func (f *Formula) Eval(env RewardEnv) (int, error) {
	out, err := expr.Run(f.program, env)
	if err != nil {
		return 0, fmt.Errorf("evaluate experience formula %q: %w", f.src, err)
	}
	n, ok := out.(int)
	if !ok {
		return 0, fmt.Errorf("experience formula %q returned %T, want int", f.src, out)
	}
	return n, nil
}

func (f *Formula) String() string { return f.src }
