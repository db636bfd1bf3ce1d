package dice

import "go.uber.org/zap"

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count and
// result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = D(src, expr.Sides)
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// Roller wraps a Source and logger so every roll leaves a debug-level
// audit record with expression, dice values, modifier, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source exposes the underlying randomness source for single-die checks.
func (r *Roller) Source() Source { return r.src }

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// D20 rolls one d20 and logs it.
//
// Postcondition: Returns a value in [1, 20].
func (r *Roller) D20() int {
	v := D(r.src, 20)
	r.logger.Debug("dice roll", zap.String("expression", "d20"), zap.Int("total", v))
	return v
}

// D20Advantage rolls two d20, keeps the higher, and logs both.
func (r *Roller) D20Advantage() int {
	kept, dropped := WithAdvantage(r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", "2d20kh1"),
		zap.Int("kept", kept),
		zap.Int("dropped", dropped),
	)
	return kept
}
