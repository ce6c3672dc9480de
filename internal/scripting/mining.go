package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// DropContext describes a destroyed deposit cell.
type DropContext struct {
	Material string
	Strength float64
	DropMin  int
	DropMax  int
	Roll     float64 // uniform in [0, 1), drawn by the caller
}

// DefaultMiningDrop spreads Roll evenly over [DropMin, DropMax].
func DefaultMiningDrop(ctx DropContext) int {
	if ctx.DropMax <= ctx.DropMin {
		return max(ctx.DropMin, 0)
	}
	span := ctx.DropMax - ctx.DropMin + 1
	n := ctx.DropMin + int(math.Floor(ctx.Roll*float64(span)))
	return min(max(n, ctx.DropMin), ctx.DropMax)
}

// CalcMiningDrop asks calc_mining_drop(ctx) how many items a destroyed cell
// yields. Falls back to DefaultMiningDrop when the script is missing, fails,
// or returns something other than a number.
func (e *Engine) CalcMiningDrop(ctx DropContext) int {
	t := e.vm.NewTable()
	t.RawSetString("material", lua.LString(ctx.Material))
	t.RawSetString("strength", lua.LNumber(ctx.Strength))
	t.RawSetString("drop_min", lua.LNumber(ctx.DropMin))
	t.RawSetString("drop_max", lua.LNumber(ctx.DropMax))
	t.RawSetString("roll", lua.LNumber(ctx.Roll))

	ret, ok := e.call("calc_mining_drop", t)
	if !ok {
		return DefaultMiningDrop(ctx)
	}
	n, isNum := ret.(lua.LNumber)
	if !isNum {
		e.log.Warn("calc_mining_drop returned non-number", zap.String("type", ret.Type().String()))
		return DefaultMiningDrop(ctx)
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

// PowerContext describes a miner about to work a deposit.
type PowerContext struct {
	Material  string
	Strength  float64
	BasePower float64
}

// CalcMiningPower asks calc_mining_power(ctx) for the health removed per
// second. Falls back to BasePower.
func (e *Engine) CalcMiningPower(ctx PowerContext) float64 {
	t := e.vm.NewTable()
	t.RawSetString("material", lua.LString(ctx.Material))
	t.RawSetString("strength", lua.LNumber(ctx.Strength))
	t.RawSetString("base_power", lua.LNumber(ctx.BasePower))

	ret, ok := e.call("calc_mining_power", t)
	if !ok {
		return ctx.BasePower
	}
	n, isNum := ret.(lua.LNumber)
	if !isNum || n <= 0 {
		return ctx.BasePower
	}
	return float64(n)
}
