// Package solver 是一个小型的整数规划求解器：线性约束 + 上下界传播 + 分支定界
package solver

import (
	"errors"
	"fmt"
)

const inf int64 = 1 << 50

var ErrUnknownVar = errors.New("约束中引用了不存在的变量")

type VarID int

type Term struct {
	Var   VarID
	Coeff int64
}

// row 统一表示为 sum(terms) <= ub
type row struct {
	terms []Term
	ub    int64
}

type Model struct {
	names   []string
	lo, hi  []int64
	isBool  []bool
	hint    []int64
	hasHint []bool

	rows      []row
	objective []Term

	// Fix 时发现矛盾，模型直接不可行
	conflict bool
}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) newVar(lo, hi int64, name string, isBool bool) VarID {
	m.names = append(m.names, name)
	m.lo = append(m.lo, lo)
	m.hi = append(m.hi, hi)
	m.isBool = append(m.isBool, isBool)
	m.hint = append(m.hint, 0)
	m.hasHint = append(m.hasHint, false)
	return VarID(len(m.names) - 1)
}

func (m *Model) NewBoolVar(name string) VarID {
	return m.newVar(0, 1, name, true)
}

func (m *Model) NewIntVar(lo, hi int64, name string) VarID {
	if lo > hi {
		m.conflict = true
	}
	return m.newVar(lo, hi, name, false)
}

func (m *Model) NumVars() int {
	return len(m.names)
}

func (m *Model) Name(v VarID) string {
	return m.names[v]
}

// AddLessOrEqual 添加 sum(terms) <= rhs
func (m *Model) AddLessOrEqual(terms []Term, rhs int64) {
	m.rows = append(m.rows, row{terms: compact(terms), ub: rhs})
}

// AddGreaterOrEqual 添加 sum(terms) >= rhs
func (m *Model) AddGreaterOrEqual(terms []Term, rhs int64) {
	neg := make([]Term, len(terms))
	for i, t := range terms {
		neg[i] = Term{Var: t.Var, Coeff: -t.Coeff}
	}
	m.rows = append(m.rows, row{terms: compact(neg), ub: -rhs})
}

// AddEquality 添加 sum(terms) == rhs
func (m *Model) AddEquality(terms []Term, rhs int64) {
	m.AddLessOrEqual(terms, rhs)
	m.AddGreaterOrEqual(terms, rhs)
}

// Fix 将变量固定为某个值
func (m *Model) Fix(v VarID, value int64) {
	if value < m.lo[v] || value > m.hi[v] {
		m.conflict = true
		return
	}
	m.lo[v] = value
	m.hi[v] = value
}

// Minimize 向目标函数中追加若干项，目标为所有项之和
func (m *Model) Minimize(terms ...Term) {
	m.objective = append(m.objective, terms...)
}

// SetHint 设置分支时优先尝试的取值
func (m *Model) SetHint(v VarID, value int64) {
	m.hint[v] = value
	m.hasHint[v] = true
}

func (m *Model) validate() error {
	n := VarID(len(m.names))
	check := func(terms []Term) error {
		for _, t := range terms {
			if t.Var < 0 || t.Var >= n {
				return fmt.Errorf("%w: %d", ErrUnknownVar, t.Var)
			}
		}
		return nil
	}
	for _, r := range m.rows {
		if err := check(r.terms); err != nil {
			return err
		}
	}
	return check(m.objective)
}

// compact 合并同一变量的系数并去掉系数为 0 的项
func compact(terms []Term) []Term {
	out := make([]Term, 0, len(terms))
	pos := make(map[VarID]int, len(terms))
	for _, t := range terms {
		if i, ok := pos[t.Var]; ok {
			out[i].Coeff += t.Coeff
			continue
		}
		pos[t.Var] = len(out)
		out = append(out, t)
	}
	res := out[:0]
	for _, t := range out {
		if t.Coeff != 0 {
			res = append(res, t)
		}
	}
	return res
}
