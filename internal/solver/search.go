package solver

import (
	"context"
	"math/rand/v2"
	"time"
)

const (
	// 找到可行解后连续这么多节点没有改进，就转入邻域搜索
	stallNodes = 20000
	// 每一轮邻域搜索的节点数
	roundNodes = 2000
	// 连续这么多轮没有改进就结束邻域搜索
	maxFailedRounds = 50
	// 每轮放开 1/freeFraction 的布尔变量
	freeFraction = 4
)

type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusUnknown    Status = "UNKNOWN"
)

// Params 求解预算，零值表示不限制
type Params struct {
	TimeLimit time.Duration
	NodeLimit int64
}

type Solution struct {
	Status    Status
	Objective int64
	Nodes     int64
	Elapsed   time.Duration

	values []int64
}

func (s *Solution) HasValues() bool {
	return s.values != nil
}

func (s *Solution) Value(v VarID) int64 {
	return s.values[v]
}

func (s *Solution) BoolValue(v VarID) bool {
	return s.values[v] == 1
}

type trailEntry struct {
	v      VarID
	lo, hi int64
}

type search struct {
	ctx    context.Context
	params Params
	start  time.Time

	lo, hi []int64
	rows   []row
	objRow int
	watch  [][]int

	trail   []trailEntry
	queue   []int
	inQueue []bool

	order  []VarID
	bools  []VarID
	hint   []int64
	hasHnt []bool

	best       []int64
	bestObj    int64
	improvedAt int64
	nodes      int64

	stall     int64 // 0 表示不限制
	diveLimit int64 // 0 表示不限制
	stopped   bool  // 预算耗尽
	aborted   bool  // 本次下潜被提前结束
}

// Solve 对模型进行深度优先的分支定界搜索
//
// 第一次下潜长时间没有改进时，改为在当前最优解附近做邻域搜索，
// 之后再以最优解为上界做一次完整搜索。
// 搜索完整结束时结果是 OPTIMAL 或 INFEASIBLE；预算耗尽或 ctx 结束时，
// 如果已经找到可行解则返回 FEASIBLE，否则返回 UNKNOWN。
func Solve(ctx context.Context, m *Model, params Params) (*Solution, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	if m.conflict {
		return &Solution{Status: StatusInfeasible, Elapsed: time.Since(start)}, nil
	}

	s := newSearch(ctx, m, params)
	s.stall = stallNodes
	s.dive()
	if s.aborted && !s.stopped {
		s.improve()
		if !s.stopped {
			s.stall = 0
			s.dive()
		}
	}

	sol := &Solution{
		Nodes:   s.nodes,
		Elapsed: time.Since(start),
	}
	switch {
	case s.best != nil && !s.stopped && !s.aborted:
		sol.Status = StatusOptimal
	case s.best != nil:
		sol.Status = StatusFeasible
	case !s.stopped && !s.aborted:
		sol.Status = StatusInfeasible
	default:
		sol.Status = StatusUnknown
	}
	if s.best != nil {
		sol.values = s.best
		sol.Objective = s.bestObj
	}
	return sol, nil
}

func newSearch(ctx context.Context, m *Model, params Params) *search {
	n := len(m.names)
	s := &search{
		ctx:    ctx,
		params: params,
		start:  time.Now(),
		lo:     append([]int64(nil), m.lo...),
		hi:     append([]int64(nil), m.hi...),
		watch:  make([][]int, n),
		hint:   m.hint,
		hasHnt: m.hasHint,
	}

	s.rows = make([]row, 0, len(m.rows)+1)
	s.rows = append(s.rows, m.rows...)
	s.rows = append(s.rows, row{terms: compact(m.objective), ub: inf})
	s.objRow = len(s.rows) - 1

	for i, r := range s.rows {
		for _, t := range r.terms {
			s.watch[t.Var] = append(s.watch[t.Var], i)
		}
	}
	s.inQueue = make([]bool, len(s.rows))

	// 先分支布尔变量，辅助整数变量通常可以由传播确定
	s.order = make([]VarID, 0, n)
	for v := 0; v < n; v++ {
		if m.isBool[v] {
			s.order = append(s.order, VarID(v))
		}
	}
	s.bools = s.order[:len(s.order):len(s.order)]
	for v := 0; v < n; v++ {
		if !m.isBool[v] {
			s.order = append(s.order, VarID(v))
		}
	}
	return s
}

// dive 从根节点开始搜索，结束后恢复根节点的状态
func (s *search) dive() {
	mark := len(s.trail)
	s.run(0)
	s.undo(mark)
}

// run 传播所有约束后开始搜索，limit 为本次可用的节点数
func (s *search) run(limit int64) {
	s.aborted = false
	s.diveLimit = 0
	if limit > 0 {
		s.diveLimit = s.nodes + limit
	}
	for i := range s.rows {
		s.enqueue(i)
	}
	s.dfs()
	s.clearQueue()
	s.diveLimit = 0
}

// improve 反复固定当前最优解的大部分布尔变量，只在剩下的变量上搜索更好的解
func (s *search) improve() {
	if s.best == nil || len(s.bools) == 0 {
		return
	}

	rng := rand.New(rand.NewPCG(uint64(len(s.bools)), uint64(len(s.rows))))
	k := max(len(s.bools)/freeFraction, 1)
	free := make([]bool, len(s.lo))

	for failed := 0; failed < maxFailedRounds && !s.stopped && !s.improveBudgetUsed(); {
		clear(free)
		if rng.IntN(2) == 0 {
			// 连续的一段变量，在排班模型里对应相邻的几天
			from := rng.IntN(len(s.bools))
			for i := 0; i < k; i++ {
				free[s.bools[(from+i)%len(s.bools)]] = true
			}
		} else {
			for _, i := range rng.Perm(len(s.bools))[:k] {
				free[s.bools[i]] = true
			}
		}

		if s.round(free) {
			failed = 0
		} else {
			failed++
		}
	}
}

func (s *search) round(free []bool) bool {
	prev := s.bestObj
	mark := len(s.trail)
	for _, v := range s.bools {
		x := s.best[v]
		if free[v] || x < s.lo[v] || x > s.hi[v] {
			continue
		}
		s.setBounds(v, x, x, -1)
	}
	s.run(roundNodes)
	s.undo(mark)
	return s.bestObj < prev
}

// improveBudgetUsed 邻域搜索最多使用一半的预算，剩下的留给完整搜索
func (s *search) improveBudgetUsed() bool {
	if s.params.NodeLimit > 0 && s.nodes >= s.params.NodeLimit/2 {
		return true
	}
	return s.params.TimeLimit > 0 && time.Since(s.start) >= s.params.TimeLimit/2
}

func (s *search) enqueue(r int) {
	if s.inQueue[r] {
		return
	}
	s.inQueue[r] = true
	s.queue = append(s.queue, r)
}

func (s *search) clearQueue() {
	for _, r := range s.queue {
		s.inQueue[r] = false
	}
	s.queue = s.queue[:0]
}

func (s *search) setBounds(v VarID, lo, hi int64, from int) bool {
	if lo == s.lo[v] && hi == s.hi[v] {
		return true
	}
	s.trail = append(s.trail, trailEntry{v: v, lo: s.lo[v], hi: s.hi[v]})
	s.lo[v] = lo
	s.hi[v] = hi
	if lo > hi {
		return false
	}
	for _, r := range s.watch[v] {
		if r != from {
			s.enqueue(r)
		}
	}
	return true
}

func (s *search) undo(mark int) {
	for i := len(s.trail) - 1; i >= mark; i-- {
		e := s.trail[i]
		s.lo[e.v] = e.lo
		s.hi[e.v] = e.hi
	}
	s.trail = s.trail[:mark]
}

// propagate 对队列中的约束做上下界传播，返回 false 表示出现矛盾
func (s *search) propagate() bool {
	for len(s.queue) > 0 {
		r := s.queue[0]
		s.queue = s.queue[1:]
		s.inQueue[r] = false

		terms := s.rows[r].terms
		minAct := int64(0)
		for _, t := range terms {
			if t.Coeff > 0 {
				minAct += t.Coeff * s.lo[t.Var]
			} else {
				minAct += t.Coeff * s.hi[t.Var]
			}
		}
		slack := s.rows[r].ub - minAct
		if slack < 0 {
			s.clearQueue()
			return false
		}

		for _, t := range terms {
			v := t.Var
			if t.Coeff > 0 {
				if (s.hi[v]-s.lo[v])*t.Coeff > slack {
					if !s.setBounds(v, s.lo[v], s.lo[v]+slack/t.Coeff, r) {
						s.clearQueue()
						return false
					}
				}
			} else {
				a := -t.Coeff
				if (s.hi[v]-s.lo[v])*a > slack {
					if !s.setBounds(v, s.hi[v]-slack/a, s.hi[v], r) {
						s.clearQueue()
						return false
					}
				}
			}
		}
	}
	return true
}

func (s *search) budgetExhausted() bool {
	if s.params.NodeLimit > 0 && s.nodes >= s.params.NodeLimit {
		return true
	}
	if s.params.TimeLimit > 0 && time.Since(s.start) >= s.params.TimeLimit {
		return true
	}
	return s.ctx.Err() != nil
}

func (s *search) pickVar() VarID {
	for _, v := range s.order {
		if s.lo[v] != s.hi[v] {
			return v
		}
	}
	return -1
}

// values 返回分支顺序：当前最优解的取值优先，没有最优解时用提示值，其余按升序
func (s *search) values(v VarID) []int64 {
	vals := make([]int64, 0, s.hi[v]-s.lo[v]+1)
	pref, ok := s.hint[v], s.hasHnt[v]
	if s.best != nil {
		pref, ok = s.best[v], true
	}
	if ok && pref >= s.lo[v] && pref <= s.hi[v] {
		vals = append(vals, pref)
	}
	for x := s.lo[v]; x <= s.hi[v]; x++ {
		if len(vals) > 0 && vals[0] == x {
			continue
		}
		vals = append(vals, x)
	}
	return vals
}

func (s *search) record() {
	obj := int64(0)
	for _, t := range s.rows[s.objRow].terms {
		obj += t.Coeff * s.lo[t.Var]
	}
	if s.best != nil && obj >= s.bestObj {
		return
	}
	s.best = append(s.best[:0], s.lo...)
	s.bestObj = obj
	s.improvedAt = s.nodes
	s.rows[s.objRow].ub = obj - 1
}

func (s *search) dfs() {
	s.nodes++
	if s.nodes&255 == 0 && s.budgetExhausted() {
		s.stopped = true
		return
	}
	if s.params.NodeLimit > 0 && s.nodes > s.params.NodeLimit {
		s.stopped = true
		return
	}
	if (s.diveLimit > 0 && s.nodes > s.diveLimit) || (s.stall > 0 && s.best != nil && s.nodes-s.improvedAt > s.stall) {
		s.aborted = true
		return
	}

	if !s.propagate() {
		return
	}

	v := s.pickVar()
	if v < 0 {
		s.record()
		return
	}

	for _, val := range s.values(v) {
		mark := len(s.trail)
		if s.setBounds(v, val, val, -1) {
			// 目标上界可能在别的分支中被收紧了
			s.enqueue(s.objRow)
			s.dfs()
		} else {
			s.clearQueue()
		}
		s.undo(mark)
		if s.stopped || s.aborted {
			return
		}
	}
}
