/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
The executor drives a Plan to completion against internal/storage,
feeding result rows to a RowSink one at a time rather than
materialising a result set. INTEGER and REAL values compare
numerically with each other; comparisons between values of any other
pair of different kinds never match except under "!=" — mirroring SQL's
usual three-valued-logic handling of incomparable operands without
actually introducing a third logic value.
*/
package sql

import (
	"sort"
	"strings"

	"rstoredb/internal/codec"
	"rstoredb/internal/errors"
	"rstoredb/internal/storage"
)

// RowSink receives one result row per call. Returning an error aborts
// the scan and propagates the error to the executor's caller.
type RowSink func(values []codec.Value) error

// Executor runs Plans produced by PlanStatement against a catalog.
type Executor struct {
	cat      *storage.Catalog
	pager    *storage.Pager
	collator storage.Collator
}

// NewExecutor returns an Executor bound to cat and pager, comparing
// TEXT values with collator (storage.GetCollator(storage.CollationBinary, "")
// if the caller has no preference).
func NewExecutor(cat *storage.Catalog, pager *storage.Pager, collator storage.Collator) *Executor {
	if collator == nil {
		collator = &storage.BinaryCollator{}
	}
	return &Executor{cat: cat, pager: pager, collator: collator}
}

// Execute runs plan, invoking sink for every row a SELECT-family plan
// produces. Non-SELECT plans invoke sink zero times.
func (ex *Executor) Execute(plan *Plan, sink RowSink) error {
	switch plan.Kind {
	case PlanCreateTable:
		return ex.execCreateTable(plan)
	case PlanInsert:
		return ex.execInsert(plan)
	case PlanTableScan:
		return ex.execTableScan(plan, sink)
	case PlanIndexScan:
		return ex.execIndexScan(plan, sink)
	case PlanVectorFilter:
		return ex.execVectorFilter(plan, sink)
	case PlanShowTables:
		return ex.execShowTables(plan, sink)
	case PlanDescribe:
		return ex.execDescribe(plan, sink)
	case PlanShowCreateTable:
		return ex.execShowCreateTable(plan, sink)
	default:
		return errors.NewExecutionError("unsupported plan kind")
	}
}

func (ex *Executor) execCreateTable(plan *Plan) error {
	table := storage.NewTable(plan.TableName, ex.pager)
	for _, col := range plan.Columns {
		table.AddColumn(col.Name, columnKindOf(col.Type))
	}
	return ex.cat.Register(table)
}

func columnKindOf(t ColumnType) codec.Kind {
	switch t {
	case TypeInteger:
		return codec.KindInteger
	case TypeReal:
		return codec.KindReal
	default:
		return codec.KindText
	}
}

func (ex *Executor) execInsert(plan *Plan) error {
	values := make([]codec.Value, len(plan.Values))
	for i, lit := range plan.Values {
		values[i] = literalToValue(lit, plan.Table.Columns[i].Kind)
	}

	if plan.Table.Index != nil && !values[0].IsNull {
		if _, exists := plan.Table.Index.Find(uint32(values[0].Int)); exists {
			return errors.DuplicateKey(values[0].String(), plan.Table.Name)
		}
	}

	loc, err := plan.Table.InsertRow(values)
	if err != nil {
		return err
	}

	if plan.Table.Index != nil && !values[0].IsNull {
		key := uint32(values[0].Int)
		if !plan.Table.Index.Insert(key, loc) {
			return errors.DuplicateKey(values[0].String(), plan.Table.Name)
		}
	}
	return nil
}

func literalToValue(lit Literal, kind codec.Kind) codec.Value {
	if lit.Kind == LiteralNull {
		return codec.Null()
	}
	switch kind {
	case codec.KindInteger:
		return codec.Integer(lit.Int)
	case codec.KindReal:
		if lit.Kind == LiteralInteger {
			return codec.Real(float64(lit.Int))
		}
		return codec.Real(lit.Real)
	case codec.KindText:
		return codec.TextString(lit.Text)
	default:
		return codec.Null()
	}
}

func (ex *Executor) execTableScan(plan *Plan, sink RowSink) error {
	scanner := plan.Table.NewScanner()
	for !scanner.AtEnd() {
		_, row, err := scanner.Next()
		if err != nil {
			return err
		}
		matched, err := ex.evalPredicate(plan.Where, row, plan.Table)
		if err != nil {
			return err
		}
		if !matched {
			continue
		}
		if err := sink(ex.project(plan, row)); err != nil {
			return err
		}
	}
	return nil
}

func (ex *Executor) execIndexScan(plan *Plan, sink RowSink) error {
	loc, ok := plan.Table.Index.Find(uint32(plan.IndexKey))
	if !ok {
		return nil
	}
	row, err := plan.Table.GetRow(loc)
	if err != nil {
		return err
	}
	return sink(ex.project(plan, row))
}

// execVectorFilter extracts plan.VectorColumn into a dense int64 array
// in scan order, runs the matching filter kernel once, and re-visits
// only the rows the resulting bitmap marks.
func (ex *Executor) execVectorFilter(plan *Plan, sink RowSink) error {
	scanner := plan.Table.NewScanner()
	var column []int64
	var locs []storage.RowLocator
	for !scanner.AtEnd() {
		loc, row, err := scanner.Next()
		if err != nil {
			return err
		}
		column = append(column, row[plan.VectorColumn].Int)
		locs = append(locs, loc)
	}

	var bitmap []byte
	switch plan.VectorOp {
	case OpEq:
		bitmap = storage.FilterEqI64(column, plan.VectorValue)
	case OpGt:
		bitmap = storage.FilterGtI64(column, plan.VectorValue)
	case OpLt:
		bitmap = storage.FilterLtI64(column, plan.VectorValue)
	default:
		return errors.NewExecutionError("unsupported vector comparison operator")
	}

	for i, bit := range bitmap {
		if bit == 0 {
			continue
		}
		row, err := plan.Table.GetRow(locs[i])
		if err != nil {
			return err
		}
		if err := sink(ex.project(plan, row)); err != nil {
			return err
		}
	}
	return nil
}

func (ex *Executor) project(plan *Plan, row []codec.Value) []codec.Value {
	if plan.ProjectAll {
		return row
	}
	out := make([]codec.Value, len(plan.ProjectColumns))
	for i, idx := range plan.ProjectColumns {
		out[i] = row[idx]
	}
	return out
}

func (ex *Executor) execShowTables(plan *Plan, sink RowSink) error {
	names := ex.cat.Names()
	sort.Strings(names)
	for _, name := range names {
		if plan.HasLike && !likeMatch(plan.LikePattern, name) {
			continue
		}
		if err := sink([]codec.Value{codec.TextString(name)}); err != nil {
			return err
		}
	}
	return nil
}

// likeMatch implements the single '%' wildcard SHOW TABLES LIKE
// supports (§4.7): a literal prefix/suffix pair around one '%', or an
// exact match when pattern has none.
func likeMatch(pattern, name string) bool {
	idx := strings.IndexByte(pattern, '%')
	if idx < 0 {
		return pattern == name
	}
	prefix, suffix := pattern[:idx], pattern[idx+1:]
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
}

// execDescribe emits one row per column in the shape §4.10 requires:
// {Field, Type, Null, Key, Default, Extra}. Null is always "YES" and
// the last three columns are always empty, per §4.10.
func (ex *Executor) execDescribe(plan *Plan, sink RowSink) error {
	for _, col := range plan.Table.Columns {
		row := []codec.Value{
			codec.TextString(col.Name),
			codec.TextString(col.Kind.String()),
			codec.TextString("YES"),
			codec.TextString(""),
			codec.TextString(""),
			codec.TextString(""),
		}
		if err := sink(row); err != nil {
			return err
		}
	}
	return nil
}

func (ex *Executor) execShowCreateTable(plan *Plan, sink RowSink) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(plan.Table.Name)
	b.WriteString(" (")
	for i, col := range plan.Table.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col.Name)
		b.WriteString(" ")
		b.WriteString(col.Kind.String())
	}
	b.WriteString(")")
	return sink([]codec.Value{codec.TextString(plan.Table.Name), codec.TextString(b.String())})
}

// evalPredicate evaluates expr against row using table's column
// layout for name resolution. A nil expr (no WHERE clause) always
// matches.
func (ex *Executor) evalPredicate(expr Expr, row []codec.Value, table *storage.Table) (bool, error) {
	if expr == nil {
		return true, nil
	}
	b, ok := expr.(*BinaryExpr)
	if !ok {
		return false, errors.NewExecutionError("WHERE clause must be a comparison or boolean expression")
	}
	switch b.Op {
	case OpAnd:
		left, err := ex.evalPredicate(b.Left, row, table)
		if err != nil || !left {
			return false, err
		}
		return ex.evalPredicate(b.Right, row, table)
	case OpOr:
		left, err := ex.evalPredicate(b.Left, row, table)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return ex.evalPredicate(b.Right, row, table)
	default:
		left, err := ex.resolveOperand(b.Left, row, table)
		if err != nil {
			return false, err
		}
		right, err := ex.resolveOperand(b.Right, row, table)
		if err != nil {
			return false, err
		}
		return ex.compare(left, right, b.Op), nil
	}
}

func (ex *Executor) resolveOperand(expr Expr, row []codec.Value, table *storage.Table) (codec.Value, error) {
	switch e := expr.(type) {
	case ColumnRef:
		idx := table.ColumnIndex(e.Name)
		if idx < 0 {
			return codec.Value{}, errors.ColumnNotFound(e.Name, table.Name)
		}
		return row[idx], nil
	case Literal:
		return literalToValue(e, kindOfLiteral(e)), nil
	default:
		return codec.Value{}, errors.NewExecutionError("unsupported operand in WHERE clause")
	}
}

func kindOfLiteral(lit Literal) codec.Kind {
	switch lit.Kind {
	case LiteralInteger:
		return codec.KindInteger
	case LiteralReal:
		return codec.KindReal
	case LiteralText:
		return codec.KindText
	default:
		return codec.KindNull
	}
}

// compare evaluates op over a and b. NULL operands never match
// anything, including another NULL. An INTEGER and a REAL operand are
// compared as float64. Operands of any other pair of different non-NULL
// kinds never match except under "!=".
func (ex *Executor) compare(a, b codec.Value, op BinaryOp) bool {
	if a.IsNull || b.IsNull {
		return false
	}
	if a.Kind != b.Kind {
		aNum := a.Kind == codec.KindInteger || a.Kind == codec.KindReal
		bNum := b.Kind == codec.KindInteger || b.Kind == codec.KindReal
		if aNum && bNum {
			af, bf := a.Real, b.Real
			if a.Kind == codec.KindInteger {
				af = float64(a.Int)
			}
			if b.Kind == codec.KindInteger {
				bf = float64(b.Int)
			}
			return compareOrdered(af, bf, op)
		}
		return op == OpNe
	}
	switch a.Kind {
	case codec.KindInteger:
		return compareOrdered(a.Int, b.Int, op)
	case codec.KindReal:
		return compareOrdered(a.Real, b.Real, op)
	case codec.KindText:
		cmp := ex.collator.Compare(string(a.Text), string(b.Text))
		return compareOrdered(cmp, 0, op)
	default:
		return false
	}
}

type ordered interface {
	~int | ~int64 | ~float64
}

func compareOrdered[T ordered](a, b T, op BinaryOp) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNe:
		return a != b
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	default:
		return false
	}
}
