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
The planner resolves a parsed Statement against a Catalog and chooses
one of a fixed set of access strategies (§4.9):

  - an equality predicate on the table's indexed leading column becomes
    an index scan, skipping every other row outright;
  - a comparison against a single INTEGER column on a table with more
    than 100 rows becomes a column-vector scan, which extracts the
    column into a dense array once and runs a filter kernel over it
    before re-visiting only the rows that matched;
  - everything else becomes a plain table scan with a recursive
    predicate evaluator.

vectorScanThreshold exists so a three-row table never pays the cost of
building a dense column array just to filter it once.
*/
package sql

import (
	"rstoredb/internal/codec"
	"rstoredb/internal/errors"
	"rstoredb/internal/storage"
)

const vectorScanThreshold = 100

// PlanStatement resolves stmt against cat, choosing an access strategy for
// SELECT statements and validating column references and arities
// along the way.
func PlanStatement(stmt Statement, cat *storage.Catalog) (*Plan, error) {
	switch s := stmt.(type) {
	case *CreateTableStmt:
		return planCreateTable(s)
	case *InsertStmt:
		return planInsert(s, cat)
	case *SelectStmt:
		return planSelect(s, cat)
	case *ShowTablesStmt:
		return &Plan{Kind: PlanShowTables, LikePattern: s.Pattern, HasLike: s.HasLike}, nil
	case *DescribeStmt:
		table := cat.Find(s.TableName)
		if table == nil {
			return nil, errors.TableNotFound(s.TableName)
		}
		return &Plan{Kind: PlanDescribe, TableName: s.TableName, Table: table}, nil
	case *ShowCreateTableStmt:
		table := cat.Find(s.TableName)
		if table == nil {
			return nil, errors.TableNotFound(s.TableName)
		}
		return &Plan{Kind: PlanShowCreateTable, TableName: s.TableName, Table: table}, nil
	default:
		return nil, errors.NewExecutionError("unsupported statement type")
	}
}

func planCreateTable(s *CreateTableStmt) (*Plan, error) {
	return &Plan{Kind: PlanCreateTable, TableName: s.TableName, Columns: s.Columns}, nil
}

func planInsert(s *InsertStmt, cat *storage.Catalog) (*Plan, error) {
	table := cat.Find(s.TableName)
	if table == nil {
		return nil, errors.TableNotFound(s.TableName)
	}
	if len(s.Values) != len(table.Columns) {
		return nil, errors.ArityMismatch(len(table.Columns), len(s.Values))
	}
	for i, lit := range s.Values {
		if err := checkLiteralKind(lit, table.Columns[i].Kind, table.Columns[i].Name); err != nil {
			return nil, err
		}
	}
	return &Plan{Kind: PlanInsert, TableName: s.TableName, Table: table, Values: s.Values}, nil
}

// checkLiteralKind validates that lit can be stored in a column of the
// given kind. An INTEGER literal widens into a REAL column; NULL is
// accepted everywhere. Anything else must match exactly.
func checkLiteralKind(lit Literal, kind codec.Kind, column string) error {
	if lit.Kind == LiteralNull {
		return nil
	}
	switch kind {
	case codec.KindInteger:
		if lit.Kind != LiteralInteger {
			return errors.TypeMismatch("INTEGER", literalKindName(lit.Kind), column)
		}
	case codec.KindReal:
		if lit.Kind != LiteralInteger && lit.Kind != LiteralReal {
			return errors.TypeMismatch("REAL", literalKindName(lit.Kind), column)
		}
	case codec.KindText:
		if lit.Kind != LiteralText {
			return errors.TypeMismatch("TEXT", literalKindName(lit.Kind), column)
		}
	}
	return nil
}

func literalKindName(k LiteralKind) string {
	switch k {
	case LiteralInteger:
		return "INTEGER"
	case LiteralReal:
		return "REAL"
	case LiteralText:
		return "TEXT"
	default:
		return "NULL"
	}
}

func planSelect(s *SelectStmt, cat *storage.Catalog) (*Plan, error) {
	table := cat.Find(s.TableName)
	if table == nil {
		return nil, errors.TableNotFound(s.TableName)
	}

	plan := &Plan{TableName: s.TableName, Table: table, Where: s.Where}

	if s.Columns == nil {
		plan.ProjectAll = true
	} else {
		plan.ProjectColumns = make([]int, len(s.Columns))
		for i, name := range s.Columns {
			idx := table.ColumnIndex(name)
			if idx < 0 {
				return nil, errors.ColumnNotFound(name, s.TableName)
			}
			plan.ProjectColumns[i] = idx
		}
	}

	if err := validateWhereColumns(s.Where, table); err != nil {
		return nil, err
	}

	plan.Kind = PlanTableScan
	if s.Where != nil {
		if col, op, lit, ok := singleComparison(s.Where); ok {
			colIdx := table.ColumnIndex(col)
			if colIdx == 0 && op == OpEq && lit.Kind == LiteralInteger && table.Index != nil {
				plan.Kind = PlanIndexScan
				plan.IndexKey = lit.Int
			} else if table.Columns[colIdx].Kind == codec.KindInteger &&
				(op == OpEq || op == OpGt || op == OpLt) &&
				lit.Kind == LiteralInteger &&
				table.RowCount() > vectorScanThreshold {
				plan.Kind = PlanVectorFilter
				plan.VectorColumn = colIdx
				plan.VectorOp = op
				plan.VectorValue = lit.Int
			}
		}
	}
	return plan, nil
}

// validateWhereColumns walks expr and confirms every ColumnRef names
// an existing column of table.
func validateWhereColumns(expr Expr, table *storage.Table) error {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case ColumnRef:
		if table.ColumnIndex(e.Name) < 0 {
			return errors.ColumnNotFound(e.Name, table.Name)
		}
	case *BinaryExpr:
		if err := validateWhereColumns(e.Left, table); err != nil {
			return err
		}
		if err := validateWhereColumns(e.Right, table); err != nil {
			return err
		}
	}
	return nil
}

// singleComparison reports whether expr is exactly one comparison
// between a column and an integer literal (in either order), the
// shape both the index scan and the column-vector scan require.
func singleComparison(expr Expr) (column string, op BinaryOp, lit Literal, ok bool) {
	b, isBinary := expr.(*BinaryExpr)
	if !isBinary || !b.Op.IsComparison() {
		return "", 0, Literal{}, false
	}
	if col, isCol := b.Left.(ColumnRef); isCol {
		if l, isLit := b.Right.(Literal); isLit {
			return col.Name, b.Op, l, true
		}
	}
	if col, isCol := b.Right.(ColumnRef); isCol {
		if l, isLit := b.Left.(Literal); isLit {
			return col.Name, mirrorOp(b.Op), l, true
		}
	}
	return "", 0, Literal{}, false
}

// mirrorOp swaps the direction of a comparison operator, for the case
// `literal op column` which singleComparison normalises to
// `column op' literal`.
func mirrorOp(op BinaryOp) BinaryOp {
	switch op {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return op
	}
}
