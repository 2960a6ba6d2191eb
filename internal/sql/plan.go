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

package sql

import "rstoredb/internal/storage"

// PlanKind identifies which of the handful of shapes a Plan takes.
// There is no generic relational algebra here — the planner chooses
// directly among the fixed set of access strategies §4.9 allows.
type PlanKind int

const (
	PlanCreateTable PlanKind = iota
	PlanInsert
	PlanTableScan
	PlanIndexScan
	PlanVectorFilter
	PlanShowTables
	PlanDescribe
	PlanShowCreateTable
)

// Plan is the planner's output: a resolved, directly executable
// description of one statement. It borrows table/column handles from
// the catalog it was built against and must not outlive that catalog
// (§5).
type Plan struct {
	Kind PlanKind

	// PlanCreateTable
	TableName string
	Columns   []ColumnDef

	// PlanInsert
	Table  *storage.Table
	Values []Literal

	// PlanTableScan / PlanIndexScan / PlanVectorFilter
	ProjectAll     bool
	ProjectColumns []int // resolved column indexes, parallel to the projection
	Where          Expr

	// PlanIndexScan
	IndexKey int64

	// PlanVectorFilter
	VectorColumn int
	VectorOp     BinaryOp
	VectorValue  int64

	// PlanShowTables
	LikePattern string
	HasLike     bool

	// PlanDescribe / PlanShowCreateTable reuse TableName and Table.
}
