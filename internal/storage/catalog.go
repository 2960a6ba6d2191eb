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
Catalog is the name -> table map for one database handle. The source
keeps a single process-wide catalog behind a package-level static,
which leaks state across every handle in the process; here the
catalog is owned by the handle that opened it, so two open databases
in the same process never see each other's tables.
*/
package storage

import "rstoredb/internal/errors"

// Catalog maps table names to general-engine tables, scoped to a
// single database handle.
type Catalog struct {
	tables map[string]*Table
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

// Find returns the table registered under name, or nil if none exists.
// The match is case-sensitive.
func (c *Catalog) Find(name string) *Table {
	return c.tables[name]
}

// Register adds table under its name. It fails with a constraint
// error if a table of that name is already registered, rather than
// silently clobbering the old entry.
func (c *Catalog) Register(table *Table) error {
	if _, exists := c.tables[table.Name]; exists {
		return errors.ConstraintViolation("duplicate table name", table.Name)
	}
	c.tables[table.Name] = table
	return nil
}

// Names returns every registered table name. The order is
// unspecified.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	return names
}
