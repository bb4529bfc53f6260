// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pgcopydump decodes a file holding a PostgreSQL COPY BINARY
// payload and prints a per-column summary. It is a thin external
// collaborator over the pgcopy package: it does no query execution and
// speaks no wire protocol, it only reads a file already produced by one
// of those things.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/pgcopy/pgcopy"
)

var (
	inputPath = flag.String("input", "", "path to a file holding a COPY BINARY payload")
	typeList  = flag.String("types", "", "comma-separated column types, e.g. int32,object,datetime64[us]")
)

func main() {
	flag.Parse()
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if len(*inputPath) == 0 {
		return fmt.Errorf("pgcopydump: missing -input")
	}
	types, err := parseTypes(*typeList)
	if err != nil {
		return err
	}

	buf, err := os.ReadFile(*inputPath)
	if err != nil {
		return fmt.Errorf("pgcopydump: reading %s: %w", *inputPath, err)
	}

	results, err := pgcopy.DecodeWithOptions(buf, types, pgcopy.Options{
		Logger: pgcopy.NewDefaultLogger(),
	})
	if err != nil {
		return fmt.Errorf("pgcopydump: decode: %w", err)
	}
	defer releaseAll(results)

	for i, col := range results {
		mask := col.Mask.(*array.Boolean)
		nulls := 0
		length := mask.Len()
		for row := 0; row < length; row++ {
			if !mask.Value(row) {
				nulls++
			}
		}
		fmt.Printf("column %d: %d rows, %d nulls, dtype=%s\n", i, length, nulls, col.Values.DataType())
	}
	return nil
}

func releaseAll(results []pgcopy.ColumnResult) {
	for _, r := range results {
		r.Values.Release()
		r.Mask.Release()
	}
}

func parseTypes(s string) ([]pgcopy.TypeID, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("pgcopydump: missing -types")
	}
	names := strings.Split(s, ",")
	types := make([]pgcopy.TypeID, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		id, ok := pgcopy.TypeIDMap[name]
		if !ok {
			return nil, fmt.Errorf("pgcopydump: unknown type %q (known: %s)", name, knownTypeNames())
		}
		types = append(types, id)
	}
	return types, nil
}

func knownTypeNames() string {
	names := make([]string, 0, len(pgcopy.TypeIDMap))
	for name := range pgcopy.TypeIDMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
