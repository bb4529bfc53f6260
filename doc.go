// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pgcopy decodes a PostgreSQL `COPY ... TO STDOUT (FORMAT BINARY)`
// byte stream into a set of typed, columnar value arrays and parallel
// null-mask arrays.
//
// The package takes a single contiguous buffer holding the entire binary
// COPY payload and a caller-supplied tuple of column types, and produces,
// per column, a pair of Arrow arrays: a tightly packed array of values in
// the column's native layout, and a boolean array recording which rows
// carry a real value versus SQL NULL. It does not issue queries, speak the
// Postgres wire protocol, or stream across a network boundary; the payload
// must already be fully materialized in memory.
package pgcopy
