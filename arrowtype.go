// Copyright 2024 The pgcopy Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pgcopy

import "github.com/apache/arrow/go/v7/arrow"

// ArrowType returns the Arrow data type a decoded column of type id is
// returned as, without decoding any data. fixedDescriptors is a literal
// map built once at package init, so this lookup never allocates.
func ArrowType(id TypeID) (arrow.DataType, bool) {
	if id == TypeObject {
		return arrow.BinaryTypes.String, true
	}
	desc, ok := fixedDescriptors[id]
	if !ok {
		return nil, false
	}
	return desc.arrowType, true
}
