// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package userstest

import (
	"regexp"
	"strings"
)

// SQL builds a query pattern for pgxmock that matches the given fragments in
// order, ignoring whatever lies between them (whitespace and line breaks included).
func SQL(fragments ...string) string {
	quoted := make([]string, len(fragments))
	for i, fragment := range fragments {
		quoted[i] = regexp.QuoteMeta(fragment)
	}
	return `(?s)` + strings.Join(quoted, `.*`)
}
