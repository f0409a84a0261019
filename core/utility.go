// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "strings"

const nullTerminator = "\x00"

// safeString terminates s for the C side, unless it already is.
func safeString(s string) string {
	if strings.HasSuffix(s, nullTerminator) {
		return s
	}
	return s + nullTerminator
}

func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
