// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package ssmstore

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"
)

var errEmptyName = errors.New("string cannot be empty")

// Pathlike converts a string into a form Parameter Store accepts as a
// key: a bare name stays bare, anything with path separators becomes a
// clean absolute path.
func Pathlike(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", errEmptyName
	}
	if !strings.Contains(s, "/") {
		return s, nil
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return path.Clean(s), nil
}

// ValidateName checks that a string can be stored as a Parameter Store
// key. Names must already be pathlike and may only contain letters,
// digits and the symbols / - _ . Offending characters are marked in
// the error message.
func ValidateName(s string) error {
	cleaned, err := Pathlike(s)
	if err != nil {
		return err
	}
	if cleaned != s {
		return fmt.Errorf("invalid pathlike string %q, use Pathlike to format it as %q", s, cleaned)
	}

	var markers strings.Builder
	illegal := false
	for _, r := range s {
		if isAllowedNameRune(r) {
			markers.WriteByte(' ')
		} else {
			markers.WriteByte('^')
			illegal = true
		}
	}
	if illegal {
		return fmt.Errorf("illegal characters:\n%s\n%s\nallowed characters: a-zA-Z0-9 and / - _ .", s, markers.String())
	}
	return nil
}

func isAllowedNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("/-_.", r)
}
