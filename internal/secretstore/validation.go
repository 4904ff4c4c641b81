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

package secretstore

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode"
)

var errEmptyName = errors.New("string cannot be empty")

// pathlike mirrors the Parameter Store normalization so both AWS
// backends address entries with the same clean path shape.
func pathlike(s string) string {
	if !strings.Contains(s, "/") {
		return s
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	return path.Clean(s)
}

// ValidateName enforces the character set Secrets Manager accepts for
// secret names.
func ValidateName(s string) error {
	for _, r := range s {
		if !isAllowedNameRune(r) {
			return fmt.Errorf("illegal character %q in secret name %q, allowed characters: a-zA-Z0-9 and / _ + = . @ -", r, s)
		}
	}
	return nil
}

func isAllowedNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("/_+=.@-", r)
}

func (s *Store) normalize(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errEmptyName
	}
	if s.cleanNames {
		name = pathlike(name)
	}
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
