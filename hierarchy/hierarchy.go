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

// Package hierarchy defines the coordinate system used to address a
// position in the variable hierarchy: organisation > project >
// environment > service, with an implicit root above organisation.
//
// A level may only be set when every level above it is set. The zero
// value addresses the root level.
package hierarchy

import (
	"fmt"
	"strings"
)

// Level names, ordered from the root down.
const (
	LevelRoot         = "root"
	LevelOrganisation = "organisation"
	LevelProject      = "project"
	LevelEnvironment  = "environment"
	LevelService      = "service"
)

// Coordinates addresses one position in the hierarchy. An empty string
// means the level is unset; the zero value is the root. Coordinates are
// plain values and safe to copy.
type Coordinates struct {
	Organisation string
	Project      string
	Environment  string
	Service      string
}

// Error reports a containment violation: Level was given without its
// required ancestor Missing.
type Error struct {
	Level   string
	Missing string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s requires %s to be specified", e.Level, e.Missing)
}

// Validate enforces the containment invariant: service requires
// environment, environment requires project, project requires
// organisation. Checks run child to parent and fail fast on the first
// violation. The zero value passes.
func (c Coordinates) Validate() error {
	if c.Service != "" && c.Environment == "" {
		return &Error{Level: LevelService, Missing: LevelEnvironment}
	}
	if c.Environment != "" && c.Project == "" {
		return &Error{Level: LevelEnvironment, Missing: LevelProject}
	}
	if c.Project != "" && c.Organisation == "" {
		return &Error{Level: LevelProject, Missing: LevelOrganisation}
	}
	return nil
}

// IsRoot reports whether c addresses the root level.
func (c Coordinates) IsRoot() bool {
	return c.Organisation == "" && c.Project == "" && c.Environment == "" && c.Service == ""
}

// Depth returns how many levels below root c sits: 0 for root through 4
// for a service-level position. Depth assumes c passed Validate.
func (c Coordinates) Depth() int {
	switch {
	case c.Service != "":
		return 4
	case c.Environment != "":
		return 3
	case c.Project != "":
		return 2
	case c.Organisation != "":
		return 1
	default:
		return 0
	}
}

// Level returns the name of the deepest set level, or LevelRoot.
func (c Coordinates) Level() string {
	switch c.Depth() {
	case 4:
		return LevelService
	case 3:
		return LevelEnvironment
	case 2:
		return LevelProject
	case 1:
		return LevelOrganisation
	default:
		return LevelRoot
	}
}

// Parent returns the coordinates one level up and true, or the zero value
// and false when c is already the root.
func (c Coordinates) Parent() (Coordinates, bool) {
	switch {
	case c.Service != "":
		c.Service = ""
	case c.Environment != "":
		c.Environment = ""
	case c.Project != "":
		c.Project = ""
	case c.Organisation != "":
		c.Organisation = ""
	default:
		return Coordinates{}, false
	}
	return c, true
}

// Segments returns the set level names in root-to-leaf order. The root
// yields an empty slice.
func (c Coordinates) Segments() []string {
	segments := make([]string, 0, 4)
	for _, s := range []string{c.Organisation, c.Project, c.Environment, c.Service} {
		if s == "" {
			break
		}
		segments = append(segments, s)
	}
	return segments
}

// String renders c for logs and error messages, e.g. "acme/webapp/dev/api"
// or "root".
func (c Coordinates) String() string {
	segments := c.Segments()
	if len(segments) == 0 {
		return LevelRoot
	}
	return strings.Join(segments, "/")
}
