// Copyright 2025 Conduit Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var orderedLevels = []PermissionLevel{LevelNone, LevelReader, LevelDeveloper, LevelMaintainer, LevelOwner}

func TestPermissionLevelOrderIsTotal(t *testing.T) {
	for i, lower := range orderedLevels {
		for j, higher := range orderedLevels {
			want := i >= j
			assert.Equal(t, want, lower.AtLeast(higher),
				"%s.AtLeast(%s)", lower, higher)
		}
	}
}

func TestPermissionLevelSeniorityIsConsistent(t *testing.T) {
	// If a level permits an operation, every senior level permits it too.
	for _, required := range orderedLevels {
		permitted := false
		for _, l := range orderedLevels {
			if l.AtLeast(required) {
				permitted = true
			}
			if permitted {
				assert.True(t, l.AtLeast(required),
					"%s should permit an operation requiring %s", l, required)
			}
		}
	}
}

func TestUnknownLevelRanksAsNone(t *testing.T) {
	bogus := PermissionLevel("superadmin")
	assert.Equal(t, 0, bogus.Rank())
	assert.False(t, bogus.AtLeast(LevelReader))
	assert.True(t, bogus.AtLeast(LevelNone))
}

func TestGrantable(t *testing.T) {
	assert.True(t, LevelReader.Grantable())
	assert.True(t, LevelDeveloper.Grantable())
	assert.True(t, LevelMaintainer.Grantable())
	assert.False(t, LevelOwner.Grantable(), "owner is implicit, never stored")
	assert.False(t, LevelNone.Grantable())
}

func TestParsePermissionLevel(t *testing.T) {
	l, err := ParsePermissionLevel("developer")
	assert.NoError(t, err)
	assert.Equal(t, LevelDeveloper, l)

	_, err = ParsePermissionLevel("owner")
	assert.Error(t, err)

	_, err = ParsePermissionLevel("")
	assert.Error(t, err)
}
