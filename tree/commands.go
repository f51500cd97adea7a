package tree

import (
	"fmt"
	"regexp"
	"strings"
)

// Action is what happens to a value whose tag names an unknown key.
type Action int

const (
	// ActionNone leaves the tag text in place.
	ActionNone Action = iota
	// ActionDelete removes the owning property.
	ActionDelete
	// ActionThrow fails the interpolation with ErrValueNotFound.
	ActionThrow
)

var actionNames = map[Action]string{
	ActionNone:   "none",
	ActionDelete: "delete",
	ActionThrow:  "throw",
}

// String returns the action name.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction converts "none", "delete" or "throw" to an Action.
func ParseAction(s string) (Action, error) {
	for a, name := range actionNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown not-found action %q", s)
}

// command is the meaning of a resolved key.
type command int

const (
	cmdNone command = iota
	cmdCopyIntoObject
	cmdCopyIntoParent
	cmdSkip
)

var (
	skipPattern           = regexp.MustCompile(`^(<-\s*false\s*|<--\s*false\s*)$`)
	copyIntoObjectPattern = regexp.MustCompile(`^<-\s*(true\s*)?$`)
	copyIntoParentPattern = regexp.MustCompile(`^<--\s*(true\s*)?$`)

	debugKeyPattern = regexp.MustCompile(`^__DEBUG__\d*$`)
)

// processKeysKey names the property that overrides an object's key order.
const processKeysKey = "__ProcessKeys__"

func classify(key string) command {
	switch {
	case skipPattern.MatchString(key):
		return cmdSkip
	case copyIntoObjectPattern.MatchString(key):
		return cmdCopyIntoObject
	case copyIntoParentPattern.MatchString(key):
		return cmdCopyIntoParent
	}
	return cmdNone
}
