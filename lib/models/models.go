// Package models holds the value types the parsers produce. Values are
// built through the New* constructors, which validate their input and
// derive whichever half of a body (tree or raw markup) was not given.
package models

import (
	"errors"
	"fmt"

	"tabun-api/lib/htmlutil"
	"tabun-api/lib/markup"
)

var ErrInvalid = errors.New("invalid model")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// resolveBody derives the missing half of a body, at most one of tree and
// raw may be set. Nothing at all is an empty body.
func resolveBody(field string, tree htmlutil.Node, raw string) (htmlutil.Node, string, error) {
	if tree != nil && raw != "" {
		return nil, "", invalid("%s: both a tree and raw markup were given", field)
	}
	if tree != nil {
		return tree, markup.ToRaw(tree), nil
	}
	parsed, err := markup.ToTree(raw)
	if err != nil {
		return nil, "", invalid("%s: %s", field, err.Error())
	}
	return parsed, raw, nil
}

// resolveOptionalBody is resolveBody where nothing at all stays nothing.
func resolveOptionalBody(field string, tree htmlutil.Node, raw string) (htmlutil.Node, string, error) {
	if tree == nil && raw == "" {
		return nil, "", nil
	}
	return resolveBody(field, tree, raw)
}
